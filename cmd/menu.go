package cmd

import (
	"droidswitch/internal/tui"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(menuCmd)
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive provider menu",
	Long: `Open the interactive provider menu

Enter switches to the selected provider, d disables the active one, r and R
refresh balances, a adds a provider and x removes one. The list reloads
when the config file is changed by another droidswitch process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), a.manager, a.log.WithField("component", "menu"))
	},
}
