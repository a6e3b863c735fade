package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(disableCmd)
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Deactivate the active provider",
	Long:  "Deactivate the active provider and remove its key from ~/.factory/config.json. Stored providers are kept.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		active, err := a.manager.GetActive()
		if err != nil {
			return err
		}
		if active == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No active provider")
			return nil
		}

		if err := a.manager.Disable(); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Disabled: %s", active.Name)
		return nil
	},
}
