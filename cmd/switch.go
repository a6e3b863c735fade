package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(switchCmd)
}

var switchCmd = &cobra.Command{
	Use:     "switch [name|id]",
	Aliases: []string{"use"},
	Short:   "Switch the droid CLI to a provider",
	Long: `Switch the droid CLI to the provider with the given name or id

The key is written to ~/.factory/config.json and the droid wrapper is
installed (or upgraded) in your shell profile, so new droid sessions pick
up the key without restarting the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		p, err := a.manager.Find(args[0])
		if err != nil {
			return err
		}
		active, err := a.manager.Switch(p.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printSuccess(out, "Switched to: %s", active.Name)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  key written to %s", a.env.Path())))
		return nil
	},
}
