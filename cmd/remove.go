package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove [name|id]",
	Aliases: []string{"rm"},
	Short:   "Remove a provider",
	Long:    "Remove the provider with the given name or id. Removing the active provider also clears the key the droid CLI uses.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		p, err := a.manager.Find(args[0])
		if err != nil {
			return err
		}
		if err := a.manager.Remove(p.ID); err != nil {
			return err
		}

		printSuccess(cmd.OutOrStdout(), "Provider removed: %s", p.Name)
		return nil
	},
}
