package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all providers",
	Long:    "List all stored providers with their masked key and last known balance",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		providers, err := a.manager.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(providers) == 0 {
			fmt.Fprintln(out, "No providers available")
			return nil
		}

		fmt.Fprintln(out, "Providers:")
		hasActive := false
		for _, p := range providers {
			fmt.Fprintln(out, providerLine(p))
			hasActive = hasActive || p.IsActive
		}
		if hasActive {
			fmt.Fprintf(out, "\n* indicates the active provider\n")
		}
		return nil
	},
}
