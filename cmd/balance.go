package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().BoolP("all", "a", false, "Refresh the balance of every provider")
}

var balanceCmd = &cobra.Command{
	Use:   "balance [name|id]",
	Short: "Query remaining token allowance",
	Long: `Query the Factory usage API and store the result

Without arguments the active provider is queried. With --all every provider
is queried one after another; failures are reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if all, _ := cmd.Flags().GetBool("all"); all {
			if len(args) > 0 {
				return fmt.Errorf("--all does not take a provider")
			}
			providers, err := a.manager.RefreshAllBalances(ctx)
			if err != nil {
				return err
			}
			for _, p := range providers {
				fmt.Fprintln(out, providerLine(p))
			}
			return nil
		}

		var id string
		if len(args) == 1 {
			p, err := a.manager.Find(args[0])
			if err != nil {
				return err
			}
			id = p.ID
		} else {
			active, err := a.manager.GetActive()
			if err != nil {
				return err
			}
			if active == nil {
				return fmt.Errorf("no active provider, pass a name or use --all")
			}
			id = active.ID
		}

		p, err := a.manager.RefreshBalance(ctx, id)
		if err != nil {
			return fmt.Errorf("%s", describeBalanceError(err))
		}
		fmt.Fprintf(out, "%s: %s\n", p.Name, formatBalance(p.Balance))
		return nil
	},
}
