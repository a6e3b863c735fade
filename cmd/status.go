package cmd

import (
	"fmt"

	"droidswitch/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active provider",
	Long:  "Show the active provider, the key the droid CLI currently reads and the selected model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		active, err := a.manager.GetActive()
		if err != nil {
			return err
		}
		if active == nil {
			fmt.Fprintln(out, "Active provider: none")
		} else {
			fmt.Fprintf(out, "Active provider: %s\n", activeStyle.Render(active.Name))
			fmt.Fprintf(out, "Balance:         %s\n", formatBalance(active.Balance))
		}

		key, err := a.manager.CurrentKey()
		if err != nil {
			printWarning(out, "failed to read %s: %v", a.env.Path(), err)
		} else if key == "" {
			fmt.Fprintf(out, "droid key:       %s\n", dimStyle.Render("not set"))
		} else {
			fmt.Fprintf(out, "droid key:       %s\n", utils.MaskAPIKey(key))
			if active != nil && active.APIKey != key {
				printWarning(out, "%s does not match the active provider, run: droidswitch switch %q", a.env.Path(), active.Name)
			}
		}

		model, err := a.manager.SelectedModel()
		if err != nil {
			return err
		}
		if model != nil {
			fmt.Fprintf(out, "Model:           %s (%s, reasoning %s)\n", model.Name, model.ID, model.ReasoningLevel)
		}
		return nil
	},
}
