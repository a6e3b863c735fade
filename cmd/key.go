package cmd

import (
	"fmt"

	"droidswitch/internal/utils"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.Flags().BoolP("copy", "c", false, "Copy the key to the clipboard instead of printing it")
	keyCmd.Flags().Bool("show", false, "Print the full key instead of a masked one")
}

var keyCmd = &cobra.Command{
	Use:   "key [name|id]",
	Short: "Print or copy an API key",
	Long:  "Print (masked by default) or copy the key of the given provider, or the key the droid CLI currently reads when no provider is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var key string
		if len(args) == 1 {
			p, err := a.manager.Find(args[0])
			if err != nil {
				return err
			}
			key = p.APIKey
		} else {
			key, err = a.manager.CurrentKey()
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("no key set in %s", a.env.Path())
			}
		}

		if doCopy, _ := cmd.Flags().GetBool("copy"); doCopy {
			if err := clipboard.WriteAll(key); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Copied %s to the clipboard", utils.MaskAPIKey(key))
			return nil
		}

		if show, _ := cmd.Flags().GetBool("show"); show {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), utils.MaskAPIKey(key))
		}
		return nil
	},
}
