package cmd

import (
	"fmt"
	"io"
	"os"

	"droidswitch/config"
	"droidswitch/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("prefix", "p", config.DefaultImportPrefix, "Name prefix for imported providers")
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import many API keys at once",
	Long: `Import API keys separated by newlines, commas or semicolons

Keys are read from the given file, or from stdin when no file (or "-") is given.
Only keys starting with fk- are imported; duplicates are skipped.

  droidswitch import keys.txt --prefix Team
  pbpaste | droidswitch import`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read keys: %w", err)
		}

		keys := utils.ParseBatchAPIKeys(string(data))
		if len(keys) == 0 {
			return fmt.Errorf("no API keys starting with %s found", utils.APIKeyPrefix)
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		prefix, _ := cmd.Flags().GetString("prefix")
		result, err := a.manager.Import(keys, prefix)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range result.Added {
			printSuccess(out, "Added %s (%s)", p.Name, utils.MaskAPIKey(p.APIKey))
		}
		for _, s := range result.Skipped {
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  skipped %s: %s", utils.MaskAPIKey(s.Key), s.Reason)))
		}
		fmt.Fprintf(out, "Imported %d of %d keys\n", len(result.Added), len(keys))
		return nil
	},
}
