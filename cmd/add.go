package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"droidswitch/config/validation"
	"droidswitch/internal/utils"

	"github.com/spf13/cobra"
)

var isTerminal = utils.IsTerminal

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolP("switch", "s", false, "Switch to the new provider after adding it")
}

var addCmd = &cobra.Command{
	Use:   "add [name] [key]",
	Short: "Add a Factory API key",
	Long: `Add a Factory API key under a display name

Usage 1: interactive (recommended)
  droidswitch add

Usage 2: arguments
  droidswitch add work fk-xxxxxxxx --switch`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name, key string

		switch len(args) {
		case 2:
			name, key = args[0], args[1]
		default:
			if !isTerminal() && len(args) == 0 {
				return fmt.Errorf("interactive input is not available, use: droidswitch add <name> <key>")
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			if len(args) == 1 {
				name = args[0]
			} else {
				name = prompt(cmd.ErrOrStderr(), reader, "Name: ")
			}
			key = prompt(cmd.ErrOrStderr(), reader, "API key (fk-...): ")
		}

		name, key = strings.TrimSpace(name), strings.TrimSpace(key)
		if err := validateProviderInput(name, key); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		p, err := a.manager.Add(name, key)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Added provider: %s", p.Name)

		if doSwitch, _ := cmd.Flags().GetBool("switch"); doSwitch {
			if _, err := a.manager.Switch(p.ID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Switched to: %s", p.Name)
		}
		return nil
	},
}

func prompt(w io.Writer, reader *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func validateProviderInput(name, key string) error {
	v := validation.NewInputValidator()
	if err := v.ValidateName(name); err != nil {
		return err
	}
	return v.ValidateAPIKey(key)
}
