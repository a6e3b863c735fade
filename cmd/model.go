package cmd

import (
	"fmt"

	"droidswitch/config/models"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelListCmd, modelSelectCmd, modelAddCmd, modelRemoveCmd, modelReasoningCmd, modelResetCmd)

	modelSelectCmd.Flags().Bool("no-prompt", false, "Fail instead of prompting when no model is given")

	modelAddCmd.Flags().StringP("name", "n", "", "Display name (default: the id)")
	modelAddCmd.Flags().StringP("provider", "p", "Custom", "Provider label")
	modelAddCmd.Flags().StringP("description", "d", "", "Short description")
	modelAddCmd.Flags().StringP("reasoning", "r", string(models.ReasoningMedium), "Reasoning level (off, low, medium, high)")
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the droid model catalog",
	Long:  "List, select and customize the models written to ~/.factory/settings.json",
}

var modelListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available models",
	Long:    "List the built-in and custom models; the selected one is marked with *",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		catalog, err := a.manager.Models()
		if err != nil {
			return err
		}
		selected, err := a.manager.SelectedModel()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range catalog {
			marker := " "
			name := m.Name
			if selected != nil && selected.ID == m.ID {
				marker = activeStyle.Render("*")
				name = activeStyle.Render(m.Name)
			}
			kind := "custom"
			if m.IsBuiltin {
				kind = "built-in"
			}
			fmt.Fprintf(out, "%s %s %s  %s, reasoning %s, %s\n",
				marker, name, dimStyle.Render("("+m.ID+")"), m.Provider, m.ReasoningLevel, kind)
			if m.Description != "" {
				fmt.Fprintln(out, dimStyle.Render("    "+m.Description))
			}
		}
		return nil
	},
}

var modelSelectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Select the model droid uses",
	Long: `Select the model droid uses and write it to ~/.factory/settings.json

Without an id an interactive menu is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			catalog, err := a.manager.Models()
			if err != nil {
				return err
			}
			current := ""
			if sel, err := a.manager.SelectedModel(); err == nil && sel != nil {
				current = sel.ID
			}

			noPrompt, _ := cmd.Flags().GetBool("no-prompt")
			selector := NewModelSelector(cmd.InOrStdin(), cmd.ErrOrStderr())
			if !selector.ShouldPrompt(catalog, noPrompt) {
				return fmt.Errorf("no model given, use: droidswitch model select <id>")
			}
			id, err = selector.PromptSimple(catalog, current)
			if err != nil {
				return fmt.Errorf("model selection failed: %w", err)
			}
		}

		m, err := a.manager.SelectModel(id)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Selected model: %s (reasoning %s)", m.Name, m.ReasoningLevel)
		return nil
	},
}

var modelAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Add a custom model",
	Long:  "Add a custom model id to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		provider, _ := cmd.Flags().GetString("provider")
		description, _ := cmd.Flags().GetString("description")
		reasoning, _ := cmd.Flags().GetString("reasoning")

		level, err := models.ParseReasoningLevel(reasoning)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		m, err := a.manager.AddModel(models.ModelInfo{
			ID:             args[0],
			Name:           name,
			Provider:       provider,
			Description:    description,
			ReasoningLevel: level,
		})
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Added model: %s", m.ID)
		return nil
	},
}

var modelRemoveCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm"},
	Short:   "Remove a custom model",
	Long:    "Remove a custom model. Built-in models cannot be removed. If the model was selected, the default model is selected instead.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.manager.RemoveModel(args[0]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Removed model: %s", args[0])
		return nil
	},
}

var modelReasoningCmd = &cobra.Command{
	Use:   "reasoning [id] [level]",
	Short: "Set the reasoning level of a model",
	Long:  "Set the reasoning level (off, low, medium, high) of a model. The settings file is updated when the model is selected.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := models.ParseReasoningLevel(args[1])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.manager.SetReasoningLevel(args[0], level); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Reasoning level of %s set to %s", args[0], level)
		return nil
	},
}

var modelResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in model catalog",
	Long:  "Remove all custom models, restore the built-in reasoning levels and select the default model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.manager.ResetModels(); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Model catalog reset, selected %s", models.DefaultModelID)
		return nil
	},
}
