package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"droidswitch/config/models"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.AddCommand(promptShowCmd, promptSetCmd, promptEditPathCmd, promptTemplatesCmd, promptAddCmd, promptRemoveCmd, promptApplyCmd)

	promptShowCmd.Flags().Bool("raw", false, "Print the markdown source instead of rendering it")
	promptTemplatesCmd.Flags().StringP("category", "c", "", "Only list templates of this category")
	promptTemplatesCmd.Flags().Bool("raw", false, "Print the markdown source instead of rendering it")
	promptAddCmd.Flags().StringP("description", "d", "", "Short description")
	promptAddCmd.Flags().StringP("category", "c", "", "Category")
}

// renderMarkdown renders md for the terminal, or returns it unchanged when
// raw is set
func renderMarkdown(md string, raw bool) (string, error) {
	if raw {
		return md, nil
	}
	style := styles.NoTTYStyleConfig
	if isTerminal() {
		style = styles.DarkStyleConfig
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(100),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

// readContent reads a file argument, or stdin for "-" or no argument
func readContent(cmd *cobra.Command, args []string) (string, error) {
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
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	return string(data), nil
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage the droid system prompt",
	Long:  "Show and edit ~/.factory/AGENTS.md and manage reusable prompt templates",
}

var promptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current system prompt",
	Long:  "Show the content of ~/.factory/AGENTS.md",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		content, err := a.prompts.SystemPrompt()
		if err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No system prompt set"))
			return nil
		}

		raw, _ := cmd.Flags().GetBool("raw")
		out, err := renderMarkdown(content, raw)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var promptSetCmd = &cobra.Command{
	Use:   "set [file]",
	Short: "Replace the system prompt",
	Long:  "Replace ~/.factory/AGENTS.md with the content of a file, or of stdin when no file (or \"-\") is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd, args)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.prompts.SetSystemPrompt(content); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Updated %s", a.prompts.AgentsPath())
		return nil
	},
}

var promptEditPathCmd = &cobra.Command{
	Use:   "edit-path",
	Short: "Print the path of the system prompt file",
	Long:  "Print the path of ~/.factory/AGENTS.md, e.g. for $EDITOR \"$(droidswitch prompt edit-path)\"",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.prompts.AgentsPath())
		return nil
	},
}

var promptTemplatesCmd = &cobra.Command{
	Use:   "templates [id]",
	Short: "List prompt templates",
	Long:  "List the recommended and custom prompt templates, or render one template when an id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		templates, err := a.prompts.All()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			tmpl, ok := lo.Find(templates, func(t models.PromptTemplate) bool { return t.ID == args[0] })
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			raw, _ := cmd.Flags().GetBool("raw")
			rendered, err := renderMarkdown(tmpl.Content, raw)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		}

		if category, _ := cmd.Flags().GetString("category"); category != "" {
			templates = lo.Filter(templates, func(t models.PromptTemplate, _ int) bool {
				return strings.EqualFold(t.Category, category)
			})
		}

		activeID, err := a.prompts.ActiveID()
		if err != nil {
			return err
		}
		for _, t := range templates {
			marker := " "
			name := t.Name
			if t.ID == activeID {
				marker = activeStyle.Render("*")
				name = activeStyle.Render(t.Name)
			}
			label := t.Category
			if !t.IsBuiltin {
				label = strings.TrimSpace(label + " custom")
			}
			fmt.Fprintf(out, "%s %-22s %s  %s\n", marker, t.ID, name, dimStyle.Render("["+label+"]"))
			if t.Description != "" {
				fmt.Fprintln(out, dimStyle.Render(indent(t.Description, "    ")))
			}
		}
		return nil
	},
}

var promptAddCmd = &cobra.Command{
	Use:   "add [name] [file]",
	Short: "Add a custom prompt template",
	Long:  "Add a custom prompt template from a file, or from stdin when no file (or \"-\") is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd, args[1:])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")

		a, err := newApp()
		if err != nil {
			return err
		}
		tmpl, err := a.prompts.Add(args[0], content, description, category)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Added template %s (%s)", tmpl.Name, tmpl.ID)
		return nil
	},
}

var promptRemoveCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm"},
	Short:   "Remove a custom prompt template",
	Long:    "Remove a custom prompt template. Recommended templates cannot be removed.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.prompts.Remove(args[0]); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Removed template %s", args[0])
		return nil
	},
}

var promptApplyCmd = &cobra.Command{
	Use:   "apply [id]",
	Short: "Write a template to the system prompt",
	Long:  "Replace ~/.factory/AGENTS.md with the given template and mark it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		tmpl, err := a.prompts.Apply(args[0])
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Applied template: %s", tmpl.Name)
		return nil
	},
}
