package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(wrapperCmd)
	wrapperCmd.AddCommand(wrapperInstallCmd, wrapperRemoveCmd, wrapperStatusCmd)
}

var wrapperCmd = &cobra.Command{
	Use:   "wrapper",
	Short: "Manage the droid shell wrapper",
	Long: `Manage the droid wrapper function in your shell profiles

The wrapper reads the api_key from ~/.factory/config.json every time droid
starts and exports it as FACTORY_API_KEY, so switching providers takes
effect without opening a new terminal. It is installed automatically on
switch; these commands manage it explicitly.`,
}

var wrapperInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install or upgrade the wrapper",
	Long:  "Install the wrapper into every profile of this platform, upgrading older versions in place",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		report := a.patcher.Install()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrapper (%s):\n", report.Platform)
		printReport(out, report)

		if err := report.Err(); err != nil {
			return err
		}
		if report.Changed() {
			printSuccess(out, "Wrapper installed, open a new terminal to load it")
		} else {
			printSuccess(out, "Wrapper already up to date")
		}
		return nil
	},
}

var wrapperRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"uninstall"},
	Short:   "Remove the wrapper",
	Long:    "Remove the wrapper block from every profile. Content outside the block is left untouched.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		report := a.patcher.Uninstall()
		out := cmd.OutOrStdout()
		printReport(out, report)
		if err := report.Err(); err != nil {
			return err
		}
		printSuccess(out, "Wrapper removed")
		return nil
	},
}

var wrapperStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the wrapper is installed",
	Long:  "Show, for every profile of this platform, whether the wrapper is absent, current or stale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrapper (%s, version %s):\n", a.patcher.Integration().Name(), targetVersions(a))
		for _, st := range a.patcher.Status() {
			switch {
			case st.Err != nil:
				fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("  %-20s %s: %v", "error", st.Target.Path, st.Err)))
			case !st.Exists:
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  %-20s %s", "missing", st.Target.Path)))
			default:
				fmt.Fprintf(out, "  %-20s %s\n", st.State, st.Target.Path)
			}
		}
		return nil
	},
}

func targetVersions(a *app) string {
	seen := map[string]bool{}
	var versions string
	for _, t := range a.patcher.Integration().Targets() {
		v := fmt.Sprintf("%s v%d", t.Template.Name, t.Template.Version)
		if seen[v] {
			continue
		}
		seen[v] = true
		if versions != "" {
			versions += ", "
		}
		versions += v
	}
	return versions
}
