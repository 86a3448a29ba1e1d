// Package config provides the "santekit config" commands.
package config

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage santekit configuration",
		Long: `View and modify santekit settings stored in ~/.santekit/config.yaml.
Every key can also be set through the environment, e.g. SANTEKIT_RENDER_FORMAT=html.`,
		// Replaces the root hook, which fails on a broken config file:
		// "path" and "reset" must work in that case.
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if v, _ := cmd.Flags().GetBool("no-color"); v {
				color.NoColor = true
			}
		},
	}

	completeKey := func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current configuration",
			RunE: loaded(func(cmd *cobra.Command, args []string) error {
				if jsonFlag(cmd) {
					return output.PrintJSON("config show", viper.AllSettings())
				}
				fmt.Fprint(cmd.OutOrStdout(), config.ShowConfig())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long: `Set a configuration value and save it.

Footer lines are given as one value separated by "|":
  santekit config set report.footer_lines "Ankara Services | Abidjan Plateau"`,
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: completeKey,
			RunE: loaded(func(cmd *cobra.Command, args []string) error {
				if err := config.Set(args[0], args[1]); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s = %s\n", args[0], config.Get(args[0]))
				for _, issue := range config.Validate() {
					if issue.Key == args[0] && issue.Severity != "info" {
						writeIssue(out, issue)
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:               "get <key>",
			Short:             "Print one configuration value",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completeKey,
			RunE: loaded(func(cmd *cobra.Command, args []string) error {
				if !known(args[0]) {
					return fmt.Errorf("unknown config key %q; run: santekit config keys", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the configuration keys",
			Run: func(cmd *cobra.Command, args []string) {
				for _, k := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the config file and restore the defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.ResetConfig(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults")
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration",
			RunE:  loaded(validate),
		},
	)
	return cmd
}

func validate(cmd *cobra.Command, args []string) error {
	issues := config.Validate()
	if jsonFlag(cmd) {
		return output.PrintJSON("config validate", issues)
	}

	out := cmd.OutOrStdout()
	count := map[string]int{}
	for _, issue := range issues {
		count[issue.Severity]++
		writeIssue(out, issue)
	}
	switch {
	case count["error"] > 0:
		return fmt.Errorf("%d configuration error(s), %d warning(s)", count["error"], count["warning"])
	case count["warning"] > 0:
		fmt.Fprintf(out, "Configuration usable with %d warning(s)\n", count["warning"])
	default:
		color.New(color.FgGreen).Fprintln(out, "Configuration is valid")
	}
	return nil
}

var severityColor = map[string]color.Attribute{
	"error":   color.FgRed,
	"warning": color.FgYellow,
	"info":    color.FgCyan,
}

func writeIssue(w io.Writer, issue config.ConfigIssue) {
	color.New(severityColor[issue.Severity]).Fprintf(w, "  %-7s %s: %s\n", issue.Severity, issue.Key, issue.Message)
	if issue.Fix != "" {
		fmt.Fprintf(w, "          fix: %s\n", issue.Fix)
	}
}

// loaded reads the config file before running fn.
func loaded(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func known(key string) bool {
	for _, k := range config.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
