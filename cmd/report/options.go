package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
)

func newOptionsCmd() *cobra.Command {
	var (
		detail string
		job    string
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the insurers, clients and policies found in a DETAIL workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if detail == "" && job != "" {
				j, err := config.LoadJob(job)
				if err != nil {
					return err
				}
				detail = j.Inputs.Detail
			}
			if detail == "" {
				return errors.New("--detail or --job is required")
			}

			d, err := claims.LoadDetail(detail)
			if err != nil {
				return err
			}
			choices := claims.Options(d)

			if jsonFlag(cmd) {
				return output.PrintJSON("report options", choices)
			}
			fmt.Print(formatOptions(choices))
			return nil
		},
	}

	cmd.Flags().StringVar(&detail, "detail", "", "DETAIL workbook (claim lines)")
	cmd.Flags().StringVar(&job, "job", "", "Job file whose DETAIL workbook to read")
	return cmd
}

func formatOptions(ch claims.Choices) string {
	var sb strings.Builder
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(&sb, "%s (%d)\n", bold("Insurers"), len(ch.Insurers))
	for _, i := range ch.Insurers {
		fmt.Fprintf(&sb, "  %s\n", i)
	}
	fmt.Fprintf(&sb, "\n%s (%d)\n", bold("Clients"), len(ch.Clients))
	for _, c := range ch.Clients {
		policies := ch.Policies[c]
		if len(policies) == 0 {
			fmt.Fprintf(&sb, "  %s\n", c)
			continue
		}
		fmt.Fprintf(&sb, "  %s  policies: %s\n", c, strings.Join(policies, ", "))
	}
	return sb.String()
}
