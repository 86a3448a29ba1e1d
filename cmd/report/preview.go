package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
	"github.com/klytics/santekit/internal/progress"
	rpt "github.com/klytics/santekit/internal/report"
	"github.com/klytics/santekit/internal/stats"
)

// previewData is the JSON payload of "report preview".
type previewData struct {
	Selection claims.Selection `json:"selection"`
	Period    string           `json:"period,omitempty"`
	ClaimRows int              `json:"claimRows"`
	Sections  []*stats.Section `json:"sections"`
	Warnings  claims.Warnings  `json:"warnings,omitempty"`
}

func newPreviewCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the report tables on the terminal without rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			job, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if err := check(job); err != nil {
				return err
			}

			spin := progress.NewSpinner("Analyzing claims...")
			spin.Start()
			a, err := rpt.Analyze(cmd.Context(), job.Inputs, job.Selection, rpt.AnalyzeOptions{
				MatchPolicy: cfg.Filter.MatchPolicy,
				TopLimit:    cfg.Report.TopLimit,
			})
			spin.Stop("")
			if errors.Is(err, claims.ErrEmptySelection) {
				return fmt.Errorf("%w: insurer %q, client %q, policy %q", err, job.Selection.Insurer, job.Selection.Client, job.Selection.Policy)
			} else if err != nil {
				return err
			}

			data := previewData{
				Selection: a.Selection,
				Period:    a.Period,
				ClaimRows: len(a.Detail.Claims),
				Sections:  a.Sections,
				Warnings:  a.Warnings,
			}
			if jsonFlag(cmd) {
				return output.PrintJSON("report preview", data)
			}
			return output.Show(os.Stdout, formatPreview(data))
		},
	}

	flags.register(cmd)
	return cmd
}

func formatPreview(p previewData) string {
	var sb strings.Builder
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(&sb, "%s  %s / %s / %s\n", bold("Contract"), p.Selection.Insurer, p.Selection.Client, p.Selection.Policy)
	if p.Period != "" {
		fmt.Fprintf(&sb, "%s    %s\n", bold("Period"), p.Period)
	}
	fmt.Fprintf(&sb, "%s    %d claim lines\n\n", bold("Detail"), p.ClaimRows)

	for _, s := range p.Sections {
		output.WriteSection(&sb, s)
	}

	if len(p.Warnings) > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintln(&sb, yellow(fmt.Sprintf("%d warning(s):", len(p.Warnings))))
		for _, w := range p.Warnings {
			fmt.Fprintf(&sb, "  %s %s\n", yellow("!"), w)
		}
	}
	return sb.String()
}
