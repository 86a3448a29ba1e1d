package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/normalize"
	"github.com/klytics/santekit/internal/output"
)

func newExtractCmd() *cobra.Command {
	var (
		flags      inputFlags
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the claim lines of a contract to a new workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			job, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if err := job.Selection.Validate(); err != nil {
				return err
			}

			d, err := claims.LoadDetail(job.Inputs.Detail)
			if err != nil {
				return err
			}
			filtered := claims.Filter(d, job.Selection, cfg.Filter.MatchPolicy)
			if len(filtered.Claims) == 0 {
				return claims.ErrEmptySelection
			}

			out := outputPath
			if out == "" {
				out = filepath.Join(cfg.Report.OutputDir, extractName(job.Selection))
			}
			if err := claims.WriteExtract(filtered, out); err != nil {
				return err
			}

			if jsonFlag(cmd) {
				return output.PrintJSON("report extract", map[string]any{
					"outputPath": out,
					"claimRows":  len(filtered.Claims),
				})
			}
			fmt.Printf("Extract written → %s (%d claim lines)\n", out, len(filtered.Claims))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook (default: <insurer>_<client>_detail.xlsx)")
	return cmd
}

// extractName derives the extract file name from the report file name.
func extractName(sel claims.Selection) string {
	name := normalize.FileName(sel.Insurer, sel.Client, "xlsx")
	return strings.Replace(name, "_rapport_sante.", "_detail.", 1)
}
