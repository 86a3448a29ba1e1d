// Package report provides the "santekit report" commands.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/chart"
	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/prompt"
	"github.com/klytics/santekit/internal/render"
	rpt "github.com/klytics/santekit/internal/report"
)

// NewCommand creates the "report" command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build health claims statistics reports",
		Long: `Build the claims statistics report of one health contract from the
DETAIL, PRODUCTION, EFFECTIF and adjustment clause workbooks.

Example:
  santekit report generate --detail DETAIL.xlsx --production PRODUCTION.xlsx \
    --headcount EFFECTIF.xlsx --insurer NSIA --client ACME --policy POL-A
  santekit report generate --job acme.yaml
  santekit report preview --job acme.yaml
  santekit report options --detail DETAIL.xlsx`,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newOptionsCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

// inputFlags are the flags shared by the commands that read a contract.
type inputFlags struct {
	job         string
	inputs      rpt.Inputs
	sel         claims.Selection
	interactive bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.job, "job", "", "Job file (YAML) naming inputs and selection")
	fl.StringVar(&f.inputs.Detail, "detail", "", "DETAIL workbook (claim lines)")
	fl.StringVar(&f.inputs.Production, "production", "", "PRODUCTION workbook (premiums)")
	fl.StringVar(&f.inputs.Headcount, "headcount", "", "EFFECTIF workbook (monthly headcount)")
	fl.StringVar(&f.inputs.Clause, "clause", "", "Adjustment clause workbook")
	fl.StringVar(&f.sel.Insurer, "insurer", "", "Insurer name")
	fl.StringVar(&f.sel.Client, "client", "", "Client name")
	fl.StringVar(&f.sel.Policy, "policy", "", "Policy id")
	fl.StringVar(&f.sel.InsurerPolicy, "insurer-policy", "", "Insurer policy number shown in the summary")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "Ask for the missing selection values")
}

// resolve merges the job file, when given, with the flags set on the
// command line. Flags win over the job file.
func (f *inputFlags) resolve(cmd *cobra.Command) (*config.Job, error) {
	job := &config.Job{}
	if f.job != "" {
		var err error
		if job, err = config.LoadJob(f.job); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	for name, dst := range map[string]*string{
		"detail":         &job.Inputs.Detail,
		"production":     &job.Inputs.Production,
		"headcount":      &job.Inputs.Headcount,
		"clause":         &job.Inputs.Clause,
		"insurer":        &job.Selection.Insurer,
		"client":         &job.Selection.Client,
		"policy":         &job.Selection.Policy,
		"insurer-policy": &job.Selection.InsurerPolicy,
	} {
		if fl.Changed(name) {
			v, _ := fl.GetString(name)
			*dst = v
		}
	}
	if job.Inputs.Detail == "" {
		return nil, errors.New("--detail or --job is required")
	}

	if f.interactive && job.Selection.Validate() != nil {
		d, err := claims.LoadDetail(job.Inputs.Detail)
		if err != nil {
			return nil, err
		}
		if job.Selection, err = prompt.SelectContract(prompt.NewSession(), claims.Options(d), job.Selection); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// check returns the job's issues as one error.
func check(job *config.Job) error {
	if issues := job.Validate(); len(issues) > 0 {
		return fmt.Errorf("invalid report request:\n  %s", strings.Join(issues, "\n  "))
	}
	return nil
}

// NewRenderer returns the renderer for format ("pdf" or "html").
func NewRenderer(cfg *config.Config, format string) (rpt.Renderer, error) {
	switch format {
	case "html":
		return render.NewHTMLRenderer(), nil
	case "pdf", "":
		r := render.NewPDFRenderer(cfg.Render.ChromePath, cfg.Render.Timeout)
		if r.ChromePath == "" {
			return nil, fmt.Errorf("%w; install Chromium or run: santekit config set render.chrome_path /path/to/chrome", render.ErrNoBrowser)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: pdf, html)", format)
	}
}

// Options turns a job into generation options using the configuration for
// everything the job leaves out.
func Options(cfg *config.Config, job *config.Job) (rpt.GenerateOptions, error) {
	format := job.Format
	if format == "" {
		format = cfg.Render.Format
	}
	renderer, err := NewRenderer(cfg, format)
	if err != nil {
		return rpt.GenerateOptions{}, err
	}

	logo := job.Logo
	if logo == "" {
		logo = cfg.Report.Logo
	}
	return rpt.GenerateOptions{
		Inputs:    job.Inputs,
		Selection: job.Selection,
		Analyze: rpt.AnalyzeOptions{
			MatchPolicy: cfg.Filter.MatchPolicy,
			TopLimit:    cfg.Report.TopLimit,
		},
		OutputPath:  job.Output,
		OutputDir:   cfg.Report.OutputDir,
		ExtractPath: job.Extract,
		ScratchDir:  cfg.ScratchDir,
		Logo:        logo,
		InsurerLogo: job.InsurerLogo,
		Title:       cfg.Report.Title,
		FooterLines: cfg.Report.FooterLines,
		Renderer:    renderer,
		Charts:      chart.New(cfg.Render.ChartWidth),
	}, nil
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
