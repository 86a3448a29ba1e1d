// Package watch provides the "santekit watch" command.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cmdreport "github.com/klytics/santekit/cmd/report"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
	rpt "github.com/klytics/santekit/internal/report"
	w "github.com/klytics/santekit/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		jobPath   string
		debounce  time.Duration
		noInitial bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate a report whenever one of its workbooks changes",
		Long: `Watch the input workbooks and the job file of a report and regenerate the
report after each change. Runs until interrupted.

Example:
  santekit watch --job acme.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobPath == "" {
				return fmt.Errorf("--job is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			r := &regenerator{cfg: cfg, jobPath: jobPath, json: jsonFlag(cmd)}
			if err := r.load(); err != nil {
				return err
			}

			files := append(r.job.Inputs.Paths(), r.job.Path)
			watcher, err := w.New(w.Config{Files: files, Debounce: debounce}, r.handle)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if !noInitial {
				if err := r.generate(ctx); err != nil {
					zerolog.Ctx(ctx).Error().Err(err).Msg("initial generation failed")
				}
			}
			if !r.json {
				fmt.Printf("Watching %d file(s) in %v (Ctrl+C to stop)\n", len(files), watcher.Dirs())
			}
			return watcher.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&jobPath, "job", "", "Job file (YAML) naming inputs and selection")
	cmd.Flags().DurationVar(&debounce, "debounce", w.DefaultDebounce, "Quiet time after the last change before regenerating")
	cmd.Flags().BoolVar(&noInitial, "no-initial", false, "Do not generate the report on start")
	return cmd
}

// regenerator rebuilds the report of one job. The job file is read again
// when it changes; the set of watched files stays the one read at start.
type regenerator struct {
	cfg     *config.Config
	jobPath string
	json    bool

	job  *config.Job
	opts rpt.GenerateOptions
}

func (r *regenerator) load() error {
	job, err := config.LoadJob(r.jobPath)
	if err != nil {
		return err
	}
	if issues := job.Validate(); len(issues) > 0 {
		return fmt.Errorf("invalid job %s: %v", r.jobPath, issues)
	}
	opts, err := cmdreport.Options(r.cfg, job)
	if err != nil {
		return err
	}
	r.job, r.opts = job, opts
	return nil
}

func (r *regenerator) handle(ctx context.Context, changed []string) error {
	jobAbs, _ := filepath.Abs(r.jobPath)
	for _, p := range changed {
		if p == jobAbs {
			if err := r.load(); err != nil {
				return err
			}
			zerolog.Ctx(ctx).Info().Str("job", r.jobPath).Msg("job reloaded")
			break
		}
	}
	return r.generate(ctx)
}

func (r *regenerator) generate(ctx context.Context) error {
	result, err := rpt.Generate(ctx, r.opts)
	if err != nil {
		return err
	}
	if r.json {
		return output.PrintJSON("watch", result)
	}
	fmt.Printf("%s %s  %d pages, ratio %s, %d warning(s)\n",
		color.GreenString(time.Now().Format("15:04:05")), result.OutputPath, result.Pages, result.Ratio, len(result.Warnings))
	return nil
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
