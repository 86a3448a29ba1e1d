// Package report turns claim workbooks into the health statistics report:
// it runs the section aggregations for one contract selection, lays the
// sections out in two passes and hands the document to a renderer.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
	"github.com/klytics/santekit/internal/stats"
)

// Renderer turns an assembled document into the output file bytes.
type Renderer interface {
	Render(ctx context.Context, doc *Document, bc *BuildContext) ([]byte, error)
	Ext() string
}

// ChartRenderer draws a chart image at path.
type ChartRenderer interface {
	RenderChart(c *stats.Chart, path string) error
}

// Inputs are the workbook paths. Detail is required; the others are
// optional and their sections are skipped with a warning when absent.
type Inputs struct {
	Detail     string `json:"detail" yaml:"detail"`
	Production string `json:"production" yaml:"production"`
	Headcount  string `json:"headcount" yaml:"headcount"`
	Clause     string `json:"clause,omitempty" yaml:"clause"`
}

// Paths lists the non-empty input paths.
func (in Inputs) Paths() []string {
	var out []string
	for _, p := range []string{in.Detail, in.Production, in.Headcount, in.Clause} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AnalyzeOptions tune the aggregations.
type AnalyzeOptions struct {
	MatchPolicy bool
	TopLimit    int
}

// Analysis is the computed content of a report.
type Analysis struct {
	Selection     claims.Selection    `json:"selection"`
	Detail        *claims.Detail      `json:"-"`
	Summary       claims.Summary      `json:"summary"`
	Period        string              `json:"period"`
	Sections      []*stats.Section    `json:"sections"`
	Beneficiaries stats.Beneficiaries `json:"beneficiaries"`
	Warnings      claims.Warnings     `json:"warnings"`
}

// Section returns the computed section with the given key, or nil.
func (a *Analysis) Section(key string) *stats.Section {
	for _, s := range a.Sections {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// Analyze loads the inputs, scopes them to the selection and computes every
// section. Each section is guarded: a failure becomes a warning and the
// other sections still run. Only an unreadable detail workbook, an invalid
// selection or an empty selection abort the analysis; with an empty
// selection the returned analysis carries the warnings and the error is
// claims.ErrEmptySelection.
func Analyze(ctx context.Context, in Inputs, sel claims.Selection, opts AnalyzeOptions) (*Analysis, error) {
	log := zerolog.Ctx(ctx)
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	sel = sel.Normalized()
	a := &Analysis{Selection: sel}

	detail, err := claims.LoadDetail(in.Detail)
	if err != nil {
		return nil, fmt.Errorf("could not load claim detail: %w", err)
	}
	a.Detail = claims.Filter(detail, sel, opts.MatchPolicy)
	log.Debug().Int("rows", len(detail.Claims)).Int("selected", len(a.Detail.Claims)).Msg("claim detail filtered")
	if len(a.Detail.Claims) == 0 {
		a.warn(ctx, claims.SectionDetail, "no claim for client %q and policy %q; every section is skipped", sel.Client, sel.Policy)
		return a, claims.ErrEmptySelection
	}
	if p, ok := claims.Period(a.Detail.Claims); ok {
		a.Period = p
	}

	var premiums claims.Premiums
	a.guard(ctx, claims.SectionProduction, func() error {
		var (
			row   claims.ProductionRow
			warns claims.Warnings
		)
		if in.Production == "" {
			return errors.New("no production workbook given; premiums set to 0")
		}
		prod, err := claims.LoadProduction(in.Production)
		if err != nil {
			return fmt.Errorf("%w; premiums set to 0", err)
		}
		premiums, row, warns = claims.LookupProduction(prod, sel)
		a.addWarnings(ctx, warns)
		if sel.InsurerPolicy == "" && row.InsurerPolicy != "" {
			sel.InsurerPolicy = row.InsurerPolicy
			a.Selection = sel
		}
		return nil
	})
	a.Summary = claims.Summarize(sel, premiums, a.Detail.Claims)
	a.Sections = append(a.Sections, stats.SummarySection(a.Summary))

	if in.Clause != "" {
		a.guard(ctx, claims.SectionClause, func() error {
			ct, warns, err := claims.LoadClauses(in.Clause)
			if err != nil {
				return err
			}
			a.addWarnings(ctx, warns)
			return a.add(stats.ClauseSection(ct, a.Summary.Ratio))
		})
	}

	var headcount []claims.HeadcountRecord
	a.guard(ctx, claims.SectionHeadcount, func() error {
		if in.Headcount == "" {
			return errors.New("no headcount workbook given")
		}
		recs, warns, err := claims.LoadHeadcount(in.Headcount)
		if err != nil {
			return err
		}
		a.addWarnings(ctx, warns)
		headcount = claims.FilterHeadcount(recs, sel)
		if len(headcount) == 0 {
			return fmt.Errorf("no headcount for insurer %q and client %q: %w", sel.Insurer, sel.Client, stats.ErrNoData)
		}
		return a.add(stats.HeadcountSection(headcount))
	})

	// Utilization needs a headcount; without one the section is left out.
	a.guard(ctx, claims.SectionBeneficiaries, func() error {
		if len(headcount) == 0 {
			return fmt.Errorf("no headcount for the selection: %w", stats.ErrNoData)
		}
		s, b, warns, err := stats.BeneficiarySection(a.Detail.Claims, headcount)
		a.addWarnings(ctx, warns)
		a.Beneficiaries = b
		return a.add(s, err)
	})

	a.guard(ctx, claims.SectionMonthly, func() error {
		s, warns, err := stats.MonthlySection(a.Detail)
		a.addWarnings(ctx, warns)
		return a.add(s, err)
	})

	a.guard(ctx, claims.SectionSpecialties, func() error {
		s, warns, err := stats.SpecialtySection(a.Detail)
		a.addWarnings(ctx, warns)
		return a.add(s, err)
	})

	a.guard(ctx, claims.SectionProviders, func() error {
		return a.add(stats.ProvidersSection(a.Detail.Claims, opts.TopLimit))
	})

	a.guard(ctx, claims.SectionFamilies, func() error {
		s, warns, err := stats.FamiliesSection(a.Detail, opts.TopLimit)
		a.addWarnings(ctx, warns)
		return a.add(s, err)
	})

	return a, nil
}

func (a *Analysis) add(s *stats.Section, err error) error {
	if err != nil {
		return err
	}
	if s != nil {
		a.Sections = append(a.Sections, s)
	}
	return nil
}

// guard runs one section step, turning its error or panic into a warning.
func (a *Analysis) guard(ctx context.Context, section string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Str("section", section).Interface("panic", r).
				Bytes("stack", debug.Stack()).Msg("section failed")
			a.warn(ctx, section, "section failed: %v", r)
		}
	}()
	if err := fn(); err != nil {
		if errors.Is(err, stats.ErrNoData) {
			a.warn(ctx, section, "section skipped: %v", err)
			return
		}
		a.warn(ctx, section, "%v", err)
	}
}

func (a *Analysis) warn(ctx context.Context, section, format string, args ...any) {
	var w claims.Warnings
	w.Add(section, format, args...)
	a.addWarnings(ctx, w)
}

func (a *Analysis) addWarnings(ctx context.Context, ws claims.Warnings) {
	for _, w := range ws {
		zerolog.Ctx(ctx).Warn().Str("section", w.Section).Msg(w.Message)
	}
	a.Warnings = append(a.Warnings, ws...)
}

// GenerateOptions configures report generation.
type GenerateOptions struct {
	Inputs      Inputs           `json:"inputs"`
	Selection   claims.Selection `json:"selection"`
	Analyze     AnalyzeOptions   `json:"-"`
	OutputPath  string           `json:"outputPath"`
	OutputDir   string           `json:"outputDir,omitempty"`
	ExtractPath string           `json:"extractPath,omitempty"`
	ScratchDir  string           `json:"-"`
	Logo        string           `json:"logo,omitempty"`
	InsurerLogo string           `json:"insurerLogo,omitempty"`
	Title       string           `json:"-"`
	FooterLines []string         `json:"-"`
	Now         time.Time        `json:"-"`

	Renderer Renderer      `json:"-"`
	Charts   ChartRenderer `json:"-"`

	// Progress, when set, is called as each of Steps starts.
	Progress func(step string) `json:"-"`
}

// Steps names the stages Generate reports through GenerateOptions.Progress.
var Steps = []string{"analyze", "charts", "assemble", "render", "write"}

// GenerateResult holds the outcome of report generation.
type GenerateResult struct {
	OutputPath  string          `json:"outputPath"`
	ExtractPath string          `json:"extractPath,omitempty"`
	Pages       int             `json:"pages"`
	Contents    []ContentsEntry `json:"contents"`
	Ratio       string          `json:"ratio"`
	Period      string          `json:"period,omitempty"`
	ClaimRows   int             `json:"claimRows"`
	Warnings    claims.Warnings `json:"warnings,omitempty"`
}

// Generate builds the report file. Temporary artifacts live in a build
// context that is removed on every return path.
func Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Renderer == nil {
		return nil, errors.New("no renderer configured")
	}
	log := zerolog.Ctx(ctx)

	bc, err := NewBuildContext(opts.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer bc.Cleanup()
	log.Debug().Str("build", bc.ID).Str("dir", bc.Dir).Msg("build context created")

	step := func(name string) {
		if opts.Progress != nil {
			opts.Progress(name)
		}
	}

	step("analyze")
	a, err := Analyze(ctx, opts.Inputs, opts.Selection, opts.Analyze)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Ratio:     normalize.FormatPercent(a.Summary.Ratio),
		Period:    a.Period,
		ClaimRows: len(a.Detail.Claims),
	}

	if opts.ExtractPath != "" {
		if err := claims.WriteExtract(a.Detail, opts.ExtractPath); err != nil {
			a.warn(ctx, claims.SectionDetail, "could not write extract: %v", err)
		} else {
			result.ExtractPath = opts.ExtractPath
		}
	}

	cover := Cover{
		Title:         opts.Title,
		Insurer:       a.Summary.Insurer,
		Client:        a.Summary.Client,
		InsurerPolicy: a.Summary.InsurerPolicy,
		Period:        a.Period,
		EditDate:      normalize.FormatDate(now(opts.Now)),
		FooterLines:   opts.FooterLines,
	}
	if opts.Logo != "" {
		if cover.Logo, err = bc.Import(ArtifactLogo, opts.Logo); err != nil {
			a.warn(ctx, "logo", "%v", err)
		}
	}
	if opts.InsurerLogo != "" {
		if cover.InsurerLogo, err = bc.Import(ArtifactInsurerLogo, opts.InsurerLogo); err != nil {
			a.warn(ctx, "logo", "%v", err)
		}
	}

	step("charts")
	parts := make([]Part, 0, len(a.Sections))
	for _, s := range a.Sections {
		part := Part{Section: s}
		if s.Chart != nil && opts.Charts != nil {
			path := bc.Path(s.Chart.File)
			if err := opts.Charts.RenderChart(s.Chart, path); err != nil {
				a.warn(ctx, s.Key, "could not draw chart: %v", err)
			} else {
				part.Image = path
			}
		}
		parts = append(parts, part)
	}

	step("assemble")
	footerName := a.Summary.Insurer + "_" + a.Summary.Client
	doc, err := Assemble(A4(), cover, parts, footerName)
	if err != nil {
		return nil, fmt.Errorf("could not assemble report: %w", err)
	}

	step("render")
	data, err := opts.Renderer.Render(ctx, doc, bc)
	if err != nil {
		return nil, fmt.Errorf("could not render report: %w", err)
	}

	step("write")
	out := opts.OutputPath
	if out == "" {
		out = filepath.Join(opts.OutputDir, normalize.FileName(a.Selection.Insurer, a.Selection.Client, opts.Renderer.Ext()))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return nil, fmt.Errorf("could not write %s: %w", out, err)
	}
	log.Info().Str("output", out).Int("pages", len(doc.Pages)).Msg("report written")

	result.OutputPath = out
	result.Pages = len(doc.Pages)
	result.Contents = doc.Contents
	result.Warnings = a.Warnings
	return result, nil
}

func now(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
