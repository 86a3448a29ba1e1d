package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/render"
)

func parse(t *testing.T, args ...string) (*inputFlags, *cobra.Command) {
	t.Helper()
	var f inputFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return &f, cmd
}

func TestResolveFromFlags(t *testing.T) {
	f, cmd := parse(t, "--detail", "DETAIL.xlsx", "--insurer", "NSIA", "--client", "ACME", "--policy", "POL-A")
	job, err := f.resolve(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if job.Inputs.Detail != "DETAIL.xlsx" {
		t.Errorf("detail = %q", job.Inputs.Detail)
	}
	want := claims.Selection{Insurer: "NSIA", Client: "ACME", Policy: "POL-A"}
	if job.Selection != want {
		t.Errorf("selection = %+v", job.Selection)
	}
}

func TestResolveFlagsOverrideJob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	content := config.GenerateJobTemplate("NSIA", "ACME", "POL-A")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, cmd := parse(t, "--job", path, "--policy", "POL-B")
	job, err := f.resolve(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if job.Selection.Policy != "POL-B" {
		t.Errorf("policy = %q, want the flag value", job.Selection.Policy)
	}
	if job.Selection.Client != "ACME" {
		t.Errorf("client = %q, want the job value", job.Selection.Client)
	}
	if job.Inputs.Detail != filepath.Join(dir, "DETAIL.xlsx") {
		t.Errorf("detail = %q", job.Inputs.Detail)
	}
}

func TestResolveRequiresDetail(t *testing.T) {
	f, cmd := parse(t, "--client", "ACME")
	if _, err := f.resolve(cmd); err == nil {
		t.Error("expected error without --detail")
	}
}

func TestCheck(t *testing.T) {
	job := &config.Job{Format: "docx"}
	err := check(job)
	if err == nil || !strings.Contains(err.Error(), "format must be pdf or html") {
		t.Errorf("check = %v", err)
	}
}

func TestNewRenderer(t *testing.T) {
	cfg := &config.Config{}
	r, err := NewRenderer(cfg, "html")
	if err != nil {
		t.Fatal(err)
	}
	if r.Ext() != "html" {
		t.Errorf("ext = %q", r.Ext())
	}
	if _, err := NewRenderer(cfg, "docx"); err == nil {
		t.Error("expected error for docx")
	}

	cfg.Render.ChromePath = "/opt/chrome/chrome"
	r, err = NewRenderer(cfg, "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := r.(*render.PDFRenderer); !ok || p.ChromePath != "/opt/chrome/chrome" {
		t.Errorf("renderer = %#v", r)
	}
}

func TestOptionsUsesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Render.Format = "html"
	cfg.Report.Logo = "/srv/logo.png"
	cfg.Report.TopLimit = 15
	cfg.Report.OutputDir = "/srv/out"
	cfg.Filter.MatchPolicy = true

	opts, err := Options(cfg, &config.Job{Output: "x.html"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Renderer.Ext() != "html" {
		t.Errorf("renderer ext = %q", opts.Renderer.Ext())
	}
	if opts.Logo != "/srv/logo.png" || opts.OutputPath != "x.html" || opts.OutputDir != "/srv/out" {
		t.Errorf("opts = %+v", opts)
	}
	if !opts.Analyze.MatchPolicy || opts.Analyze.TopLimit != 15 {
		t.Errorf("analyze = %+v", opts.Analyze)
	}
	if opts.Charts == nil {
		t.Error("charts renderer not set")
	}
}

func TestExtractName(t *testing.T) {
	got := extractName(claims.Selection{Insurer: "NSIA", Client: "ACME SARL"})
	if got != "NSIA_ACME_SARL_detail.xlsx" {
		t.Errorf("extractName = %q", got)
	}
}

func TestFormatOptions(t *testing.T) {
	out := formatOptions(claims.Choices{
		Insurers: []string{"NSIA"},
		Clients:  []string{"ACME", "BETA"},
		Policies: map[string][]string{"ACME": {"POL-A", "POL-B"}},
	})
	for _, want := range []string{"NSIA", "ACME  policies: POL-A, POL-B", "  BETA\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestNewCommandSubcommands(t *testing.T) {
	cmd := NewCommand()
	for _, name := range []string{"generate", "preview", "options", "extract", "init"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
