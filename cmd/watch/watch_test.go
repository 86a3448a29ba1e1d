package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klytics/santekit/internal/config"
)

func writeJob(t *testing.T, dir, format string) string {
	t.Helper()
	for _, name := range []string{"DETAIL.xlsx", "PRODUCTION.xlsx", "EFFECTIF.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	content := strings.Replace(config.GenerateJobTemplate("NSIA", "ACME", "POL-A"), "format: pdf", "format: "+format, 1)
	path := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegeneratorLoad(t *testing.T) {
	path := writeJob(t, t.TempDir(), "html")
	r := &regenerator{cfg: &config.Config{}, jobPath: path}
	if err := r.load(); err != nil {
		t.Fatal(err)
	}
	if r.opts.Renderer.Ext() != "html" {
		t.Errorf("renderer = %q", r.opts.Renderer.Ext())
	}
	if r.opts.Selection.Client != "ACME" {
		t.Errorf("selection = %+v", r.opts.Selection)
	}
}

func TestRegeneratorLoadInvalid(t *testing.T) {
	path := writeJob(t, t.TempDir(), "docx")
	r := &regenerator{cfg: &config.Config{}, jobPath: path}
	if err := r.load(); err == nil {
		t.Error("expected error for an invalid job")
	}
}

func TestHandleReloadsJob(t *testing.T) {
	dir := t.TempDir()
	path := writeJob(t, dir, "html")
	r := &regenerator{cfg: &config.Config{}, jobPath: path}
	if err := r.load(); err != nil {
		t.Fatal(err)
	}

	// Break the job: the reload must fail before any generation starts.
	if err := os.WriteFile(path, []byte("format: docx\n"), 0644); err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(path)
	err := r.handle(context.Background(), []string{abs})
	if err == nil || !strings.Contains(err.Error(), "invalid job") {
		t.Errorf("handle = %v", err)
	}
}

func TestNewCommandRequiresJob(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without --job")
	}
}
