package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klytics/santekit/internal/config"
)

func TestScratchCheck(t *testing.T) {
	dir := t.TempDir()
	if c := scratchCheck(dir); c.Status != "ok" {
		t.Errorf("writable dir: %+v", c)
	}
	if c := scratchCheck(filepath.Join(dir, "missing")); c.Status != "error" {
		t.Errorf("missing dir: %+v", c)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}

func TestBrowserCheck(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(exe, nil, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Render.ChromePath = exe
	if c := browserCheck(cfg); c.Status != "ok" || c.Message != exe {
		t.Errorf("configured browser: %+v", c)
	}

	cfg.Render.ChromePath = filepath.Join(t.TempDir(), "none")
	if c := browserCheck(cfg); c.Status != "error" {
		t.Errorf("missing browser: %+v", c)
	}
}
