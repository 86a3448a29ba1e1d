package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	t.Setenv("HOME", dir)
	t.Cleanup(viper.Reset)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Report.Title != DefaultTitle {
		t.Errorf("default title = %q", cfg.Report.Title)
	}
	if !cfg.Filter.MatchPolicy {
		t.Error("claims should be filtered by policy by default")
	}
	if cfg.Render.Format != "pdf" {
		t.Errorf("default format = %q", cfg.Render.Format)
	}
	if cfg.Render.Timeout != 60*time.Second {
		t.Errorf("default timeout = %s", cfg.Render.Timeout)
	}
	if cfg.Report.TopLimit != 0 {
		t.Errorf("default top_limit = %d", cfg.Report.TopLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("SANTEKIT_RENDER_FORMAT", "html")
	t.Setenv("SANTEKIT_FILTER_MATCH_POLICY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Format != "html" {
		t.Errorf("format = %q, want html from environment", cfg.Render.Format)
	}
	if cfg.Filter.MatchPolicy {
		t.Error("match_policy should be false from environment")
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := setupTestConfig(t)
	dir := filepath.Join(home, ".santekit")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "report:\n  top_limit: 10\n  footer_lines:\n    - Ankara Services\n    - Abidjan Plateau\nrender:\n  timeout: 90s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Report.TopLimit != 10 {
		t.Errorf("top_limit = %d", cfg.Report.TopLimit)
	}
	if len(cfg.Report.FooterLines) != 2 || cfg.Report.FooterLines[1] != "Abidjan Plateau" {
		t.Errorf("footer_lines = %v", cfg.Report.FooterLines)
	}
	if cfg.Render.Timeout != 90*time.Second {
		t.Errorf("timeout = %s", cfg.Render.Timeout)
	}
}

func TestSetAndGet(t *testing.T) {
	setupTestConfig(t)

	if err := Set("render.format", "html"); err != nil {
		t.Fatal(err)
	}
	if got := Get("render.format"); got != "html" {
		t.Errorf("Get(render.format) = %q, want %q", got, "html")
	}
	if _, err := os.Stat(ConfigPath()); err != nil {
		t.Errorf("config not saved: %v", err)
	}
}

func TestSetFooterLines(t *testing.T) {
	setupTestConfig(t)

	if err := Set("report.footer_lines", "Ankara Services | Tel 01 02"); err != nil {
		t.Fatal(err)
	}
	got := viper.GetStringSlice("report.footer_lines")
	if len(got) != 2 || got[0] != "Ankara Services" || got[1] != "Tel 01 02" {
		t.Errorf("footer_lines = %q", got)
	}
}

func TestSetUnknownKey(t *testing.T) {
	setupTestConfig(t)
	err := Set("provider", "openai")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestShowConfig(t *testing.T) {
	setupTestConfig(t)
	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	viper.Set("report.top_limit", 15)

	output := ShowConfig()
	for _, want := range []string{DefaultTitle, "top_limit:    15", "format:       pdf", "(none)"} {
		if !strings.Contains(output, want) {
			t.Errorf("ShowConfig misses %q:\n%s", want, output)
		}
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if !strings.Contains(path, ".santekit") || !strings.Contains(path, "config.yaml") {
		t.Errorf("unexpected path: %q", path)
	}
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)

	viper.Set("render.format", "html")
	if err := SaveConfig(); err != nil {
		t.Fatal(err)
	}
	if err := ResetConfig(); err != nil {
		t.Fatal(err)
	}
	if viper.GetString("render.format") != "pdf" {
		t.Errorf("format should reset to default, got %q", viper.GetString("render.format"))
	}
	if _, err := os.Stat(ConfigPath()); !os.IsNotExist(err) {
		t.Error("config file should be deleted")
	}
}

func TestValidate(t *testing.T) {
	setupTestConfig(t)
	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	for _, issue := range Validate() {
		if issue.Severity == "error" {
			t.Errorf("default config has an error: %+v", issue)
		}
	}

	viper.Set("render.format", "docx")
	viper.Set("scratch_dir", filepath.Join(t.TempDir(), "missing"))
	viper.Set("filter.match_policy", false)

	found := map[string]string{}
	for _, issue := range Validate() {
		found[issue.Key] = issue.Severity
	}
	if found["render.format"] != "error" {
		t.Error("expected error about render format")
	}
	if found["scratch_dir"] != "error" {
		t.Error("expected error about scratch dir")
	}
	if found["filter.match_policy"] != "info" {
		t.Error("expected info about client-only filtering")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(defaults) {
		t.Fatalf("got %d keys", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
