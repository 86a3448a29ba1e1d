// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTitle is the cover page title.
const DefaultTitle = "STATISTIQUES DE GESTION SANTE"

// Config holds the application configuration.
type Config struct {
	ScratchDir string `mapstructure:"scratch_dir"`
	Log        struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Filter struct {
		MatchPolicy bool `mapstructure:"match_policy"`
	} `mapstructure:"filter"`
	Report struct {
		Title       string   `mapstructure:"title"`
		Logo        string   `mapstructure:"logo"`
		FooterLines []string `mapstructure:"footer_lines"`
		TopLimit    int      `mapstructure:"top_limit"`
		OutputDir   string   `mapstructure:"output_dir"`
	} `mapstructure:"report"`
	Render struct {
		Format     string        `mapstructure:"format"`
		ChromePath string        `mapstructure:"chrome_path"`
		Timeout    time.Duration `mapstructure:"timeout"`
		ChartWidth int           `mapstructure:"chart_width"`
	} `mapstructure:"render"`
	Output struct {
		Color bool `mapstructure:"color"`
	} `mapstructure:"output"`
}

var defaults = map[string]any{
	"scratch_dir":         "",
	"log.format":          "text",
	"filter.match_policy": true,
	"report.title":        DefaultTitle,
	"report.logo":         "",
	"report.footer_lines": []string{},
	"report.top_limit":    0,
	"report.output_dir":   ".",
	"render.format":       "pdf",
	"render.chrome_path":  "",
	"render.timeout":      "60s",
	"render.chart_width":  1200,
	"output.color":        true,
}

// Load reads the configuration from ~/.santekit/config.yaml and environment
// variables prefixed with SANTEKIT_.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	viper.SetEnvPrefix("SANTEKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".santekit"
	}
	return filepath.Join(home, ".santekit")
}

// Set sets a config value and saves to disk. Footer lines are given as
// one value separated by "|".
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == "report.footer_lines" {
		var lines []string
		for _, l := range strings.Split(value, "|") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		viper.Set(key, lines)
	} else {
		viper.Set(key, value)
	}
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// Keys lists the known config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetConfig deletes the config file and restores the defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	return nil
}

// SaveConfig writes the current config to ~/.santekit/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	os.Chmod(path, 0600)
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	sb.WriteString("Report\n")
	sb.WriteString(fmt.Sprintf("  title:        %s\n", viper.GetString("report.title")))
	sb.WriteString(fmt.Sprintf("  logo:         %s\n", orNone(viper.GetString("report.logo"))))
	sb.WriteString(fmt.Sprintf("  top_limit:    %s\n", topLimit(viper.GetInt("report.top_limit"))))
	sb.WriteString(fmt.Sprintf("  output_dir:   %s\n", viper.GetString("report.output_dir")))
	for _, l := range viper.GetStringSlice("report.footer_lines") {
		sb.WriteString(fmt.Sprintf("  footer:       %s\n", l))
	}
	sb.WriteString(fmt.Sprintf("  match_policy: %t\n", viper.GetBool("filter.match_policy")))
	sb.WriteString("\n")

	sb.WriteString("Render\n")
	sb.WriteString(fmt.Sprintf("  format:       %s\n", viper.GetString("render.format")))
	sb.WriteString(fmt.Sprintf("  chrome_path:  %s\n", orNone(viper.GetString("render.chrome_path"))))
	sb.WriteString(fmt.Sprintf("  timeout:      %s\n", viper.GetDuration("render.timeout")))
	sb.WriteString(fmt.Sprintf("  scratch_dir:  %s\n", orNone(viper.GetString("scratch_dir"))))
	sb.WriteString("\n")

	sb.WriteString("Output\n")
	sb.WriteString(fmt.Sprintf("  log.format:   %s\n", viper.GetString("log.format")))
	sb.WriteString(fmt.Sprintf("  color:        %t\n", viper.GetBool("output.color")))
	sb.WriteString("\n")

	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func topLimit(n int) string {
	if n <= 0 {
		return "all rows"
	}
	return fmt.Sprintf("%d", n)
}
