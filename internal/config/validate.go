package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	switch f := viper.GetString("render.format"); f {
	case "pdf", "html":
	default:
		issues = append(issues, ConfigIssue{
			Key:      "render.format",
			Severity: "error",
			Message:  fmt.Sprintf("render format %q is not supported", f),
			Fix:      "santekit config set render.format pdf",
		})
	}

	switch f := viper.GetString("log.format"); f {
	case "text", "json":
	default:
		issues = append(issues, ConfigIssue{
			Key:      "log.format",
			Severity: "warning",
			Message:  fmt.Sprintf("log format %q is unknown, text is used", f),
			Fix:      "santekit config set log.format text",
		})
	}

	if viper.GetDuration("render.timeout") <= 0 {
		issues = append(issues, ConfigIssue{
			Key:      "render.timeout",
			Severity: "warning",
			Message:  "render timeout is not a positive duration, 60s is used",
			Fix:      "santekit config set render.timeout 60s",
		})
	}

	if viper.GetInt("report.top_limit") < 0 {
		issues = append(issues, ConfigIssue{
			Key:      "report.top_limit",
			Severity: "error",
			Message:  "top_limit cannot be negative",
			Fix:      "santekit config set report.top_limit 0",
		})
	}

	if logo := viper.GetString("report.logo"); logo != "" {
		if _, err := os.Stat(logo); err != nil {
			issues = append(issues, ConfigIssue{
				Key:      "report.logo",
				Severity: "warning",
				Message:  fmt.Sprintf("company logo %s is not readable; reports will have no logo", logo),
				Fix:      "santekit config set report.logo /path/to/logo.png",
			})
		} else {
			issues = append(issues, ConfigIssue{
				Key:      "report.logo",
				Severity: "info",
				Message:  "company logo configured",
			})
		}
	}

	if dir := viper.GetString("scratch_dir"); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			issues = append(issues, ConfigIssue{
				Key:      "scratch_dir",
				Severity: "error",
				Message:  fmt.Sprintf("scratch directory %s does not exist", dir),
				Fix:      "mkdir -p " + dir + "\nOr: santekit config set scratch_dir \"\"",
			})
		}
	}

	if !viper.GetBool("filter.match_policy") {
		issues = append(issues, ConfigIssue{
			Key:      "filter.match_policy",
			Severity: "info",
			Message:  "claims are filtered by client only; every policy of the client is reported",
		})
	}

	return issues
}
