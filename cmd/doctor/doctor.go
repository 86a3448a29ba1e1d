// Package doctor provides the "santekit doctor" command for checking system health.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/output"
	"github.com/klytics/santekit/internal/render"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and dependencies",
		Long:  "Run diagnostic checks to verify santekit can render reports on this machine.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			checks := runChecks(cfg)

			if v, _ := cmd.Flags().GetBool("json"); v {
				return output.PrintJSON("doctor", checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Println("santekit doctor")
			fmt.Println("===============")
			fmt.Println()

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Printf("  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Println()
			fmt.Printf("  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

func runChecks(cfg *config.Config) []Check {
	checks := []Check{{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}}

	if _, err := os.Stat(config.ConfigPath()); err == nil {
		checks = append(checks, Check{Name: "Config File", Status: "ok", Message: config.ConfigPath()})
	} else {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "warning",
			Message: "Not found, defaults are used; create one with 'santekit config set'",
		})
	}

	checks = append(checks, browserCheck(cfg))
	checks = append(checks, scratchCheck(cfg.ScratchDir))

	for _, issue := range config.Validate() {
		if issue.Severity == "info" {
			continue
		}
		checks = append(checks, Check{
			Name:    "Config " + issue.Key,
			Status:  issue.Severity,
			Message: issue.Message,
		})
	}
	return checks
}

func browserCheck(cfg *config.Config) Check {
	c := Check{Name: "Chromium"}
	path := cfg.Render.ChromePath
	if path == "" {
		path = render.DetectChromePath()
	}
	switch {
	case path == "" && cfg.Render.Format == "html":
		c.Status, c.Message = "warning", "not found; only --format html will work"
	case path == "":
		c.Status, c.Message = "error", "not found; install Chromium or set render.chrome_path"
	default:
		if _, err := os.Stat(path); err != nil {
			c.Status, c.Message = "error", fmt.Sprintf("%s is not readable", path)
		} else {
			c.Status, c.Message = "ok", path
		}
	}
	return c
}

// scratchCheck creates and removes a file where build contexts are created.
func scratchCheck(dir string) Check {
	if dir == "" {
		dir = os.TempDir()
	}
	c := Check{Name: "Scratch Directory"}
	f, err := os.CreateTemp(dir, "santekit-doctor-*")
	if err != nil {
		c.Status, c.Message = "error", fmt.Sprintf("%s is not writable: %v", dir, err)
		return c
	}
	f.Close()
	os.Remove(f.Name())
	c.Status, c.Message = "ok", filepath.Clean(dir)
	return c
}
