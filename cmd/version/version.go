// Package version provides the version command for the santekit CLI.
package version

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set at build time via ldflags:
//
//	-ldflags "-X github.com/klytics/santekit/cmd/version.Version=v1.2.0 -X github.com/klytics/santekit/cmd/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Go      string `json:"go"`
}

// NewCommand returns the version subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the santekit version",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := Info{Version: Version, Commit: Commit, Go: runtime.Version()}
			if v, _ := cmd.Flags().GetBool("json"); v {
				return json.NewEncoder(os.Stdout).Encode(info)
			}
			if info.Commit != "" {
				fmt.Printf("santekit %s (%s, %s)\n", info.Version, info.Commit, info.Go)
			} else {
				fmt.Printf("santekit %s (%s)\n", info.Version, info.Go)
			}
			return nil
		},
	}
}
