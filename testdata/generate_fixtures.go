//go:build ignore

// This program writes a sample set of santekit input workbooks and a job
// file to testdata/sample, for trying the CLI:
//
//	go run testdata/generate_fixtures.go
//	santekit report generate --job testdata/sample/job.yaml --format html
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klytics/santekit/internal/config"
	"github.com/klytics/santekit/internal/sample"
)

func main() {
	dir := filepath.Join("testdata", "sample")
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	opts := sample.Defaults()
	if _, err := sample.Write(dir, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating workbooks: %v\n", err)
		os.Exit(1)
	}

	job := config.GenerateJobTemplate(opts.Insurer, opts.Client, opts.Policy)
	job = strings.Replace(job, `clause: ""`, "clause: "+sample.ClauseFile, 1)
	if err := os.WriteFile(filepath.Join(dir, "job.yaml"), []byte(job), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing job file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sample inputs generated in %s.\n", dir)
}
