package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/report"
)

// Job is a saved report request: the four workbooks, the contract to report
// on and where to write the result. Relative paths are resolved against the
// job file's directory.
type Job struct {
	Inputs      report.Inputs    `yaml:"inputs" json:"inputs"`
	Selection   claims.Selection `yaml:"selection" json:"selection"`
	Logo        string           `yaml:"logo,omitempty" json:"logo,omitempty"`
	InsurerLogo string           `yaml:"insurer_logo,omitempty" json:"insurer_logo,omitempty"`
	Output      string           `yaml:"output,omitempty" json:"output,omitempty"`
	Extract     string           `yaml:"extract,omitempty" json:"extract,omitempty"`
	Format      string           `yaml:"format,omitempty" json:"format,omitempty"`

	// Path is the file the job was read from.
	Path string `yaml:"-" json:"-"`
}

// LoadJob reads and resolves the job file at path.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read job file %s: %w", path, err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("invalid job file %s: %w", path, err)
	}
	job.Path = path
	job.resolve(filepath.Dir(path))
	return &job, nil
}

func (j *Job) resolve(base string) {
	for _, p := range []*string{
		&j.Inputs.Detail, &j.Inputs.Production, &j.Inputs.Headcount, &j.Inputs.Clause,
		&j.Logo, &j.InsurerLogo, &j.Output, &j.Extract,
	} {
		*p = resolvePath(base, *p)
	}
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks that a job names what a report needs.
func (j *Job) Validate() []string {
	var issues []string
	if j.Inputs.Detail == "" {
		issues = append(issues, "inputs.detail is required")
	}
	if err := j.Selection.Validate(); err != nil {
		issues = append(issues, err.Error())
	}
	switch j.Format {
	case "", "pdf", "html":
	default:
		issues = append(issues, fmt.Sprintf("format must be pdf or html, got %q", j.Format))
	}
	for _, in := range []struct{ name, path string }{
		{"inputs.detail", j.Inputs.Detail},
		{"inputs.production", j.Inputs.Production},
		{"inputs.headcount", j.Inputs.Headcount},
		{"inputs.clause", j.Inputs.Clause},
	} {
		if in.path == "" {
			continue
		}
		if _, err := os.Stat(in.path); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %s does not exist", in.name, in.path))
		}
	}
	return issues
}

// GenerateJobTemplate returns a YAML template for a job file.
func GenerateJobTemplate(insurer, client, policy string) string {
	return fmt.Sprintf(`# santekit job file
# Paths are relative to this file.

inputs:
  detail: DETAIL.xlsx
  production: PRODUCTION.xlsx
  headcount: EFFECTIF.xlsx
  clause: ""            # optional adjustment clause workbook

selection:
  insurer: %q
  client: %q
  policy: %q
  insurer_policy: ""

logo: ""
insurer_logo: ""
output: ""              # default: <insurer>_<client>_rapport_sante.pdf
extract: ""             # optional filtered DETAIL workbook
format: pdf
`, insurer, client, policy)
}
