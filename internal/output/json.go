// Package output writes command results for humans (colored tables, pager)
// and for machines (a JSON envelope on stdout).
package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/klytics/santekit/cmd/version"
)

// Exit codes returned by the santekit binary.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing input, empty selection
	ExitSystemError = 2 // browser missing or timed out, layout failure
)

// Envelope wraps every --json result so that scripts can check OK before
// reading Data.
type Envelope struct {
	OK      bool   `json:"ok"`
	Command string `json:"command"`
	Version string `json:"version"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PrintJSON writes a success envelope for command to stdout.
func PrintJSON(command string, data any) error {
	return WriteJSON(os.Stdout, Envelope{OK: true, Command: command, Data: data})
}

// PrintJSONError writes a failure envelope for command to stdout.
func PrintJSONError(command string, err error, code int) error {
	return WriteJSON(os.Stdout, Envelope{Command: command, Error: err.Error(), Code: code})
}

// WriteJSON encodes env, indented, stamping the binary version.
func WriteJSON(w io.Writer, env Envelope) error {
	env.Version = version.Version
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(env)
}
