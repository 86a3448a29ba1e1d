// Package prompt asks for the report selection on the terminal, with tab
// completion over the values found in the claim detail.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// ErrAborted is returned when the user leaves the prompt with Ctrl+C or
// Ctrl+D.
var ErrAborted = errors.New("selection aborted")

// maxListed is the longest choice list printed before a question. Longer
// lists are only reachable through completion.
const maxListed = 20

// Asker asks one question. choices may be empty for free text.
type Asker interface {
	Ask(label string, choices []string, def string) (string, error)
}

// Session asks questions through readline.
type Session struct {
	In  io.ReadCloser
	Out io.Writer
}

// NewSession creates a session on the process terminal.
func NewSession() *Session {
	return &Session{In: os.Stdin, Out: os.Stdout}
}

// Ask prints the numbered choices, then reads an answer until it resolves
// to one of them.
func (s *Session) Ask(label string, choices []string, def string) (string, error) {
	if len(choices) > 0 && len(choices) <= maxListed {
		fmt.Fprintf(s.Out, "%s:\n", label)
		for i, c := range choices {
			fmt.Fprintf(s.Out, "  %2d  %s\n", i+1, c)
		}
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(choices))
	for _, c := range choices {
		items = append(items, readline.PcItem(c))
	}
	prompt := label
	if def != "" {
		prompt += " [" + def + "]"
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt + ": ",
		AutoComplete:    readline.NewPrefixCompleter(items...),
		Stdin:           s.In,
		Stdout:          s.Out,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return "", ErrAborted
		}
		answer, err := Resolve(line, choices, def)
		if err == nil {
			return answer, nil
		}
		fmt.Fprintf(s.Out, "  %s\n", err)
	}
}

// Resolve maps an answer to a choice. An empty answer takes def; a number
// picks by position; otherwise the answer must equal a choice or be the
// prefix of exactly one, ignoring case and accents. Without choices the
// trimmed answer is returned as is.
func Resolve(input string, choices []string, def string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if def == "" && len(choices) > 0 {
			return "", errors.New("a value is required")
		}
		return def, nil
	}
	if len(choices) == 0 {
		return input, nil
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
	}

	key := matchKey(input)
	var matches []string
	for _, c := range choices {
		ck := matchKey(c)
		if ck == key {
			return c, nil
		}
		if strings.HasPrefix(ck, key) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%q is not a known value", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: %s", input, strings.Join(matches, ", "))
	}
}

// SelectContract fills the missing parts of sel by asking. Values already
// set are kept without a question. The policy choices are those of the
// chosen client.
func SelectContract(a Asker, ch claims.Choices, sel claims.Selection) (claims.Selection, error) {
	var err error
	if normalize.Key(sel.Insurer) == "" {
		if sel.Insurer, err = a.Ask("Assureur", ch.Insurers, single(ch.Insurers)); err != nil {
			return sel, err
		}
	}
	if normalize.Key(sel.Client) == "" {
		if sel.Client, err = a.Ask("Client", ch.Clients, single(ch.Clients)); err != nil {
			return sel, err
		}
	}
	if normalize.Key(sel.Policy) == "" {
		policies := policiesOf(ch, sel.Client)
		if sel.Policy, err = a.Ask("Police", policies, single(policies)); err != nil {
			return sel, err
		}
	}
	if sel.InsurerPolicy == "" {
		if sel.InsurerPolicy, err = a.Ask("N° police assureur (facultatif)", nil, ""); err != nil {
			return sel, err
		}
	}
	return sel, sel.Validate()
}

func matchKey(s string) string {
	return normalize.Fold(normalize.Key(s))
}

func policiesOf(ch claims.Choices, client string) []string {
	key := normalize.Key(client)
	for c, ps := range ch.Policies {
		if normalize.Key(c) == key {
			return ps
		}
	}
	return nil
}

func single(choices []string) string {
	if len(choices) == 1 {
		return choices[0]
	}
	return ""
}
