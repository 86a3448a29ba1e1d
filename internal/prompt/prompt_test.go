package prompt

import (
	"errors"
	"testing"

	"github.com/klytics/santekit/internal/claims"
)

func TestResolve(t *testing.T) {
	choices := []string{"NSIA", "SUNU", "SANLAM"}
	tests := []struct {
		input, def, want string
		wantErr          bool
	}{
		{"", "SUNU", "SUNU", false},
		{"", "", "", true},
		{"2", "", "SUNU", false},
		{"nsia", "", "NSIA", false},
		{"  sun ", "", "SUNU", false},
		{"s", "", "", true},
		{"AXA", "", "", true},
		{"9", "", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.input, choices, tt.def)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveAccents(t *testing.T) {
	got, err := Resolve("societe generale", []string{"SOCIÉTÉ GÉNÉRALE", "SODECI"}, "")
	if err != nil || got != "SOCIÉTÉ GÉNÉRALE" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestResolveFreeText(t *testing.T) {
	got, err := Resolve(" NS-2024-01 ", nil, "")
	if err != nil || got != "NS-2024-01" {
		t.Errorf("got %q, %v", got, err)
	}
	got, err = Resolve("", nil, "")
	if err != nil || got != "" {
		t.Errorf("optional answer: got %q, %v", got, err)
	}
}

type scripted struct {
	answers map[string]string
	asked   []string
	choices map[string][]string
}

func (s *scripted) Ask(label string, choices []string, def string) (string, error) {
	s.asked = append(s.asked, label)
	if s.choices == nil {
		s.choices = map[string][]string{}
	}
	s.choices[label] = choices
	ans, ok := s.answers[label]
	if !ok {
		return "", ErrAborted
	}
	return Resolve(ans, choices, def)
}

var choices = claims.Choices{
	Insurers: []string{"NSIA"},
	Clients:  []string{"ACME", "BETA"},
	Policies: map[string][]string{"ACME": {"POL-A", "POL-B"}, "BETA": {"POL-C"}},
}

func TestSelectContract(t *testing.T) {
	a := &scripted{answers: map[string]string{
		"Assureur":                        "",
		"Client":                          "acme",
		"Police":                          "2",
		"N° police assureur (facultatif)": "NS-1",
	}}
	sel, err := SelectContract(a, choices, claims.Selection{})
	if err != nil {
		t.Fatal(err)
	}
	want := claims.Selection{Insurer: "NSIA", Client: "ACME", Policy: "POL-B", InsurerPolicy: "NS-1"}
	if sel != want {
		t.Errorf("got %+v, want %+v", sel, want)
	}
	if got := a.choices["Police"]; len(got) != 2 {
		t.Errorf("policy choices = %v, want those of ACME", got)
	}
}

func TestSelectContractKeepsGivenValues(t *testing.T) {
	a := &scripted{answers: map[string]string{"Police": ""}}
	sel, err := SelectContract(a, choices, claims.Selection{Insurer: "NSIA", Client: "beta", InsurerPolicy: "X"})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.asked) != 1 || a.asked[0] != "Police" {
		t.Errorf("asked %v, want only the policy", a.asked)
	}
	if sel.Policy != "POL-C" {
		t.Errorf("single policy should be the default, got %q", sel.Policy)
	}
}

func TestSelectContractAborted(t *testing.T) {
	_, err := SelectContract(&scripted{}, choices, claims.Selection{})
	if !errors.Is(err, ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}
