package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Show writes content to w. When w is a terminal stdout and content is
// taller than the screen, it goes through the pager instead; a pager that
// fails to start falls back to a plain write.
func Show(w io.Writer, content string) error {
	if f, ok := w.(*os.File); ok && f == os.Stdout && isTerminal(f) {
		if pager := pagerCommand(); pager != nil && strings.Count(content, "\n") > screenLines() {
			pager.Stdin = strings.NewReader(content)
			pager.Stdout, pager.Stderr = os.Stdout, os.Stderr
			if pager.Run() == nil {
				return nil
			}
		}
	}
	_, err := fmt.Fprint(w, content)
	return err
}

// pagerCommand returns the pager from SANTEKIT_PAGER, then PAGER, then
// "less -R" so that colors survive. "cat" or an empty SANTEKIT_PAGER
// disables paging.
func pagerCommand() *exec.Cmd {
	spec, set := os.LookupEnv("SANTEKIT_PAGER")
	if !set {
		spec = os.Getenv("PAGER")
		if spec == "" {
			spec = "less -R"
		}
	}
	args := strings.Fields(spec)
	if len(args) == 0 || args[0] == "cat" {
		return nil
	}
	return exec.Command(args[0], args[1:]...)
}

// screenLines reads the terminal height from LINES, 40 when unknown.
func screenLines() int {
	if n, err := strconv.Atoi(os.Getenv("LINES")); err == nil && n > 0 {
		return n
	}
	return 40
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
