// Package progress reports the stages of a report build on the terminal.
// All output goes to stderr so that stdout stays clean for --json.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Timing is the time spent in one build step.
type Timing struct {
	Step    string        `json:"step"`
	Elapsed time.Duration `json:"elapsed"`
}

// Bar draws a bar of named build steps and records how long each took.
type Bar struct {
	Label   string
	Steps   []string
	Width   int
	Enabled bool
	Out     io.Writer

	mu      sync.Mutex
	done    int
	step    string
	since   time.Time
	timings []Timing
}

// NewSteps creates a bar for the given steps. It is disabled when stderr
// is not a TTY, when SANTEKIT_NO_PROGRESS=1 or when SANTEKIT_JSON=true;
// timings are recorded either way.
func NewSteps(label string, steps ...string) *Bar {
	return &Bar{
		Label:   label,
		Steps:   steps,
		Width:   30,
		Enabled: enabled(),
		Out:     os.Stderr,
	}
}

// Step closes the running step and starts name. Unknown names still count,
// up to the number of steps.
func (b *Bar) Step(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.closeStep(now)
	b.step, b.since = name, now
	if b.done < len(b.Steps) {
		b.done++
	}
	b.draw()
}

// Finish closes the last step, clears the bar and prints summary.
func (b *Bar) Finish(summary string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closeStep(time.Now())
	if b.Enabled {
		fmt.Fprintf(b.out(), "\r\033[K✓ %s\n", summary)
	}
}

// Abort closes the last step and clears the bar.
func (b *Bar) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closeStep(time.Now())
	if b.Enabled {
		fmt.Fprint(b.out(), "\r\033[K")
	}
}

// Timings returns the finished steps in order.
func (b *Bar) Timings() []Timing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Timing(nil), b.timings...)
}

// Done returns how many steps have started.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

func (b *Bar) closeStep(now time.Time) {
	if b.step == "" {
		return
	}
	b.timings = append(b.timings, Timing{Step: b.step, Elapsed: now.Sub(b.since)})
	b.step = ""
}

func (b *Bar) draw() {
	if !b.Enabled {
		return
	}
	width := b.Width
	if width <= 0 {
		width = 30
	}
	filled := 0
	if n := len(b.Steps); n > 0 {
		filled = b.done * width / n
	}
	fmt.Fprintf(b.out(), "\r\033[K%s [%s%s] %d/%d  %s",
		b.Label, strings.Repeat("=", filled), strings.Repeat(" ", width-filled), b.done, len(b.Steps), b.step)
}

func (b *Bar) out() io.Writer {
	if b.Out == nil {
		return os.Stderr
	}
	return b.Out
}

var frames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner shows activity while the amount of work is unknown, such as
// while the workbooks are read.
type Spinner struct {
	Label   string
	Enabled bool
	Out     io.Writer

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{Label: label, Enabled: enabled(), Out: os.Stderr}
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Enabled || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.stop)
}

func (s *Spinner) spin(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.out(), "\r\033[K%c %s", frames[i%len(frames)], s.Label)
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and prints result; an empty result only clears
// the line. Stop waits for the last frame, so nothing is drawn after it.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()

	if result == "" {
		fmt.Fprint(s.out(), "\r\033[K")
	} else {
		fmt.Fprintf(s.out(), "\r\033[K✓ %s\n", result)
	}
}

// Update changes the label while running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	s.Label = label
	s.mu.Unlock()
}

func (s *Spinner) out() io.Writer {
	if s.Out == nil {
		return os.Stderr
	}
	return s.Out
}

func enabled() bool {
	if os.Getenv("SANTEKIT_NO_PROGRESS") == "1" || os.Getenv("SANTEKIT_JSON") == "true" {
		return false
	}
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
