package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDisabledByEnv(t *testing.T) {
	t.Setenv("SANTEKIT_NO_PROGRESS", "1")
	if NewSteps("build", "analyze").Enabled {
		t.Error("expected bar to be disabled with SANTEKIT_NO_PROGRESS=1")
	}
	if NewSpinner("reading").Enabled {
		t.Error("expected spinner to be disabled")
	}
}

func TestDisabledByJSON(t *testing.T) {
	t.Setenv("SANTEKIT_JSON", "true")
	if NewSteps("build", "analyze").Enabled {
		t.Error("expected bar to be disabled with SANTEKIT_JSON=true")
	}
}

func TestStepCapsAtStepCount(t *testing.T) {
	bar := &Bar{Steps: []string{"analyze", "charts"}}
	bar.Step("analyze")
	bar.Step("charts")
	bar.Step("extra")
	if bar.Done() != 2 {
		t.Errorf("done = %d, want 2", bar.Done())
	}
}

func TestTimings(t *testing.T) {
	bar := &Bar{Steps: []string{"analyze", "render"}}
	bar.Step("analyze")
	time.Sleep(10 * time.Millisecond)
	bar.Step("render")
	bar.Finish("done")

	got := bar.Timings()
	if len(got) != 2 || got[0].Step != "analyze" || got[1].Step != "render" {
		t.Fatalf("timings = %+v", got)
	}
	if got[0].Elapsed < 10*time.Millisecond {
		t.Errorf("analyze took %s, want at least 10ms", got[0].Elapsed)
	}

	bar.Abort()
	if len(bar.Timings()) != 2 {
		t.Error("closing twice recorded a step twice")
	}
}

func TestEnabledBarWrites(t *testing.T) {
	var buf bytes.Buffer
	bar := &Bar{Label: "build", Steps: []string{"analyze", "charts", "render", "write"}, Width: 8, Enabled: true, Out: &buf}
	bar.Step("analyze")
	bar.Step("charts")
	bar.Finish("report written")

	out := buf.String()
	if !strings.Contains(out, "build [====    ] 2/4  charts") {
		t.Errorf("unexpected bar output: %q", out)
	}
	if !strings.HasSuffix(out, "✓ report written\n") {
		t.Errorf("missing summary: %q", out)
	}
}

func TestDisabledBarDoesNotWrite(t *testing.T) {
	var buf bytes.Buffer
	bar := &Bar{Steps: []string{"analyze"}, Out: &buf}
	bar.Step("analyze")
	bar.Finish("done")
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := &Spinner{Label: "reading", Enabled: true, Out: &buf}
	s.Start()
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("still reading")
	s.Stop("read")
	s.Stop("read twice")

	out := buf.String()
	if !strings.HasSuffix(out, "✓ read\n") {
		t.Errorf("missing result line: %q", out)
	}
	if strings.Contains(out, "twice") {
		t.Errorf("second Stop wrote: %q", out)
	}
}

func TestSpinnerDisabled(t *testing.T) {
	var buf bytes.Buffer
	s := &Spinner{Label: "reading", Out: &buf}
	s.Start()
	s.Stop("done")
	if buf.Len() != 0 {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}
