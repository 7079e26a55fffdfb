package viz

import (
	"strings"
	"testing"

	"github.com/Bubblyworld/slackline/internal/analysis"
	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/statics"
)

func solveTestRig(t *testing.T) *statics.Rig {
	t.Helper()
	c := statics.Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		AnchorTension: 2000,
		GridPoints:    201,
	}
	rig, err := c.Solve()
	if err != nil {
		t.Fatal(err)
	}
	return rig
}

func TestCanvasDrawsPixels(t *testing.T) {
	c := NewCanvas(10, 5)
	blank := c.String()

	c.SetWindow(0, 10, -1, 1)
	c.Polyline([]float64{0, 5, 10}, []float64{0, -0.8, 0})
	drawn := c.String()

	if drawn == blank {
		t.Fatal("polyline drew nothing")
	}
	if lines := strings.Count(drawn, "\n"); lines != 5 {
		t.Errorf("got %d rows, want 5", lines)
	}

	c.Clear()
	if c.String() != blank {
		t.Error("clear did not reset the canvas")
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(-1, -1)
	c.Set(1000, 1000)
	c.SetWindow(0, 1, 0, 1)
	c.Plot(50, -50)
	// Must not panic; content stays blank.
	if c.String() != NewCanvas(4, 4).String() {
		t.Error("out-of-range pixels were drawn")
	}
}

func TestProfileView(t *testing.T) {
	rig := solveTestRig(t)
	out := ProfileView(rig, 60, 12)

	if !strings.Contains(out, "span 30.0 m") {
		t.Errorf("missing span in:\n%s", out)
	}
	if !strings.Contains(out, "max tension") {
		t.Error("missing tension summary")
	}
}

func TestPlots(t *testing.T) {
	rig := solveTestRig(t)

	if out := TensionPlot(rig, 60, 10); out == "" {
		t.Error("empty tension plot")
	}
	if out := HeightPlot(rig, 60, 10); out == "" {
		t.Error("empty height plot")
	}

	s := &analysis.Spectrum{
		Freqs: []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Amps:  []float64{0, 0.1, 0.8, 0.2, 0.05, 0.02, 0.01, 0.01},
	}
	out := SpectrumPlot(s, 2.0, 40, 8)
	if !strings.Contains(out, "peak 1.00 Hz") {
		t.Errorf("spectrum caption missing peak:\n%s", out)
	}
}

func TestResample(t *testing.T) {
	series := make([]float64, 100)
	for i := range series {
		series[i] = float64(i)
	}

	out := resample(series, 10)
	if len(out) != 10 {
		t.Fatalf("got %d points, want 10", len(out))
	}
	if out[0] != 0 || out[9] != 99 {
		t.Errorf("endpoints %v, %v, want 0, 99", out[0], out[9])
	}

	short := resample(series[:5], 10)
	if len(short) != 5 {
		t.Errorf("short series resampled to %d", len(short))
	}
}
