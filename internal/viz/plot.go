package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/Bubblyworld/slackline/internal/analysis"
	"github.com/Bubblyworld/slackline/internal/statics"
)

// ProfileView draws the hanging line to scale on a braille canvas, with the
// anchors at the top corners, and appends the headline numbers.
func ProfileView(rig *statics.Rig, width, height int) string {
	c := NewCanvas(width, height)

	yMin := 0.0
	for _, y := range rig.Y {
		if y < yMin {
			yMin = y
		}
	}
	margin := 0.1 * (0 - yMin)
	if margin == 0 {
		margin = 0.1
	}
	c.SetWindow(0, rig.Span(), yMin-margin, margin)
	c.Polyline(rig.X, rig.Y)

	var b strings.Builder
	b.WriteString(c.String())
	fmt.Fprintf(&b, "span %.1f m   sag %.2f m   natural length %.2f m   max tension %.0f N\n",
		rig.Span(), rig.MaxDrop(), rig.NaturalLength(), rig.MaxTension())
	for _, w := range rig.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}

// TensionPlot charts the tension along the line.
func TensionPlot(rig *statics.Rig, width, height int) string {
	return asciigraph.Plot(resample(rig.T, width),
		asciigraph.Height(height),
		asciigraph.Caption("tension along the line (N)"),
	)
}

// HeightPlot charts the height profile.
func HeightPlot(rig *statics.Rig, width, height int) string {
	return asciigraph.Plot(resample(rig.Y, width),
		asciigraph.Height(height),
		asciigraph.Caption("height below anchors (m)"),
	)
}

// SpectrumPlot charts an amplitude spectrum up to maxFreq Hz.
func SpectrumPlot(s *analysis.Spectrum, maxFreq float64, width, height int) string {
	cut := len(s.Freqs)
	for i, f := range s.Freqs {
		if f > maxFreq {
			cut = i
			break
		}
	}
	if cut < 2 {
		cut = len(s.Freqs)
	}
	return asciigraph.Plot(resample(s.Amps[:cut], width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum, 0-%.1f Hz (peak %.2f Hz)",
			s.Freqs[cut-1], s.Fundamental())),
	)
}

// resample reduces a series to at most n points by striding, so plots fit
// the terminal width.
func resample(series []float64, n int) []float64 {
	if n <= 0 || len(series) <= n {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = series[i*(len(series)-1)/(n-1)]
	}
	return out
}
