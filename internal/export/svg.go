// Package export renders rigs as standalone SVG images, for reports and web
// embedding.
package export

import (
	"fmt"
	"strings"

	"github.com/Bubblyworld/slackline/internal/statics"
)

// ProfileSVG draws the hanging line to scale: the profile as a path, the
// anchors as squares, and kinks (point loads) as circles. The vertical axis
// is exaggerated when the sag is small relative to the span.
func ProfileSVG(rig *statics.Rig, width, height int) string {
	span := rig.Span()
	yMin := 0.0
	for _, y := range rig.Y {
		if y < yMin {
			yMin = y
		}
	}
	yMax := 0.1 * (0 - yMin)
	if yMax == 0 {
		yMax = 0.1
	}
	yMin -= yMax
	rangeY := yMax - yMin

	px := func(x float64) float64 { return x / span * float64(width) }
	py := func(y float64) float64 { return (yMax - y) / rangeY * float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Anchor height reference line.
	sb.WriteString(fmt.Sprintf(
		`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-dasharray="4 4"/>
`,
		py(0), width, py(0)))

	sb.WriteString(`<path fill="none" stroke="#00ff88" stroke-width="1.5" d="M`)
	for i := range rig.X {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(rig.X[i]), py(rig.Y[i])))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(rig.X[i]), py(rig.Y[i])))
		}
	}
	sb.WriteString("\"/>\n")

	// Kinks: duplicated x samples mark point loads.
	for i := 0; i+1 < len(rig.X); i++ {
		if rig.X[i] == rig.X[i+1] {
			sb.WriteString(fmt.Sprintf(
				`<circle cx="%.1f" cy="%.1f" r="3" fill="#ff5577"/>
`,
				px(rig.X[i]), py(rig.Y[i])))
		}
	}

	for _, x := range []float64{0, span} {
		sb.WriteString(fmt.Sprintf(
			`<rect x="%.1f" y="%.1f" width="6" height="6" fill="#cccccc"/>
`,
			px(x)-3, py(0)-3))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
