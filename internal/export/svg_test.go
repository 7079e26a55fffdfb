package export

import (
	"strings"
	"testing"

	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/statics"
)

func TestProfileSVG(t *testing.T) {
	c := statics.Constraints{
		Line:          line.DyneemitePro,
		GapLength:     50,
		AnchorTension: 2000,
		Loads:         []statics.PointLoad{{Position: 25, Mass: 75}},
		GridPoints:    101,
	}
	rig, err := c.Solve()
	if err != nil {
		t.Fatal(err)
	}

	svg := ProfileSVG(rig, 800, 400)
	if !strings.HasPrefix(svg, `<?xml`) || !strings.Contains(svg, "<svg") {
		t.Fatal("not an SVG document")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("missing profile path")
	}
	if !strings.Contains(svg, "<circle") {
		t.Error("missing load marker for the kink")
	}
	if strings.Count(svg, "<rect") != 3 { // background + two anchors
		t.Errorf("expected background and two anchor rects:\n%s", svg)
	}
}
