package statics

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/Bubblyworld/slackline/internal/lagrangian"
	"github.com/Bubblyworld/slackline/internal/line"
)

func TestUnloadedProfile(t *testing.T) {
	g := NewWithT(t)

	c := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		AnchorTension: 2000,
	}
	rig, err := c.Solve()
	g.Expect(err).NotTo(HaveOccurred())

	// Anchors pinned at height zero.
	g.Expect(rig.Y[0]).To(BeZero())
	g.Expect(math.Abs(rig.Y[len(rig.Y)-1])).To(BeNumerically("<", 1e-5))
	g.Expect(rig.N[0]).To(BeZero())
	g.Expect(rig.Span()).To(BeNumerically("~", 30, 1e-9))

	// Shallow-line sag is close to the parabolic estimate m·g·gap^2/(8·T).
	sag := line.DyneemitePro.M * line.DyneemitePro.G * 30 * 30 / (8 * 2000)
	g.Expect(rig.MaxDrop()).To(BeNumerically("~", sag, 0.05*sag))

	// The anchor tension target is met exactly at the left anchor.
	g.Expect(rig.T[0]).To(BeNumerically("~", 2000, 1e-6))

	// The stretched line is longer than its natural length.
	g.Expect(rig.ArcLength()).To(BeNumerically(">", rig.NaturalLength()))
	g.Expect(rig.Warnings).To(BeEmpty())
}

func TestUnloadedSymmetry(t *testing.T) {
	c := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		AnchorTension: 2000,
	}
	rig, err := c.Solve()
	if err != nil {
		t.Fatal(err)
	}

	n := len(rig.Y)
	for i := 0; i < n/2; i++ {
		if d := math.Abs(rig.Y[i] - rig.Y[n-1-i]); d > 1e-4 {
			t.Fatalf("asymmetry %e at sample %d", d, i)
		}
	}
}

func TestTensionReducesSag(t *testing.T) {
	var drops []float64
	for _, tension := range []float64{1000, 2000, 4000} {
		c := Constraints{
			Line:          line.DyneemitePro,
			GapLength:     30,
			AnchorTension: tension,
		}
		rig, err := c.Solve()
		if err != nil {
			t.Fatalf("tension %v: %v", tension, err)
		}
		drops = append(drops, rig.MaxDrop())
	}
	for i := 1; i < len(drops); i++ {
		if drops[i] >= drops[i-1] {
			t.Fatalf("sag did not decrease with tension: %v", drops)
		}
	}
}

func TestLoadedRig(t *testing.T) {
	g := NewWithT(t)

	c := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     50,
		AnchorTension: 2000,
		Loads:         []PointLoad{{Position: 25, Mass: 75}},
	}
	rig, err := c.Solve()
	g.Expect(err).NotTo(HaveOccurred())

	// The load pulls the line well below its bare sag, but a 75 kg
	// slackliner cannot drag a 50 m line anywhere near 30% of the gap.
	g.Expect(rig.MaxDrop()).To(BeNumerically(">", 1.0))
	g.Expect(rig.MaxDrop()).To(BeNumerically("<", 15.0))

	// The load position appears twice, once per side of the kink.
	kink := -1
	for i := 0; i+1 < len(rig.X); i++ {
		if rig.X[i] == rig.X[i+1] {
			g.Expect(kink).To(Equal(-1), "more than one duplicated sample")
			kink = i
		}
	}
	g.Expect(kink).To(BeNumerically(">", 0))
	g.Expect(rig.X[kink]).To(BeNumerically("~", 25, 1e-9))

	// Scalar tension is continuous across the load; the vertical component
	// jumps by the slackliner's weight.
	g.Expect(rig.T[kink+1]).To(BeNumerically("~", rig.T[kink], 0.01*rig.T[kink]))

	sign := func(dy float64) float64 {
		if dy < 0 {
			return -1
		}
		return 1
	}
	thL := rig.A[kink] * math.Pi / 180
	thR := rig.A[kink+1] * math.Pi / 180
	vL := rig.T[kink] * math.Sin(thL) * sign(rig.Y[kink]-rig.Y[kink-1])
	vR := rig.T[kink+1] * math.Sin(thR) * sign(rig.Y[kink+2]-rig.Y[kink+1])
	weight := 75 * line.DyneemitePro.G
	g.Expect(vR-vL).To(BeNumerically("~", weight, 0.05*weight))

	// Stepping on the line raises its tension above the standing tension.
	g.Expect(rig.MaxTension()).To(BeNumerically(">", 2000))

	// The webbing in the gap is the same webbing that was rigged: the
	// loaded solve must preserve the standing natural length.
	bare := Constraints{Line: c.Line, GapLength: c.GapLength, AnchorTension: c.AnchorTension}
	bareRig, err := bare.Solve()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rig.NaturalLength()).To(BeNumerically("~", bareRig.NaturalLength(), 1e-4))
}

func TestNaturalLengthModeAgrees(t *testing.T) {
	g := NewWithT(t)

	byTension := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		AnchorTension: 2000,
	}
	rigT, err := byTension.Solve()
	g.Expect(err).NotTo(HaveOccurred())

	byLength := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		NaturalLength: rigT.NaturalLength(),
	}
	rigN, err := byLength.Solve()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(rigN.T[0]).To(BeNumerically("~", 2000, 0.5))
	g.Expect(rigN.MaxDrop()).To(BeNumerically("~", rigT.MaxDrop(), 1e-3))
}

func TestSmallSagMatchesIdealWhenTaut(t *testing.T) {
	g := NewWithT(t)

	drops := map[string]float64{}
	for _, form := range []string{"ideal", "small-sag"} {
		c := Constraints{
			Line:          line.DyneemitePro,
			GapLength:     30,
			AnchorTension: 5000,
			Form:          form,
		}
		rig, err := c.Solve()
		g.Expect(err).NotTo(HaveOccurred(), form)
		drops[form] = rig.MaxDrop()
	}
	g.Expect(drops["small-sag"]).To(BeNumerically("~", drops["ideal"], 0.01*drops["ideal"]))
}

func TestInvalidConfig(t *testing.T) {
	base := func() Constraints {
		return Constraints{
			Line:          line.DyneemitePro,
			GapLength:     30,
			AnchorTension: 2000,
		}
	}

	cases := []struct {
		name   string
		mutate func(*Constraints)
	}{
		{"zero gap", func(c *Constraints) { c.GapLength = 0 }},
		{"negative gap", func(c *Constraints) { c.GapLength = -5 }},
		{"no target", func(c *Constraints) { c.AnchorTension = 0 }},
		{"both targets", func(c *Constraints) { c.NaturalLength = 29 }},
		{"load at anchor", func(c *Constraints) {
			c.Loads = []PointLoad{{Position: 0, Mass: 70}}
		}},
		{"load beyond gap", func(c *Constraints) {
			c.Loads = []PointLoad{{Position: 31, Mass: 70}}
		}},
		{"coincident loads", func(c *Constraints) {
			c.Loads = []PointLoad{{Position: 10, Mass: 70}, {Position: 10, Mass: 60}}
		}},
		{"massless load", func(c *Constraints) {
			c.Loads = []PointLoad{{Position: 10, Mass: 0}}
		}},
		{"unknown form", func(c *Constraints) { c.Form = "cubic" }},
		{"bad line", func(c *Constraints) { c.Line.K = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			_, err := c.Solve()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSolveJump(t *testing.T) {
	g := NewWithT(t)

	p := lagrangian.Params{M: 0.088, G: 9.81, K: 250000}
	sys, err := lagrangian.Compile(lagrangian.Ideal)
	g.Expect(err).NotTo(HaveOccurred())

	// A taut line meeting an 80 kg load with a gentle downward slope.
	aL := -0.1
	sL := math.Sqrt(1 + aL*aL)
	tension := 2000.0
	bL := sL / (tension/p.K + 1)

	aR, bR, err := solveJump(sys, p, 80, -0.5, aL, bL)
	g.Expect(err).NotTo(HaveOccurred())

	// Residuals vanish at the returned state.
	res := sys.JumpResiduals(p, 80, -0.5, aL, bL)
	r1, r2 := res(aR, bR)
	g.Expect(math.Abs(r1)).To(BeNumerically("<", 1e-8*p.K))
	g.Expect(math.Abs(r2)).To(BeNumerically("<", 1e-8*p.K))

	// Scalar tension is continuous; the vertical component jumps by the
	// weight.
	sR := math.Sqrt(1 + aR*aR)
	tR := p.K * (sR/bR - 1)
	g.Expect(tR).To(BeNumerically("~", tension, 1e-6*tension))
	g.Expect(tR*aR/sR - tension*aL/sL).To(BeNumerically("~", 80*p.G, 1e-6*80*p.G))

	// The line bends upward across the load.
	g.Expect(aR).To(BeNumerically(">", aL))
}

func TestSolveJumpTensionTooLow(t *testing.T) {
	p := lagrangian.Params{M: 0.088, G: 9.81, K: 250000}
	sys, err := lagrangian.Compile(lagrangian.Ideal)
	if err != nil {
		t.Fatal(err)
	}

	// At 100 N an 80 kg load would need the line to bend past vertical.
	aL := -0.01
	sL := math.Sqrt(1 + aL*aL)
	bL := sL / (100.0/p.K + 1)

	if _, _, err := solveJump(sys, p, 80, -0.1, aL, bL); !errors.Is(err, errJumpUnsolvable) {
		t.Fatalf("want errJumpUnsolvable, got %v", err)
	}
}

func TestRigRoundTrip(t *testing.T) {
	c := Constraints{
		Line:          line.DyneemitePro,
		GapLength:     30,
		AnchorTension: 2000,
		GridPoints:    101,
	}
	rig, err := c.Solve()
	if err != nil {
		t.Fatal(err)
	}

	buf, err := json.Marshal(rig)
	if err != nil {
		t.Fatal(err)
	}
	var back Rig
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatal(err)
	}

	if len(back.X) != len(rig.X) {
		t.Fatalf("length mismatch: %d vs %d", len(back.X), len(rig.X))
	}
	for i := range rig.X {
		if back.X[i] != rig.X[i] || back.Y[i] != rig.Y[i] || back.T[i] != rig.T[i] {
			t.Fatalf("round trip mismatch at %d", i)
		}
	}

	cols := rig.ToMap()
	for _, name := range []string{"x", "n", "l", "y", "T", "A"} {
		if len(cols[name]) != len(rig.X) {
			t.Fatalf("column %q missing or wrong length", name)
		}
	}
}
