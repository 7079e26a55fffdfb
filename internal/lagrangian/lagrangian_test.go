package lagrangian

import (
	"math"
	"sync"
	"testing"
)

var testParams = Params{M: 0.088, G: 9.81, K: 250000}

// evaluate the Lagrangian density directly; the closed forms in the Systems
// must be consistent with these via the Euler-Lagrange identities.
func density(form string, p Params, y, a, b float64) float64 {
	stretch := math.Sqrt(1 + a*a)
	if form == "small-sag" {
		stretch = 1 + a*a/2
	}
	return p.M*p.G*y*b + p.K/2*(1+a*a)/b - p.K*stretch + p.K/2*b
}

// Along a solution, d/dx(∂L/∂y') = ∂L/∂y and d/dx(∂L/∂n') = 0. Check both
// identities numerically at assorted profile points.
func TestEulerLagrangeIdentity(t *testing.T) {
	points := []struct{ a, b float64 }{
		{-0.05, 0.99},
		{0.3, 0.95},
		{-0.8, 0.7},
		{0.02, 0.999},
	}

	for _, form := range Forms() {
		sys, err := Compile(form)
		if err != nil {
			t.Fatalf("%s: %v", form.Name(), err)
		}
		for _, pt := range points {
			y := -1.3
			st := State{Y: y, N: 10, A: pt.a, B: pt.b}
			da, db := sys.Derive(testParams, st)

			const h = 1e-6
			dpyDa := (mustPy(sys, y, pt.a+h, pt.b) - mustPy(sys, y, pt.a-h, pt.b)) / (2 * h)
			dpyDb := (mustPy(sys, y, pt.a, pt.b+h) - mustPy(sys, y, pt.a, pt.b-h)) / (2 * h)
			dpnDy := (mustPn(sys, y+h, pt.a, pt.b) - mustPn(sys, y-h, pt.a, pt.b)) / (2 * h)
			dpnDa := (mustPn(sys, y, pt.a+h, pt.b) - mustPn(sys, y, pt.a-h, pt.b)) / (2 * h)
			dpnDb := (mustPn(sys, y, pt.a, pt.b+h) - mustPn(sys, y, pt.a, pt.b-h)) / (2 * h)

			elY := dpyDa*da + dpyDb*db - testParams.M*testParams.G*pt.b
			elN := dpnDy*pt.a + dpnDa*da + dpnDb*db

			// Residuals are finite-difference noise on a K~1e5 scale.
			if math.Abs(elY) > 1e-4 {
				t.Errorf("%s a=%v b=%v: EL residual for y = %e", form.Name(), pt.a, pt.b, elY)
			}
			if math.Abs(elN) > 1e-4 {
				t.Errorf("%s a=%v b=%v: EL residual for n = %e", form.Name(), pt.a, pt.b, elN)
			}
		}
	}
}

func mustPy(sys *System, y, a, b float64) float64 {
	py, _ := sys.Momenta(testParams, y, a, b)
	return py
}

func mustPn(sys *System, y, a, b float64) float64 {
	_, pn := sys.Momenta(testParams, y, a, b)
	return pn
}

// The momenta must be the partial derivatives of the Lagrangian density with
// respect to a and b.
func TestMomentaMatchDensity(t *testing.T) {
	for _, form := range Forms() {
		sys, err := Compile(form)
		if err != nil {
			t.Fatal(err)
		}
		y, a, b := -2.1, -0.2, 0.97
		py, pn := sys.Momenta(testParams, y, a, b)

		const h = 1e-6
		numPy := (density(form.Name(), testParams, y, a+h, b) - density(form.Name(), testParams, y, a-h, b)) / (2 * h)
		numPn := (density(form.Name(), testParams, y, a, b+h) - density(form.Name(), testParams, y, a, b-h)) / (2 * h)

		if math.Abs(py-numPy) > 1e-3 {
			t.Errorf("%s: py = %v, numeric %v", form.Name(), py, numPy)
		}
		if math.Abs(pn-numPn) > 1e-3 {
			t.Errorf("%s: pn = %v, numeric %v", form.Name(), pn, numPn)
		}
	}
}

// The small-sag approximation must agree with the ideal form for shallow
// slopes and diverge for steep ones.
func TestSmallSagLimit(t *testing.T) {
	ideal, err := Compile(Ideal)
	if err != nil {
		t.Fatal(err)
	}
	approx, err := Compile(SmallSag)
	if err != nil {
		t.Fatal(err)
	}

	// The forms agree only where a^2 is negligible against 1-b: the ideal
	// denominator is (1-b)+a^2/2 while the approximate one is (1-b)-a^2 to
	// leading order. Here a^2/(1-b) = 2e-4.
	shallow := State{A: 0.001, B: 0.995}
	da1, db1 := ideal.Derive(testParams, shallow)
	da2, db2 := approx.Derive(testParams, shallow)
	if relErr(da1, da2) > 1e-3 || relErr(db1, db2) > 1e-3 {
		t.Errorf("forms disagree at shallow slope: (%v,%v) vs (%v,%v)", da1, db1, da2, db2)
	}

	steep := State{A: 1.5, B: 0.9}
	da1, _ = ideal.Derive(testParams, steep)
	da2, _ = approx.Derive(testParams, steep)
	if relErr(da1, da2) < 1e-2 {
		t.Error("forms should diverge at steep slope")
	}
}

func relErr(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Abs(a), 1e-300)
}

func TestCompileMemoized(t *testing.T) {
	before := compiles
	s1, err := Compile(Ideal)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*System, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Compile(Ideal)
			if err != nil {
				t.Error(err)
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		if s != s1 {
			t.Errorf("call %d returned a different compiled system", i)
		}
	}
	if compiles > before+1 {
		t.Errorf("ideal form compiled %d extra times, want at most 1", compiles-before)
	}
}

func TestFormByName(t *testing.T) {
	f, err := FormByName("ideal")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "ideal" {
		t.Errorf("got %q", f.Name())
	}
	if _, err := FormByName("cubic"); err == nil {
		t.Error("expected error for unknown form")
	}
}
