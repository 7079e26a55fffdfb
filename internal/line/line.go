package line

import (
	"fmt"
	"strings"
)

// Line describes a slackline webbing material. All solves share a read-only
// Line value:
//
//	M: mass per meter of webbing (kg/m)
//	G: gravitational acceleration (m/s^2)
//	K: newtons of tension per 100% stretch (N)
type Line struct {
	Name string  `json:"name" yaml:"name"`
	M    float64 `json:"m" yaml:"m"`
	G    float64 `json:"g" yaml:"g"`
	K    float64 `json:"k" yaml:"k"`
}

// DyneemitePro is the stock webbing used by default everywhere.
var DyneemitePro = Line{Name: "Dyneemite Pro", M: 0.088, G: 9.81, K: 2500 * 100.0}

var catalog = []Line{
	DyneemitePro,
	{Name: "Feather Pro", M: 0.052, G: 9.81, K: 3100 * 100.0},
	{Name: "Parkline Classic", M: 0.110, G: 9.81, K: 1600 * 100.0},
}

// List returns the known webbing specs.
func List() []Line {
	out := make([]Line, len(catalog))
	copy(out, catalog)
	return out
}

// ByName looks a webbing up in the catalog. Matching ignores case and
// treats dashes as spaces, so "dyneemite-pro" finds "Dyneemite Pro".
func ByName(name string) (Line, error) {
	want := normalize(name)
	for _, l := range catalog {
		if normalize(l.Name) == want {
			return l, nil
		}
	}
	return Line{}, fmt.Errorf("unknown webbing: %q", name)
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", " "))
}

// Validate reports whether the material parameters are physical.
func (l Line) Validate() error {
	if l.M <= 0 {
		return fmt.Errorf("mass per meter must be positive, got %f", l.M)
	}
	if l.G <= 0 {
		return fmt.Errorf("gravity must be positive, got %f", l.G)
	}
	if l.K <= 0 {
		return fmt.Errorf("stiffness must be positive, got %f", l.K)
	}
	return nil
}
