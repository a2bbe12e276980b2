// Package orient searches a small grid of print orientations for the
// one expected to need the least support material. The 8-point grid is
// a deliberate approximation: it gives a fast, good-enough default
// before a human fine-tunes the placement.
package orient

import (
	"math"

	"github.com/printforge/meshengine/pkg/geometry"
	"github.com/printforge/meshengine/pkg/stl"
)

// Envelope is the maximum printable size of a machine, in millimeters
type Envelope struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Limits returns the envelope as a vector for bounding-box fit checks
func (e Envelope) Limits() geometry.Vector3 {
	return geometry.NewVector3(e.X, e.Y, e.Z)
}

// Candidate is one evaluated rotation: angles in degrees, the
// axis-aligned bounds after rotating, whether it fits the envelope,
// and its support-proxy score (lower is better).
type Candidate struct {
	XDeg, YDeg, ZDeg float64
	Bounds           geometry.BoundingBox
	Fits             bool
	Score            float64
}

// Identity reports whether the candidate leaves the mesh unrotated
func (c Candidate) Identity() bool {
	return c.XDeg == 0 && c.YDeg == 0 && c.ZDeg == 0
}

// The search grid: quarter turns around X, half the quarter turns
// around Z. Y is intentionally excluded to keep the search cheap;
// with X covering all four quarter turns it adds little.
var (
	xAngles = []float64{0, 90, 180, 270}
	zAngles = []float64{0, 90}
)

// Candidates evaluates the full rotation grid against the original,
// unrotated soup. The soup is never mutated.
func Candidates(soup *stl.Soup, env Envelope) []Candidate {
	candidates := make([]Candidate, 0, len(xAngles)*len(zAngles))
	for _, xDeg := range xAngles {
		for _, zDeg := range zAngles {
			candidates = append(candidates, evaluate(soup, xDeg, zDeg, env))
		}
	}
	return candidates
}

// FindOptimalRotation picks the fitting candidate with the lowest
// score, first found winning ties. When nothing fits it returns the
// identity rotation so the caller can still show the unrotated model
// with a warning.
func FindOptimalRotation(soup *stl.Soup, env Envelope) Candidate {
	var best Candidate
	found := false
	for _, c := range Candidates(soup, env) {
		if !c.Fits {
			continue
		}
		if !found || c.Score < best.Score {
			best = c
			found = true
		}
	}
	if !found {
		return evaluate(soup, 0, 0, env)
	}
	return best
}

// evaluate rotates every vertex, folds the rotated bounding box and
// scores it as height over the square root of the footprint area.
// Flat, broad placements score low and need the least support.
func evaluate(soup *stl.Soup, xDeg, zDeg float64, env Envelope) Candidate {
	bbox := geometry.NewBoundingBox()
	for _, tri := range soup.Triangles {
		for _, v := range tri.Vertices() {
			bbox.Extend(v.RotateX(xDeg).RotateZ(zDeg))
		}
	}

	c := Candidate{XDeg: xDeg, ZDeg: zDeg, Bounds: bbox}
	c.Fits = bbox.Valid() && bbox.FitsWithin(env.Limits())

	size := bbox.Size()
	base := size.X * size.Y
	if base > 0 {
		c.Score = size.Z / math.Sqrt(base)
	} else {
		c.Score = math.Inf(1)
	}
	return c
}
