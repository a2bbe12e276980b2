package orient

import (
	"math"
	"testing"

	"github.com/printforge/meshengine/pkg/geometry"
	"github.com/printforge/meshengine/pkg/stl"
)

// slabSoup builds two triangles spanning a thin box of the given
// dimensions, enough surface for bounding-box driven search
func slabSoup(w, h, d float64) *stl.Soup {
	p := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x, y, z) }
	soup := &stl.Soup{
		Format: stl.FormatASCII,
		Triangles: []geometry.Triangle{
			geometry.NewTriangle(geometry.Vector3{}, p(0, 0, 0), p(w, 0, 0), p(w, h, d)),
			geometry.NewTriangle(geometry.Vector3{}, p(0, 0, 0), p(w, h, d), p(0, h, d)),
		},
	}
	soup.SampledCount = len(soup.Triangles)
	return soup
}

func TestCandidateGridSize(t *testing.T) {
	soup := slabSoup(50, 50, 5)
	env := Envelope{X: 220, Y: 220, Z: 250}

	candidates := Candidates(soup, env)
	if len(candidates) != 8 {
		t.Fatalf("expected 8 candidates, got %d", len(candidates))
	}

	// Y rotation is excluded from the search space
	for _, c := range candidates {
		if c.YDeg != 0 {
			t.Errorf("unexpected Y rotation %v in candidate grid", c.YDeg)
		}
	}
}

func TestOptimalRotationKeepsFlatOrientation(t *testing.T) {
	// Wide and flat, already optimal, fits at identity
	soup := slabSoup(100, 100, 4)
	env := Envelope{X: 220, Y: 220, Z: 250}

	best := FindOptimalRotation(soup, env)
	if !best.Fits {
		t.Fatal("chosen rotation must fit the envelope")
	}

	identity := Candidates(soup, env)[0]
	if best.Score > identity.Score+1e-9 {
		t.Errorf("flat mesh should keep identity-equivalent score: best %v vs identity %v",
			best.Score, identity.Score)
	}
}

func TestOptimalRotationFlipsTallPart(t *testing.T) {
	// Tall in Z, flat footprint after a quarter turn around X
	soup := slabSoup(100, 5, 200)
	env := Envelope{X: 300, Y: 300, Z: 300}

	best := FindOptimalRotation(soup, env)
	if !best.Fits {
		t.Fatal("chosen rotation must fit the envelope")
	}
	if best.XDeg == 0 && best.ZDeg == 0 {
		t.Error("tall part should not stay upright")
	}
	size := best.Bounds.Size()
	if size.Z > 6 {
		t.Errorf("expected the thin axis to end up vertical, got height %v", size.Z)
	}
}

func TestOptimalRotationRespectsFit(t *testing.T) {
	// Lying the part down scores far better but exceeds the 80 mm
	// footprint; the fit filter must exclude it, not merely penalize
	soup := slabSoup(50, 50, 200)
	env := Envelope{X: 80, Y: 80, Z: 250}

	best := FindOptimalRotation(soup, env)
	if !best.Fits {
		t.Fatal("a fitting orientation exists and must be chosen")
	}
	size := best.Bounds.Size()
	if size.X > env.X+1e-9 || size.Y > env.Y+1e-9 || size.Z > env.Z+1e-9 {
		t.Errorf("chosen candidate exceeds envelope: %v", size)
	}
}

func TestNoFittingOrientationReturnsIdentity(t *testing.T) {
	soup := slabSoup(500, 500, 500)
	env := Envelope{X: 100, Y: 100, Z: 100}

	best := FindOptimalRotation(soup, env)
	if !best.Identity() {
		t.Errorf("expected identity fallback, got X=%v Z=%v", best.XDeg, best.ZDeg)
	}
	if best.Fits {
		t.Error("oversized part cannot fit")
	}
}

func TestRotationDoesNotMutateSoup(t *testing.T) {
	soup := slabSoup(100, 5, 200)
	before := soup.Triangles[0].V2

	FindOptimalRotation(soup, Envelope{X: 300, Y: 300, Z: 300})

	if soup.Triangles[0].V2 != before {
		t.Error("rotation search must not mutate the original soup")
	}
}

func TestScoreFormula(t *testing.T) {
	soup := slabSoup(100, 100, 4)
	env := Envelope{X: 220, Y: 220, Z: 250}

	identity := Candidates(soup, env)[0]
	size := identity.Bounds.Size()
	expected := size.Z / math.Sqrt(size.X*size.Y)
	if math.Abs(identity.Score-expected) > 1e-12 {
		t.Errorf("score formula mismatch: expected %v, got %v", expected, identity.Score)
	}
}
