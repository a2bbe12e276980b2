package analysis

import (
	"math"
	"testing"

	"github.com/printforge/meshengine/pkg/geometry"
	"github.com/printforge/meshengine/pkg/stl"
)

// boxSoup builds a decoded-looking soup for an axis-aligned box from
// the origin to (w, h, d), 12 consistently wound triangles
func boxSoup(w, h, d float64) *stl.Soup {
	p := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x, y, z) }
	quads := [][4]geometry.Vector3{
		{p(0, 0, 0), p(0, h, 0), p(w, h, 0), p(w, 0, 0)},
		{p(0, 0, d), p(w, 0, d), p(w, h, d), p(0, h, d)},
		{p(0, 0, 0), p(w, 0, 0), p(w, 0, d), p(0, 0, d)},
		{p(0, h, 0), p(0, h, d), p(w, h, d), p(w, h, 0)},
		{p(0, 0, 0), p(0, 0, d), p(0, h, d), p(0, h, 0)},
		{p(w, 0, 0), p(w, h, 0), p(w, h, d), p(w, 0, d)},
	}

	soup := &stl.Soup{Format: stl.FormatBinary}
	for _, q := range quads {
		soup.Triangles = append(soup.Triangles,
			geometry.NewTriangle(geometry.Vector3{}, q[0], q[1], q[2]),
			geometry.NewTriangle(geometry.Vector3{}, q[0], q[2], q[3]))
	}
	soup.ClaimedCount = len(soup.Triangles)
	soup.SampledCount = len(soup.Triangles)
	return soup
}

func TestAnalyzeCubeBoundingBox(t *testing.T) {
	m := Analyze(boxSoup(10, 20, 30), DefaultConfig())

	size := m.Dimensions()
	if math.Abs(size.X-10) > 1e-9 || math.Abs(size.Y-20) > 1e-9 || math.Abs(size.Z-30) > 1e-9 {
		t.Errorf("dimensions wrong: got %v", size)
	}
	if m.TriangleCount != 12 {
		t.Errorf("expected 12 triangles, got %d", m.TriangleCount)
	}
}

func TestAnalyzeCubeVolume(t *testing.T) {
	m := Analyze(boxSoup(10, 20, 30), DefaultConfig())

	// 10*20*30 mm³ = 6 cm³
	expected := 6.0
	if math.Abs(m.VolumeCm3-expected)/expected > 0.01 {
		t.Errorf("volume wrong: expected %v cm³, got %v", expected, m.VolumeCm3)
	}
	if m.Degraded {
		t.Error("clean closed mesh should not be degraded")
	}
}

func TestAnalyzeVolumeIgnoresWindingDirection(t *testing.T) {
	soup := boxSoup(10, 10, 10)
	// Flip every triangle; the signed sum negates, abs recovers it
	for i, tri := range soup.Triangles {
		soup.Triangles[i] = geometry.NewTriangle(tri.Normal, tri.V3, tri.V2, tri.V1)
	}

	m := Analyze(soup, DefaultConfig())
	if math.Abs(m.VolumeCm3-1.0) > 0.01 {
		t.Errorf("expected 1 cm³ from inverted cube, got %v", m.VolumeCm3)
	}
}

func TestAnalyzeExtrapolatesTruncatedSample(t *testing.T) {
	soup := boxSoup(10, 10, 10)
	// Pretend the decoder sampled only half of the claimed mesh
	soup.ClaimedCount = 24
	soup.SampledCount = 12

	m := Analyze(soup, DefaultConfig())
	if !m.Degraded {
		t.Error("extrapolated volume must be flagged degraded")
	}
	if math.Abs(m.VolumeCm3-2.0) > 0.02 {
		t.Errorf("expected doubled volume 2 cm³, got %v", m.VolumeCm3)
	}
}

func TestAnalyzeOccupancyFallback(t *testing.T) {
	// An open surface: a slanted quad enclosing no volume. The signed
	// sum is ~0, so the bbox occupancy heuristic must take over.
	p := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x, y, z) }
	soup := &stl.Soup{
		Format: stl.FormatASCII,
		Triangles: []geometry.Triangle{
			geometry.NewTriangle(geometry.Vector3{}, p(0, 0, 0), p(100, 0, 0), p(100, 100, 10)),
			geometry.NewTriangle(geometry.Vector3{}, p(0, 0, 0), p(100, 100, 10), p(0, 100, 10)),
		},
	}
	soup.SampledCount = 2

	cfg := DefaultConfig()
	m := Analyze(soup, cfg)

	if !m.Degraded {
		t.Error("heuristic volume must be flagged degraded")
	}
	// bbox is 100×100×10 mm = 100 cm³, times occupancy 0.3
	expected := 100.0 * cfg.OccupancyFraction
	if math.Abs(m.VolumeCm3-expected)/expected > 0.05 {
		t.Errorf("expected occupancy fallback ~%v cm³, got %v", expected, m.VolumeCm3)
	}
}

func TestAnalyzeClampsVolume(t *testing.T) {
	soup := boxSoup(1, 1, 1) // 0.001 cm³, below the floor
	cfg := DefaultConfig()

	m := Analyze(soup, cfg)
	if m.VolumeCm3 < cfg.MinVolumeCm3 {
		t.Errorf("volume below clamp floor: %v", m.VolumeCm3)
	}
	if !m.Degraded {
		t.Error("sub-floor volume takes the heuristic path and must be degraded")
	}
}

func TestAnalyzeEmptySoup(t *testing.T) {
	m := Analyze(&stl.Soup{}, DefaultConfig())

	if !m.Degraded {
		t.Error("empty soup must be degraded")
	}
	if m.VolumeCm3 < DefaultConfig().MinVolumeCm3 {
		t.Errorf("volume must stay clamped, got %v", m.VolumeCm3)
	}
	if math.IsNaN(m.VolumeCm3) || math.IsInf(m.VolumeCm3, 0) {
		t.Errorf("volume must be finite, got %v", m.VolumeCm3)
	}
}

func TestAnalyzeSurfaceArea(t *testing.T) {
	m := Analyze(boxSoup(10, 10, 10), DefaultConfig())

	expected := 600.0 // 6 faces × 100 mm²
	if math.Abs(m.SurfaceArea-expected) > 1e-6 {
		t.Errorf("surface area wrong: expected %v, got %v", expected, m.SurfaceArea)
	}
}
