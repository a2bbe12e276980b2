// Package analysis derives physical properties from a decoded triangle
// soup: bounding box, enclosed volume and surface area, with graceful
// degradation when the mesh is partial or noisy.
package analysis

import (
	"math"

	"github.com/printforge/meshengine/pkg/geometry"
	"github.com/printforge/meshengine/pkg/stl"
)

// Config tunes the volume heuristics. The occupancy fraction is an
// empirical average solidity of printed parts, calibrated against real
// quotes; treat it as a starting point, not a universal constant.
type Config struct {
	// OccupancyFraction scales bounding-box volume when the signed
	// volume sum is unusable
	OccupancyFraction float64 `yaml:"occupancy_fraction"`
	// MinVolumeCm3 and MaxVolumeCm3 clamp the final volume
	MinVolumeCm3 float64 `yaml:"min_volume_cm3"`
	MaxVolumeCm3 float64 `yaml:"max_volume_cm3"`
	// VolumeFloorCm3 is the threshold below which the computed volume
	// is considered degenerate and replaced by the occupancy heuristic
	VolumeFloorCm3 float64 `yaml:"volume_floor_cm3"`
	// MaxContribution discards single-triangle volume contributions
	// larger than this as decode noise
	MaxContribution float64 `yaml:"max_contribution"`
}

// DefaultConfig returns the production analysis constants
func DefaultConfig() Config {
	return Config{
		OccupancyFraction: 0.3,
		MinVolumeCm3:      0.1,
		MaxVolumeCm3:      100000,
		VolumeFloorCm3:    0.01,
		MaxContribution:   1e12,
	}
}

// Metrics holds the derived geometry of one analyzed mesh.
// Dimensions are in millimeters, volume in cm³.
type Metrics struct {
	TriangleCount int
	Bounds        geometry.BoundingBox
	VolumeCm3     float64
	SurfaceArea   float64

	// Degraded is set whenever the volume was extrapolated from a
	// partial sample or substituted by the bounding-box heuristic.
	// UIs should label such results as approximate.
	Degraded bool
}

// Dimensions returns the bounding-box extents in millimeters
func (m *Metrics) Dimensions() geometry.Vector3 {
	return m.Bounds.Size()
}

// Analyze computes geometry metrics for a decoded soup. It is a pure
// function of its inputs and never fails: suspect data degrades the
// result instead.
func Analyze(soup *stl.Soup, cfg Config) Metrics {
	m := Metrics{
		TriangleCount: soup.TriangleCount(),
		Bounds:        soup.BoundingBox(),
		SurfaceArea:   soup.SurfaceArea(),
	}

	// Signed tetrahedron sum against the origin (divergence theorem).
	// The normals in the file are never consulted.
	var signed float64
	for _, tri := range soup.Triangles {
		c := tri.SignedVolume()
		if math.IsNaN(c) || math.IsInf(c, 0) || math.Abs(c) > cfg.MaxContribution {
			continue
		}
		signed += c
	}
	volume := math.Abs(signed) / 1000.0 // mm³ → cm³

	// When the decoder stopped before the header's claimed count,
	// scale up to approximate the full mesh.
	if soup.Truncated() && soup.SampledCount > 0 {
		volume *= float64(soup.ClaimedCount) / float64(soup.SampledCount)
		m.Degraded = true
	}

	// A non-finite or near-zero result means the soup is not a usable
	// closed surface; fall back to a solidity fraction of the box.
	if math.IsNaN(volume) || math.IsInf(volume, 0) || volume < cfg.VolumeFloorCm3 {
		volume = m.Bounds.Volume() / 1000.0 * cfg.OccupancyFraction
		m.Degraded = true
	}

	if volume < cfg.MinVolumeCm3 {
		volume = cfg.MinVolumeCm3
	}
	if volume > cfg.MaxVolumeCm3 {
		volume = cfg.MaxVolumeCm3
	}
	m.VolumeCm3 = volume

	return m
}
