package stl

import (
	"github.com/printforge/meshengine/pkg/geometry"
)

// Format identifies the on-disk encoding of an STL file
type Format string

const (
	FormatBinary Format = "binary"
	FormatASCII  Format = "ascii"
)

// Soup is a decoded triangle soup plus its decode provenance. Triangle
// order carries no meaning; all downstream calculations are
// order-independent.
type Soup struct {
	Name      string
	Format    Format
	Triangles []geometry.Triangle

	// ClaimedCount is the triangle count announced by the binary
	// header. Zero for ASCII input. SampledCount is how many
	// triangles were actually decoded, which may be lower when the
	// decode cap kicked in; the analyzer extrapolates volume from
	// the ratio.
	ClaimedCount int
	SampledCount int
}

// TriangleCount returns the number of decoded triangles
func (s *Soup) TriangleCount() int {
	return len(s.Triangles)
}

// Truncated reports whether decoding stopped before the count the
// header claimed
func (s *Soup) Truncated() bool {
	return s.ClaimedCount > s.SampledCount
}

// BoundingBox folds every decoded vertex into an axis-aligned box
func (s *Soup) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range s.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// SurfaceArea sums the area of all decoded triangles
func (s *Soup) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range s.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}
