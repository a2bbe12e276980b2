package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/printforge/meshengine/pkg/geometry"
)

const (
	binaryHeaderSize   = 84 // 80-byte comment + uint32 triangle count
	binaryTriangleSize = 50 // normal + 3 vertices (12 bytes each) + 2 attribute bytes
)

// Limits bounds the work the decoder performs on untrusted input
type Limits struct {
	// MaxTriangles caps how many binary records are decoded even when
	// the header claims more
	MaxTriangles int `yaml:"max_triangles"`
	// MaxASCIIVertices caps how many vertex lines are accepted
	MaxASCIIVertices int `yaml:"max_ascii_vertices"`
	// MaxASCIIBytes caps how much of an ASCII buffer is scanned
	MaxASCIIBytes int `yaml:"max_ascii_bytes"`
	// CoordLimit rejects any vertex whose absolute coordinate exceeds it
	CoordLimit float64 `yaml:"coord_limit"`
	// SizeTolerance is the allowed gap between the buffer length and the
	// size implied by the binary header during format detection
	SizeTolerance int `yaml:"size_tolerance"`
}

// DefaultLimits returns the decode limits used in production
func DefaultLimits() Limits {
	return Limits{
		MaxTriangles:     200000,
		MaxASCIIVertices: 600000,
		MaxASCIIBytes:    5000000,
		CoordLimit:       100000,
		SizeTolerance:    1000,
	}
}

// FailureReason classifies why a decode produced no usable mesh
type FailureReason string

const (
	// ReasonTooFewVertices means fewer than 3 valid vertices survived
	ReasonTooFewVertices FailureReason = "too few valid vertices"
	// ReasonDegenerateBounds means the surviving vertices collapse to a
	// plane, line or point
	ReasonDegenerateBounds FailureReason = "degenerate bounding box"
)

// DecodeError reports an unusable mesh buffer. It is always recoverable:
// callers fall back to file-size estimation, never abort.
type DecodeError struct {
	Format Format
	Reason FailureReason
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stl decode (%s): %s", e.Format, e.Reason)
}

// DetectFormat classifies a raw buffer as binary or ASCII STL.
// A buffer is binary when its length is close to the size the
// 84-byte header implies; everything else is treated as text.
func DetectFormat(data []byte, limits Limits) Format {
	if len(data) < binaryHeaderSize {
		return FormatASCII
	}
	count := int64(binary.LittleEndian.Uint32(data[80:binaryHeaderSize]))
	expected := int64(binaryHeaderSize) + count*binaryTriangleSize
	diff := int64(len(data)) - expected
	if diff < 0 {
		diff = -diff
	}
	if diff <= int64(limits.SizeTolerance) && len(data) > 100 {
		return FormatBinary
	}
	return FormatASCII
}

// Decode parses a raw STL buffer into a triangle soup. It never panics
// on malformed input; unusable buffers yield a *DecodeError.
func Decode(data []byte, limits Limits) (*Soup, error) {
	var soup *Soup
	format := DetectFormat(data, limits)
	if format == FormatBinary {
		soup = decodeBinary(data, limits)
	} else {
		soup = decodeASCII(data, limits)
	}

	if len(soup.Triangles) == 0 {
		return nil, &DecodeError{Format: format, Reason: ReasonTooFewVertices}
	}
	if !soup.BoundingBox().Valid() {
		return nil, &DecodeError{Format: format, Reason: ReasonDegenerateBounds}
	}
	return soup, nil
}

func decodeBinary(data []byte, limits Limits) *Soup {
	soup := &Soup{Format: FormatBinary}

	header := bytes.TrimRight(data[:80], "\x00 ")
	soup.Name = strings.TrimSpace(string(header))

	claimed := int(binary.LittleEndian.Uint32(data[80:binaryHeaderSize]))
	soup.ClaimedCount = claimed

	// Never read past the buffer or the decode cap, whatever the
	// header claims.
	sample := claimed
	if avail := (len(data) - binaryHeaderSize) / binaryTriangleSize; sample > avail {
		sample = avail
	}
	if sample > limits.MaxTriangles {
		sample = limits.MaxTriangles
	}
	soup.SampledCount = sample

	soup.Triangles = make([]geometry.Triangle, 0, sample)
	for i := 0; i < sample; i++ {
		record := data[binaryHeaderSize+i*binaryTriangleSize:]
		normal := readVector(record, 0)
		v1 := readVector(record, 12)
		v2 := readVector(record, 24)
		v3 := readVector(record, 36)

		if !validVertex(v1, limits) || !validVertex(v2, limits) || !validVertex(v3, limits) {
			continue
		}
		soup.Triangles = append(soup.Triangles, geometry.NewTriangle(normal, v1, v2, v3))
	}
	return soup
}

// readVector reads three little-endian float32 values at the given
// offset of a 50-byte triangle record
func readVector(record []byte, offset int) geometry.Vector3 {
	return geometry.Vector3{
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(record[offset:]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(record[offset+4:]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(record[offset+8:]))),
	}
}

func validVertex(v geometry.Vector3, limits Limits) bool {
	return v.Finite() && v.MaxAbs() <= limits.CoordLimit
}

func decodeASCII(data []byte, limits Limits) *Soup {
	soup := &Soup{Format: FormatASCII}

	if len(data) > limits.MaxASCIIBytes {
		data = data[:limits.MaxASCIIBytes]
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// A single adversarial line can span the whole buffer
	scanner.Buffer(make([]byte, 64*1024), limits.MaxASCIIBytes+1)

	var vertices []geometry.Vector3
	for scanner.Scan() && len(vertices) < limits.MaxASCIIVertices {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 && soup.Name == "" {
				soup.Name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				continue
			}
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			z, errZ := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil || errZ != nil {
				continue
			}
			v := geometry.NewVector3(x, y, z)
			if !validVertex(v, limits) {
				continue
			}
			vertices = append(vertices, v)
		}
	}
	// Scanner errors mean a truncated or over-long tail; whatever was
	// parsed so far still counts.

	// Every 3 accepted vertices form one triangle. ASCII sources carry
	// no trustworthy normal, so none is recorded.
	for i := 0; i+2 < len(vertices); i += 3 {
		soup.Triangles = append(soup.Triangles,
			geometry.NewTriangle(geometry.Vector3{}, vertices[i], vertices[i+1], vertices[i+2]))
	}
	soup.SampledCount = len(soup.Triangles)
	return soup
}
