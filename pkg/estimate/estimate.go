// Package estimate turns geometry metrics into manufacturing numbers:
// weight, price and print time. When no usable geometry exists it falls
// back to a purely empirical file-size model.
package estimate

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/printforge/meshengine/pkg/analysis"
)

// Profile holds the material and pricing parameters for one
// printer/material combination. All constants here were calibrated
// against real quotes and must be supplied by configuration.
type Profile struct {
	// DensityGramsCm3 is the printed material density
	DensityGramsCm3 float64 `yaml:"density_g_cm3"`
	// ShellRatio is the solid fraction of the part taken up by walls
	ShellRatio float64 `yaml:"shell_ratio"`
	// InfillFraction is the lattice density of the interior
	InfillFraction float64 `yaml:"infill_fraction"`

	MaterialRatePerGram float64 `yaml:"material_rate_per_gram"`
	LaborRatePerGram    float64 `yaml:"labor_rate_per_gram"`
	SetupFee            float64 `yaml:"setup_fee"`
	PriceFloor          float64 `yaml:"price_floor"`
	TaxRate             float64 `yaml:"tax_rate"`

	// ComplexityFeeStep is added per ComplexityTriangleStep triangles
	// beyond ComplexityThreshold triangles
	ComplexityThreshold    int     `yaml:"complexity_threshold"`
	ComplexityTriangleStep int     `yaml:"complexity_triangle_step"`
	ComplexityFeeStep      float64 `yaml:"complexity_fee_step"`

	// Print-time model
	LayerHeightMm    float64 `yaml:"layer_height_mm"`
	PerimeterMinutes float64 `yaml:"perimeter_minutes"`
	InfillMinutes    float64 `yaml:"infill_minutes"`
	LayerOverheadMin float64 `yaml:"layer_overhead_minutes"`
	MinPrintHours    float64 `yaml:"min_print_hours"`

	// File-size fallback model, linear in megabytes
	PricePerMB    float64 `yaml:"price_per_mb"`
	WeightPerMB   float64 `yaml:"weight_per_mb"`
	HoursPerGram  float64 `yaml:"hours_per_gram"`
	FallbackFloor float64 `yaml:"fallback_floor"`
}

// DefaultProfile returns the observed production defaults (PLA)
func DefaultProfile() Profile {
	return Profile{
		DensityGramsCm3:        1.24,
		ShellRatio:             0.25,
		InfillFraction:         0.20,
		MaterialRatePerGram:    0.08,
		LaborRatePerGram:       0.04,
		SetupFee:               5.0,
		PriceFloor:             10.0,
		TaxRate:                0.19,
		ComplexityThreshold:    100000,
		ComplexityTriangleStep: 100000,
		ComplexityFeeStep:      5.0,
		LayerHeightMm:          0.2,
		PerimeterMinutes:       0.4,
		InfillMinutes:          0.6,
		LayerOverheadMin:       0.1,
		MinPrintHours:          0.25,
		PricePerMB:             2.5,
		WeightPerMB:            12.0,
		HoursPerGram:           0.05,
		FallbackFloor:          8.0,
	}
}

// Valid reports whether the profile can produce meaningful numbers
func (p Profile) Valid() bool {
	return p.DensityGramsCm3 > 0 && p.ShellRatio >= 0 && p.ShellRatio <= 1 &&
		p.InfillFraction >= 0 && p.InfillFraction <= 1 && p.TaxRate >= 0
}

// Estimate is the manufacturing quote for one analyzed file.
// Prices carry two decimals; print time is exposed both as raw hours
// and a display label.
type Estimate struct {
	WeightGrams    float64
	PriceBeforeTax float64
	PriceWithTax   float64
	PrintTimeHours float64
	PrintTimeLabel string

	// IsEstimate distinguishes the file-size fallback from
	// geometry-derived numbers
	IsEstimate bool
}

// FromMetrics builds an estimate from geometry metrics. It returns nil
// when the metrics or profile are unusable; the caller should then try
// the file-size path.
func FromMetrics(m *analysis.Metrics, p Profile) *Estimate {
	if m == nil || !p.Valid() || m.VolumeCm3 <= 0 {
		return nil
	}

	// Shell/infill model: solid walls plus a fractional interior
	// lattice.
	effective := m.VolumeCm3*p.ShellRatio + m.VolumeCm3*(1-p.ShellRatio)*p.InfillFraction
	weight := math.Max(1, effective*p.DensityGramsCm3)

	price := weight*p.MaterialRatePerGram + weight*p.LaborRatePerGram + p.SetupFee
	price += complexityFee(m.TriangleCount, p)
	price = math.Max(p.PriceFloor, price)

	hours := printHours(m.Dimensions().Z, p)

	e := &Estimate{
		WeightGrams:    roundGrams(weight),
		PriceBeforeTax: roundCurrency(price),
		PriceWithTax:   roundCurrency(price * (1 + p.TaxRate)),
		PrintTimeHours: hours,
		PrintTimeLabel: FormatHours(hours),
	}
	// Extrapolated or substituted volume makes the whole quote an
	// estimate.
	e.IsEstimate = m.Degraded
	return e
}

// FromFileSize builds a rough estimate from nothing but the file size
// in megabytes. Returns nil for non-positive sizes.
func FromFileSize(sizeMB float64, p Profile) *Estimate {
	if sizeMB <= 0 || math.IsNaN(sizeMB) || math.IsInf(sizeMB, 0) {
		return nil
	}

	weight := math.Max(1, sizeMB*p.WeightPerMB)
	price := math.Max(p.FallbackFloor, sizeMB*p.PricePerMB+p.SetupFee)
	hours := math.Max(p.MinPrintHours, weight*p.HoursPerGram)

	return &Estimate{
		WeightGrams:    roundGrams(weight),
		PriceBeforeTax: roundCurrency(price),
		PriceWithTax:   roundCurrency(price * (1 + p.TaxRate)),
		PrintTimeHours: hours,
		PrintTimeLabel: FormatHours(hours),
		IsEstimate:     true,
	}
}

// complexityFee charges for meshes whose triangle count makes slicing
// and handling slower
func complexityFee(triangles int, p Profile) float64 {
	if p.ComplexityTriangleStep <= 0 || triangles <= p.ComplexityThreshold {
		return 0
	}
	steps := float64(triangles-p.ComplexityThreshold) / float64(p.ComplexityTriangleStep)
	return steps * p.ComplexityFeeStep
}

// printHours estimates print duration from part height: layer count
// times per-layer perimeter, infill and overhead passes
func printHours(heightMm float64, p Profile) float64 {
	if p.LayerHeightMm <= 0 || heightMm <= 0 {
		return p.MinPrintHours
	}
	layers := heightMm / p.LayerHeightMm
	perLayer := p.PerimeterMinutes + p.InfillMinutes + p.LayerOverheadMin
	hours := layers * perLayer / 60.0
	return math.Max(p.MinPrintHours, hours)
}

// roundCurrency rounds to two decimals, the precision quotes are
// displayed and stored with
func roundCurrency(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func roundGrams(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

// FormatHours renders a duration as the familiar "Xh Ym" label
func FormatHours(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	h := int(hours)
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
