// Package engine ties the pure compute stages together: bytes are
// decoded, measured and priced, with the file-size fallback taking over
// whenever the mesh itself is unusable. Nothing in here touches the
// network or the filesystem.
package engine

import (
	"go.uber.org/zap"

	"github.com/printforge/meshengine/internal/config"
	"github.com/printforge/meshengine/internal/logger"
	"github.com/printforge/meshengine/pkg/analysis"
	"github.com/printforge/meshengine/pkg/estimate"
	"github.com/printforge/meshengine/pkg/orient"
	"github.com/printforge/meshengine/pkg/stl"
)

// Status is the single signal callers branch on instead of scattered
// booleans: how trustworthy the numbers in a Result are.
type Status string

const (
	// StatusMeasured means all numbers come from clean geometry
	StatusMeasured Status = "measured"
	// StatusDegraded means geometry was decoded but volume had to be
	// extrapolated or substituted
	StatusDegraded Status = "degraded"
	// StatusFileSizeOnly means decoding failed entirely and only the
	// empirical file-size model was applied
	StatusFileSizeOnly Status = "file_size_only"
	// StatusUnusable means not even the fallback had valid input
	StatusUnusable Status = "unusable"
)

// Result is the full analysis of one file.
type Result struct {
	Status   Status
	Soup     *stl.Soup
	Metrics  *analysis.Metrics
	Estimate *estimate.Estimate
}

// Usable reports whether the result carries an estimate at all
func (r *Result) Usable() bool {
	return r.Estimate != nil
}

// Engine runs the analysis pipeline with one fixed configuration.
type Engine struct {
	cfg *config.Config
}

// New creates an engine from the given configuration
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs bytes → soup → metrics → estimate. sizeMB feeds the
// fallback path and may be zero when unknown. The returned result is
// always non-nil and the call never fails; bad input degrades the
// status instead.
func (e *Engine) Analyze(data []byte, sizeMB float64) *Result {
	soup, err := stl.Decode(data, e.cfg.Decoder)
	if err != nil {
		logger.Log.Debug("mesh decode failed, using file-size fallback",
			zap.Error(err), zap.Float64("size_mb", sizeMB))
		return e.fallback(sizeMB)
	}

	metrics := analysis.Analyze(soup, e.cfg.Analysis)
	est := estimate.FromMetrics(&metrics, e.cfg.Material)
	if est == nil {
		return e.fallback(sizeMB)
	}

	status := StatusMeasured
	if metrics.Degraded {
		status = StatusDegraded
	}
	return &Result{
		Status:   status,
		Soup:     soup,
		Metrics:  &metrics,
		Estimate: est,
	}
}

// Orient searches print orientations for an already-analyzed result.
// Results without decoded geometry get the identity candidate.
func (e *Engine) Orient(r *Result) orient.Candidate {
	if r.Soup == nil {
		return orient.Candidate{}
	}
	return orient.FindOptimalRotation(r.Soup, e.cfg.Printer.Envelope)
}

func (e *Engine) fallback(sizeMB float64) *Result {
	est := estimate.FromFileSize(sizeMB, e.cfg.Material)
	if est == nil {
		return &Result{Status: StatusUnusable}
	}
	return &Result{Status: StatusFileSizeOnly, Estimate: est}
}
