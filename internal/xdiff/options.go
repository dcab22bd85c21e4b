package xdiff

import (
	"errors"
	"fmt"

	"github.com/codalotl/textmerge/internal/lineclass"
)

// DefaultMaxInputSize is the largest buffer Compute accepts when Options.MaxInputSize is zero.
const DefaultMaxInputSize = 1 << 30

// ErrTooLarge is returned when an input buffer exceeds the configured size limit.
var ErrTooLarge = errors.New("xdiff: input too large")

// Heuristics bounds the work done by the bisection and preparation stages. The zero value means "use DefaultHeuristics".
type Heuristics struct {
	MaxCostFloor   int // floor of the per-split edit-cost ceiling
	SnakeCount     int // snake length that makes a split eligible for the good-diagonal scan
	HeurMinCost    int // edit cost above which the good-diagonal scan runs
	KHeur          int // score multiplier for the good-diagonal scan
	MaxEqLimit     int // cap on the occurrence count above which a record becomes a discard candidate
	SimScanWindow  int // records examined on each side of a discard candidate
	KeepDiscardRun int // discard candidates are kept unless they sit in runs this dense with unmatched records
}

// DefaultHeuristics returns the standard thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MaxCostFloor:   256,
		SnakeCount:     20,
		HeurMinCost:    256,
		KHeur:          4,
		MaxEqLimit:     1024,
		SimScanWindow:  100,
		KeepDiscardRun: 4,
	}
}

func (h Heuristics) isZero() bool {
	return h == Heuristics{}
}

func (h Heuristics) validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"MaxCostFloor", h.MaxCostFloor},
		{"SnakeCount", h.SnakeCount},
		{"HeurMinCost", h.HeurMinCost},
		{"KHeur", h.KHeur},
		{"MaxEqLimit", h.MaxEqLimit},
		{"SimScanWindow", h.SimScanWindow},
		{"KeepDiscardRun", h.KeepDiscardRun},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return fmt.Errorf("xdiff: heuristic %s must be positive, got %d", f.name, f.v)
		}
	}
	return nil
}

// Options configure one diff. Options are values; nothing in this package mutates them.
type Options struct {
	Policy lineclass.Policy

	// NeedMinimal disables the early-exit heuristics so the edit script is minimal.
	NeedMinimal bool

	// IgnoreBlankLines marks change atoms made only of blank lines as ignorable.
	IgnoreBlankLines bool

	// CompactionHeuristic makes the compactor prefer ending a slid change group on a blank line.
	CompactionHeuristic bool

	// TrimCommonTail drops the identical trailing block of both buffers before diffing. Only useful when no context is shown.
	TrimCommonTail bool

	Heuristics Heuristics

	// MaxInputSize bounds each input buffer, in bytes. Zero means DefaultMaxInputSize.
	MaxInputSize int
}

// Validate reports whether o is usable.
func (o Options) Validate() error {
	switch o.Policy.Whitespace {
	case lineclass.WhitespaceExact, lineclass.WhitespaceIgnoreAll, lineclass.WhitespaceIgnoreChange, lineclass.WhitespaceIgnoreAtEOL:
	default:
		return fmt.Errorf("xdiff: unknown whitespace mode %d", o.Policy.Whitespace)
	}
	if o.MaxInputSize < 0 {
		return fmt.Errorf("xdiff: MaxInputSize must not be negative, got %d", o.MaxInputSize)
	}
	if !o.Heuristics.isZero() {
		return o.Heuristics.validate()
	}
	return nil
}

func (o Options) heuristics() Heuristics {
	if o.Heuristics.isZero() {
		return DefaultHeuristics()
	}
	return o.Heuristics
}

func (o Options) maxInputSize() int {
	if o.MaxInputSize == 0 {
		return DefaultMaxInputSize
	}
	return o.MaxInputSize
}

// CheckSize returns ErrTooLarge (wrapped with the offending size) if any buffer exceeds the limit.
func (o Options) CheckSize(bufs ...[]byte) error {
	limit := o.maxInputSize()
	for _, b := range bufs {
		if len(b) > limit {
			return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(b), limit)
		}
	}
	return nil
}

// bogosqrt is a cheap approximation of sqrt(n), rounded up to a power of two.
func bogosqrt(n int) int {
	i := 1
	for ; n > 0; n >>= 2 {
		i <<= 1
	}
	return i
}
