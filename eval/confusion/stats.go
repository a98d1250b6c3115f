// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package confusion

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidMatrix is returned when the confusion matrix is malformed.
	ErrInvalidMatrix = errors.New("invalid confusion matrix")

	// ErrInvalidCollation is returned when a collation scheme is malformed.
	ErrInvalidCollation = errors.New("invalid collation scheme")

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid confusion configuration")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// FudgeMode selects how degenerate counts are smoothed before rates are
// derived from them.
type FudgeMode int

const (
	// FudgeCorrection nudges only degenerate counts (TP equal to P or 0,
	// FP equal to N or 0) by the fudge factor. This is the default.
	FudgeCorrection FudgeMode = iota

	// FudgeNone reports counts exactly as tallied.
	FudgeNone

	// FudgeAlways smooths every count unconditionally: TP, FN, FP, and TN
	// gain the factor, P and N gain twice the factor.
	FudgeAlways
)

// String returns the string representation of a FudgeMode.
func (f FudgeMode) String() string {
	switch f {
	case FudgeCorrection:
		return "correction"
	case FudgeNone:
		return "none"
	case FudgeAlways:
		return "always"
	default:
		return fmt.Sprintf("fudge_mode(%d)", f)
	}
}

// DefaultFudgeFactor is the count adjustment used when the configuration
// leaves FudgeFactor unset.
const DefaultFudgeFactor = 0.5

// Config controls collation and smoothing for Compute.
//
// Description:
//
//	The zero value is valid and selects one-vs-rest collation with the
//	correction fudge mode and the default factor, which is also what a
//	nil *Config means.
//
// Thread Safety: Immutable after creation; safe for concurrent read access.
type Config struct {
	// Collation defines the groupings, one row per grouping with one entry
	// per class: +1 counts the class as positive, -1 as negative.
	// Nil selects one-vs-rest (one grouping per class).
	Collation [][]int8

	// FudgeMode selects the smoothing strategy. Default: FudgeCorrection.
	FudgeMode FudgeMode

	// FudgeFactor is the count adjustment magnitude. Must be positive when
	// smoothing is active. Zero selects DefaultFudgeFactor.
	FudgeFactor float64
}

// DefaultConfig returns a configuration with the defaults applied
// explicitly.
//
// Outputs:
//   - *Config: One-vs-rest collation, FudgeCorrection, DefaultFudgeFactor.
func DefaultConfig() *Config {
	return &Config{
		FudgeMode:   FudgeCorrection,
		FudgeFactor: DefaultFudgeFactor,
	}
}

// Validate checks the configuration against a matrix with the given number
// of classes.
//
// Inputs:
//   - classes: Number of classes (rows/columns of the square matrix).
//
// Outputs:
//   - error: nil if valid, ErrInvalidCollation or ErrInvalidConfig otherwise.
func (c *Config) Validate(classes int) error {
	switch c.FudgeMode {
	case FudgeNone, FudgeCorrection, FudgeAlways:
	default:
		return fmt.Errorf("%w: unknown fudge mode %d", ErrInvalidConfig, c.FudgeMode)
	}
	if c.FudgeFactor < 0 {
		return fmt.Errorf("%w: fudge factor must not be negative, got %v", ErrInvalidConfig, c.FudgeFactor)
	}
	if c.Collation == nil {
		return nil
	}
	if len(c.Collation) == 0 {
		return fmt.Errorf("%w: collation has no groupings", ErrInvalidCollation)
	}
	for g, row := range c.Collation {
		if len(row) != classes {
			return fmt.Errorf("%w: grouping %d has %d entries, matrix has %d classes",
				ErrInvalidCollation, g, len(row), classes)
		}
		pos, neg := 0, 0
		for i, v := range row {
			switch v {
			case +1:
				pos++
			case -1:
				neg++
			default:
				return fmt.Errorf("%w: grouping %d entry %d must be +1 or -1, got %d",
					ErrInvalidCollation, g, i, v)
			}
		}
		if pos == 0 || neg == 0 {
			return fmt.Errorf("%w: grouping %d needs at least one positive and one negative class",
				ErrInvalidCollation, g)
		}
	}
	return nil
}

// fudgeFactor resolves the effective adjustment magnitude.
func (c *Config) fudgeFactor() float64 {
	if c.FudgeFactor == 0 {
		return DefaultFudgeFactor
	}
	return c.FudgeFactor
}

// -----------------------------------------------------------------------------
// Stats
// -----------------------------------------------------------------------------

// Stats holds the per-grouping binary detection counts derived from a
// confusion matrix. All slices are element-aligned with the groupings of
// the collation scheme that produced them.
type Stats struct {
	// P is the number of positive instances per grouping.
	P []float64

	// N is the number of negative instances per grouping.
	N []float64

	// TP is the number of true positives per grouping.
	TP []float64

	// FN is the number of false negatives per grouping.
	FN []float64

	// FP is the number of false positives per grouping.
	FP []float64

	// TN is the number of true negatives per grouping.
	TN []float64
}

// Groupings returns the number of groupings.
func (s *Stats) Groupings() int {
	return len(s.P)
}

// TPR returns the elementwise true-positive rate TP/P.
//
// Description:
//
//	A grouping with no positive instances and no smoothing yields NaN or
//	an infinity per IEEE-754; degenerate values are deliberately not
//	masked here.
func (s *Stats) TPR() []float64 {
	rates := make([]float64, len(s.TP))
	for i := range s.TP {
		rates[i] = s.TP[i] / s.P[i]
	}
	return rates
}

// FPR returns the elementwise false-positive rate FP/N.
func (s *Stats) FPR() []float64 {
	rates := make([]float64, len(s.FP))
	for i := range s.FP {
		rates[i] = s.FP[i] / s.N[i]
	}
	return rates
}

// -----------------------------------------------------------------------------
// Computation
// -----------------------------------------------------------------------------

// Compute reduces a confusion matrix to per-grouping binary counts.
//
// Description:
//
//	The matrix must be square with at least two classes; entry (r, c) is
//	the count of instances of true class r predicted as class c. Counts
//	must be finite and nonnegative. For each collation grouping the four
//	cells of the binary confusion table are tallied, then smoothed
//	according to the configured fudge mode.
//
// Inputs:
//   - m: Confusion matrix. Must not be nil.
//   - cfg: Collation and smoothing configuration. Nil selects defaults.
//
// Outputs:
//   - *Stats: Per-grouping counts. Never nil on success.
//   - error: ErrInvalidMatrix, ErrInvalidCollation, or ErrInvalidConfig.
//
// Thread Safety: Pure function; safe for concurrent use.
//
// Example:
//
//	m := mat.NewDense(2, 2, []float64{8, 2, 3, 7})
//	stats, err := confusion.Compute(m, nil)
//	// stats.TP[0] == 8, stats.FP[0] == 3 for the class-0 grouping
func Compute(m *mat.Dense, cfg *Config) (*Stats, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: matrix is nil", ErrInvalidMatrix)
	}
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: matrix must be square, got %dx%d", ErrInvalidMatrix, rows, cols)
	}
	if rows < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", ErrInvalidMatrix, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := m.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d,%d) is not finite", ErrInvalidMatrix, r, c)
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: entry (%d,%d) is negative", ErrInvalidMatrix, r, c)
			}
		}
	}

	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(rows); err != nil {
		return nil, err
	}

	collation := cfg.Collation
	if collation == nil {
		collation = oneVsRest(rows)
	}

	groupings := len(collation)
	stats := &Stats{
		P:  make([]float64, groupings),
		N:  make([]float64, groupings),
		TP: make([]float64, groupings),
		FN: make([]float64, groupings),
		FP: make([]float64, groupings),
		TN: make([]float64, groupings),
	}

	for g, row := range collation {
		var p, n, tp, fp float64
		for r := 0; r < rows; r++ {
			rowTotal := 0.0
			predPos := 0.0
			for c := 0; c < cols; c++ {
				v := m.At(r, c)
				rowTotal += v
				if row[c] > 0 {
					predPos += v
				}
			}
			if row[r] > 0 {
				p += rowTotal
				tp += predPos
			} else {
				n += rowTotal
				fp += predPos
			}
		}

		stats.P[g] = p
		stats.N[g] = n
		stats.TP[g] = tp
		stats.FN[g] = p - tp
		stats.FP[g] = fp
		stats.TN[g] = n - fp
	}

	applyFudge(stats, cfg)
	return stats, nil
}

// oneVsRest builds the default collation: one grouping per class, with that
// class positive and every other class negative.
func oneVsRest(classes int) [][]int8 {
	collation := make([][]int8, classes)
	for g := range collation {
		row := make([]int8, classes)
		for i := range row {
			if i == g {
				row[i] = +1
			} else {
				row[i] = -1
			}
		}
		collation[g] = row
	}
	return collation
}

// applyFudge smooths the tallied counts in place per the configured mode.
func applyFudge(s *Stats, cfg *Config) {
	switch cfg.FudgeMode {
	case FudgeNone:
		return

	case FudgeAlways:
		f := cfg.fudgeFactor()
		for g := range s.P {
			s.TP[g] += f
			s.FN[g] += f
			s.FP[g] += f
			s.TN[g] += f
			s.P[g] += 2 * f
			s.N[g] += 2 * f
		}

	case FudgeCorrection:
		f := cfg.fudgeFactor()
		for g := range s.P {
			if s.TP[g] == s.P[g] {
				s.TP[g] = s.P[g] - f
			} else if s.TP[g] == 0 {
				s.TP[g] = f
			}
			if s.FP[g] == s.N[g] {
				s.FP[g] = s.N[g] - f
			} else if s.FP[g] == 0 {
				s.FP[g] = f
			}
			s.FN[g] = s.P[g] - s.TP[g]
			s.TN[g] = s.N[g] - s.FP[g]
		}
	}
}
