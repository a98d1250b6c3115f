// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sdt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/AleutianAI/EvalKit/eval/confusion"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidMode is returned for an unrecognized input mode tag.
	ErrInvalidMode = errors.New("invalid d-prime input mode")

	// ErrShapeMismatch is returned when paired inputs differ in length.
	ErrShapeMismatch = errors.New("input shape mismatch")

	// ErrNonFiniteInput is returned when a NaN or infinity appears where a
	// finite value is required.
	ErrNonFiniteInput = errors.New("non-finite input value")

	// ErrInsufficientSamples is returned when a sample set has one or zero
	// elements, leaving the variance estimator undefined.
	ErrInsufficientSamples = errors.New("insufficient samples to estimate variance")
)

// -----------------------------------------------------------------------------
// Mode
// -----------------------------------------------------------------------------

// Mode identifies one of the four input interpretations.
type Mode int

const (
	// ModeBinary interprets inputs as true labels and prediction scores.
	// This is the default.
	ModeBinary Mode = iota

	// ModeSample interprets inputs as positive and negative sample values.
	ModeSample

	// ModeRate interprets inputs as per-grouping TPR and FPR arrays.
	ModeRate

	// ModeConfusionMat interprets the input as a confusion matrix.
	ModeConfusionMat
)

// String returns the wire-format tag for the mode.
func (m Mode) String() string {
	switch m {
	case ModeBinary:
		return "binary"
	case ModeSample:
		return "sample"
	case ModeRate:
		return "rate"
	case ModeConfusionMat:
		return "confusionmat"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ParseMode maps a wire-format tag to its Mode.
//
// Description:
//
//	Recognized tags are "binary", "sample", "rate", and "confusionmat".
//	The empty string selects ModeBinary, the default. Any other tag is a
//	usage error; no computation should proceed from it.
//
// Inputs:
//   - tag: The mode tag, typically from pipeline configuration.
//
// Outputs:
//   - Mode: The parsed mode.
//   - error: ErrInvalidMode naming the unrecognized tag.
func ParseMode(tag string) (Mode, error) {
	switch tag {
	case "", "binary":
		return ModeBinary, nil
	case "sample":
		return ModeSample, nil
	case "rate":
		return ModeRate, nil
	case "confusionmat":
		return ModeConfusionMat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, tag)
	}
}

// -----------------------------------------------------------------------------
// Input Variants
// -----------------------------------------------------------------------------

// Input is a canonical, validated d-prime input. Exactly two families
// exist: SampleInput (binary and sample modes) and RateInput (rate and
// confusion-matrix modes). Values implementing Input are only obtainable
// from the constructors in this package, which perform all precondition
// checks up front.
type Input interface {
	// Mode reports which input interpretation produced this value.
	Mode() Mode

	// sealed prevents implementations outside this package, keeping the
	// construction-time validation guarantee.
	sealed()
}

// SampleInput carries the canonical positive and negative sample values.
type SampleInput struct {
	mode Mode
	pos  []float64
	neg  []float64
}

// Mode reports the mode that produced this input.
func (s *SampleInput) Mode() Mode { return s.mode }

// Pos returns a copy of the positive sample values.
func (s *SampleInput) Pos() []float64 {
	out := make([]float64, len(s.pos))
	copy(out, s.pos)
	return out
}

// Neg returns a copy of the negative sample values.
func (s *SampleInput) Neg() []float64 {
	out := make([]float64, len(s.neg))
	copy(out, s.neg)
	return out
}

func (s *SampleInput) sealed() {}

// RateInput carries per-grouping true-positive and false-positive rates.
type RateInput struct {
	mode Mode
	tpr  []float64
	fpr  []float64
}

// Mode reports the mode that produced this input.
func (r *RateInput) Mode() Mode { return r.mode }

// Groupings returns the number of rate groupings.
func (r *RateInput) Groupings() int { return len(r.tpr) }

// TPR returns a copy of the true-positive rates.
func (r *RateInput) TPR() []float64 {
	out := make([]float64, len(r.tpr))
	copy(out, r.tpr)
	return out
}

// FPR returns a copy of the false-positive rates.
func (r *RateInput) FPR() []float64 {
	out := make([]float64, len(r.fpr))
	copy(out, r.fpr)
	return out
}

func (r *RateInput) sealed() {}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

// Binary builds a sample-family input from classification outputs.
//
// Description:
//
//	Labels are interpreted as strictly-positive-means-positive, so {0,1},
//	{-1,+1}, and {false,true} encodings all work. Scores are partitioned
//	into positive samples (label > 0) and negative samples (label <= 0).
//	Each resulting set must be entirely finite and hold more than one
//	value, since the variance estimator needs a degree of freedom to
//	subtract.
//
// Inputs:
//   - labels: True values, one per sample. Must be finite.
//   - scores: Predicted scores, same length as labels.
//
// Outputs:
//   - *SampleInput: The validated input. Never nil on success.
//   - error: ErrShapeMismatch, ErrNonFiniteInput, or ErrInsufficientSamples.
//
// Example:
//
//	in, err := sdt.Binary([]float64{1, 1, 0, 0}, []float64{2, 3, 0, 1})
func Binary(labels, scores []float64) (*SampleInput, error) {
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("%w: %d labels vs %d scores",
			ErrShapeMismatch, len(labels), len(scores))
	}
	for i, v := range labels {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: label at index %d", ErrNonFiniteInput, i)
		}
	}

	var pos, neg []float64
	for i, label := range labels {
		if label > 0 {
			pos = append(pos, scores[i])
		} else {
			neg = append(neg, scores[i])
		}
	}
	return newSampleInput(ModeBinary, pos, neg)
}

// Samples builds a sample-family input from raw class distributions.
//
// Description:
//
//	The values are used exactly as given; no partitioning occurs. Each
//	set must be entirely finite and hold more than one value.
//
// Inputs:
//   - pos: Positive-class sample values (e.g. raw projection values).
//   - neg: Negative-class sample values.
//
// Outputs:
//   - *SampleInput: The validated input. Never nil on success.
//   - error: ErrNonFiniteInput or ErrInsufficientSamples.
func Samples(pos, neg []float64) (*SampleInput, error) {
	return newSampleInput(ModeSample, pos, neg)
}

// newSampleInput validates and defensively copies the canonical sample
// sets. Finiteness is checked before cardinality, mirroring the order the
// estimator preconditions are stated in.
func newSampleInput(mode Mode, pos, neg []float64) (*SampleInput, error) {
	for i, v := range pos {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: positive sample at index %d", ErrNonFiniteInput, i)
		}
	}
	for i, v := range neg {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: negative sample at index %d", ErrNonFiniteInput, i)
		}
	}
	if len(pos) <= 1 {
		return nil, fmt.Errorf("%w: need more than one positive sample, got %d",
			ErrInsufficientSamples, len(pos))
	}
	if len(neg) <= 1 {
		return nil, fmt.Errorf("%w: need more than one negative sample, got %d",
			ErrInsufficientSamples, len(neg))
	}

	in := &SampleInput{
		mode: mode,
		pos:  make([]float64, len(pos)),
		neg:  make([]float64, len(neg)),
	}
	copy(in.pos, pos)
	copy(in.neg, neg)
	return in, nil
}

// Rates builds a rate-family input from per-grouping rates.
//
// Description:
//
//	One TPR and one FPR per grouping, element-aligned. Both arrays must
//	have identical length and finite values. Values of exactly 0 or 1 are
//	accepted; they map to infinities under the quantile transform, which
//	is the documented boundary behavior rather than an error.
//
// Inputs:
//   - tpr: True-positive rates, one per grouping.
//   - fpr: False-positive rates, same length.
//
// Outputs:
//   - *RateInput: The validated input. Never nil on success.
//   - error: ErrShapeMismatch or ErrNonFiniteInput.
func Rates(tpr, fpr []float64) (*RateInput, error) {
	if len(tpr) != len(fpr) {
		return nil, fmt.Errorf("%w: %d TPR values vs %d FPR values",
			ErrShapeMismatch, len(tpr), len(fpr))
	}
	for i, v := range tpr {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: TPR at index %d", ErrNonFiniteInput, i)
		}
	}
	for i, v := range fpr {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: FPR at index %d", ErrNonFiniteInput, i)
		}
	}
	return newRateInput(ModeRate, tpr, fpr), nil
}

// newRateInput defensively copies already-validated rate arrays.
func newRateInput(mode Mode, tpr, fpr []float64) *RateInput {
	in := &RateInput{
		mode: mode,
		tpr:  make([]float64, len(tpr)),
		fpr:  make([]float64, len(fpr)),
	}
	copy(in.tpr, tpr)
	copy(in.fpr, fpr)
	return in
}

// ConfusionMatrix builds a rate-family input from a confusion matrix.
//
// Description:
//
//	Delegates the matrix reduction to confusion.Compute, which owns the
//	collation and fudge-factor semantics, then derives TPR = TP/P and
//	FPR = FP/N per grouping. With fudging disabled, a grouping with no
//	positive or no negative instances yields a degenerate rate that
//	propagates through the quantile transform rather than erroring.
//
// Inputs:
//   - m: Confusion matrix; entry (r, c) counts true class r predicted as
//     class c. Must not be nil.
//   - cfg: Collation and fudge configuration, forwarded verbatim to
//     confusion.Compute. Nil selects that package's defaults.
//
// Outputs:
//   - *RateInput: One grouping per collation row. Never nil on success.
//   - error: Any error from confusion.Compute.
//
// Example:
//
//	m := mat.NewDense(2, 2, []float64{10, 0, 0, 10})
//	in, err := sdt.ConfusionMatrix(m, nil)
func ConfusionMatrix(m *mat.Dense, cfg *confusion.Config) (*RateInput, error) {
	stats, err := confusion.Compute(m, cfg)
	if err != nil {
		return nil, err
	}
	return newRateInput(ModeConfusionMat, stats.TPR(), stats.FPR()), nil
}

// isFinite reports whether v is neither NaN nor an infinity.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Compile-time checks that both variants satisfy Input.
var (
	_ Input = (*SampleInput)(nil)
	_ Input = (*RateInput)(nil)
)
