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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/AleutianAI/EvalKit/eval"
	"github.com/AleutianAI/EvalKit/eval/confusion"
)

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// options holds the output bounds. Defaults leave the result unclipped.
type options struct {
	max float64
	min float64
}

// Option configures a d-prime computation.
type Option func(*options)

// WithMaxValue caps the computed d-prime value(s).
//
// Description:
//
//	The cap applies elementwise to the final result only; intermediate
//	statistics are never altered. Default: +Inf (no cap).
func WithMaxValue(v float64) Option {
	return func(o *options) { o.max = v }
}

// WithMinValue floors the computed d-prime value(s).
//
// Description:
//
//	The floor applies elementwise to the final result only. Default:
//	-Inf (no floor).
func WithMinValue(v float64) Option {
	return func(o *options) { o.min = v }
}

// WithBounds sets both the floor and the cap at once.
func WithBounds(min, max float64) Option {
	return func(o *options) {
		o.min = min
		o.max = max
	}
}

func applyOptions(opts []Option) options {
	o := options{
		max: math.Inf(1),
		min: math.Inf(-1),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// -----------------------------------------------------------------------------
// Estimator
// -----------------------------------------------------------------------------

// Compute calculates d-prime from a canonical input.
//
// Description:
//
//	This is the generic entry point; the DPrime* wrappers below cover the
//	common call shapes. Sample-family inputs always yield exactly one
//	value. Rate-family inputs yield one value per grouping, aligned with
//	the grouping order of the input. All precondition checking happened
//	at input construction, so the only failure left here is a nil input.
//
//	Degenerate arithmetic (zero pooled variance, rates of exactly 0 or 1)
//	produces infinities or NaN that are clamped by the configured bounds,
//	not raised as errors.
//
// Inputs:
//   - in: A validated input from Binary, Samples, Rates, or
//     ConfusionMatrix. Must not be nil.
//   - opts: Optional output bounds.
//
// Outputs:
//   - []float64: The d-prime value(s). Length 1 for sample-family inputs.
//   - error: ErrInvalidMode if in is nil or of a foreign type.
//
// Thread Safety: Pure function; safe for concurrent use.
func Compute(in Input, opts ...Option) ([]float64, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidMode)
	}
	o := applyOptions(opts)

	switch v := in.(type) {
	case *SampleInput:
		return []float64{clamp(sampleDPrime(v), o.min, o.max)}, nil

	case *RateInput:
		out := make([]float64, len(v.tpr))
		for i := range v.tpr {
			out[i] = clamp(probit(v.tpr[i])-probit(v.fpr[i]), o.min, o.max)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported input type %T", ErrInvalidMode, in)
	}
}

// sampleDPrime applies the equal-variance estimator: the separation of the
// class means over the root-mean of the two Bessel-corrected variances.
// A zero denominator is left to IEEE-754 rather than special-cased.
func sampleDPrime(s *SampleInput) float64 {
	posMean := stat.Mean(s.pos, nil)
	negMean := stat.Mean(s.neg, nil)
	posVar := stat.Variance(s.pos, nil)
	negVar := stat.Variance(s.neg, nil)

	return (posMean - negMean) / math.Sqrt((posVar+negVar)/2)
}

// probit is the standard normal quantile Phi^-1, extended to return NaN
// outside [0, 1] instead of panicking. Phi^-1(0) is -Inf and Phi^-1(1) is
// +Inf by the usual quantile convention.
func probit(p float64) float64 {
	if p < 0 || p > 1 {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile(p)
}

// clamp bounds v into [min, max]. NaN is preserved: both comparisons are
// false, matching elementwise array-clip semantics.
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// -----------------------------------------------------------------------------
// Convenience Wrappers
// -----------------------------------------------------------------------------

// DPrimeBinary computes d-prime from labels and prediction scores.
//
// Inputs:
//   - labels: True values, strictly positive means positive class.
//   - scores: Predicted scores, same length as labels.
//   - opts: Optional output bounds.
//
// Outputs:
//   - float64: The d-prime value.
//   - error: Any constructor error (see Binary).
//
// Example:
//
//	dp, err := sdt.DPrimeBinary([]float64{1, 1, 0, 0}, []float64{2, 3, 0, 1})
//	// dp == 2.828427...
func DPrimeBinary(labels, scores []float64, opts ...Option) (float64, error) {
	in, err := Binary(labels, scores)
	if err != nil {
		return 0, err
	}
	out, err := Compute(in, opts...)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// DPrimeSamples computes d-prime from raw class sample values.
func DPrimeSamples(pos, neg []float64, opts ...Option) (float64, error) {
	in, err := Samples(pos, neg)
	if err != nil {
		return 0, err
	}
	out, err := Compute(in, opts...)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// DPrimeRates computes per-grouping d-prime from TPR/FPR arrays.
func DPrimeRates(tpr, fpr []float64, opts ...Option) ([]float64, error) {
	in, err := Rates(tpr, fpr)
	if err != nil {
		return nil, err
	}
	return Compute(in, opts...)
}

// DPrimeConfusionMatrix computes per-grouping d-prime from a confusion
// matrix, with collation and fudge-factor behavior owned by the
// eval/confusion package.
func DPrimeConfusionMatrix(m *mat.Dense, cfg *confusion.Config, opts ...Option) ([]float64, error) {
	in, err := ConfusionMatrix(m, cfg)
	if err != nil {
		return nil, err
	}
	return Compute(in, opts...)
}

// -----------------------------------------------------------------------------
// Scorer
// -----------------------------------------------------------------------------

// Scorer adapts binary-mode d-prime to the eval.Scorer interface so
// pipelines can select it from the registry by name.
//
// Thread Safety: Stateless after construction; safe for concurrent use.
type Scorer struct {
	opts []Option
}

// NewScorer creates a d-prime scorer with the given output bounds.
//
// Example:
//
//	eval.MustRegister(sdt.NewScorer(sdt.WithBounds(-5, 5)))
func NewScorer(opts ...Option) *Scorer {
	return &Scorer{opts: opts}
}

// Name returns "dprime".
func (s *Scorer) Name() string { return "dprime" }

// Score computes binary-mode d-prime for one batch of outputs.
func (s *Scorer) Score(labels, predictions []float64) (float64, error) {
	return DPrimeBinary(labels, predictions, s.opts...)
}

// Verify interface compliance at compile time.
var _ eval.Scorer = (*Scorer)(nil)
