// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sdt computes the d-prime (d') sensitivity index of
// signal-detection theory: a threshold-independent measure of how well a
// detector separates two classes, expressed in standard-deviation units.
//
// # Input modes
//
// Four input representations are supported, each with its own validated
// constructor:
//
//   - Binary: true labels plus real-valued prediction scores. Scores are
//     partitioned into positive samples (label > 0) and negative samples
//     (label <= 0).
//   - Samples: the positive and negative sample values directly.
//   - Rates: per-grouping true-positive and false-positive rates.
//   - ConfusionMatrix: a multi-class confusion matrix, reduced to
//     per-grouping rates by the eval/confusion package.
//
// Binary and sample inputs use the equal-variance estimator
//
//	d' = (mean(pos) - mean(neg)) / sqrt((var(pos) + var(neg)) / 2)
//
// with Bessel-corrected variances, which is why each sample set must hold
// more than one value. Rate and confusion-matrix inputs use the quantile
// transform
//
//	d' = Phi^-1(TPR) - Phi^-1(FPR)
//
// applied elementwise per grouping.
//
// # Degenerate values
//
// Zero pooled variance and rates of exactly 0 or 1 are not errors: they
// produce infinities (or NaN) that propagate through the arithmetic. The
// WithMaxValue and WithMinValue options clamp the final result, which is
// the intended way to bound pathological cases:
//
//	dp, err := sdt.DPrimeRates([]float64{1}, []float64{0},
//	    sdt.WithMaxValue(5), sdt.WithMinValue(-5))
//	// dp == [5]
//
// Clamping is strictly post-hoc; intermediate statistics are never
// adjusted.
//
// # Thread Safety
//
// Every function in this package is pure and stateless; all are safe for
// unconstrained concurrent use.
package sdt
