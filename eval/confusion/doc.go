// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package confusion reduces a multi-class confusion matrix to per-grouping
// binary detection counts.
//
// # Overview
//
// A confusion matrix M has one row per true class and one column per
// predicted class; M(r, c) counts the instances of true class r that the
// classifier assigned to class c. Rate-based metrics such as the d-prime
// sensitivity index need binary counts instead: for each grouping of
// classes, the number of positives P, negatives N, true positives TP,
// false negatives FN, false positives FP, and true negatives TN.
//
// Compute performs that reduction:
//
//	stats, err := confusion.Compute(m, nil) // one-vs-rest, fudge correction
//	tpr, fpr := stats.TPR(), stats.FPR()
//
// # Collation
//
// A collation scheme defines the groupings. Each collation row assigns every
// class either +1 (counted as positive for that grouping) or -1 (counted as
// negative). The default scheme is one-vs-rest: one grouping per class, that
// class positive and all others negative. Custom schemes can merge classes,
// e.g. for a 3-class matrix where the first two classes form the positive
// pool:
//
//	cfg := &confusion.Config{Collation: [][]int8{{+1, +1, -1}}}
//
// # Fudge factor
//
// Degenerate rates of exactly 0 or 1 map to infinite values under the
// normal quantile transform. The fudge factor nudges counts away from those
// boundaries before rates are formed:
//
//   - FudgeCorrection (default): only degenerate TP and FP counts are moved
//     by the factor (TP==P becomes P-f, TP==0 becomes f, and likewise FP
//     against N).
//   - FudgeAlways: every count is smoothed unconditionally (TP, FN, FP, TN
//     gain f; P and N gain 2f), a Laplace-style correction.
//   - FudgeNone: counts are reported exactly as tallied.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package confusion
