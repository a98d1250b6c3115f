// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package score provides the companion scalar metrics that evaluation
// pipelines typically report alongside the d-prime sensitivity index:
// accuracy (plain and balanced), root-mean-square error, and Pearson
// correlation. Like the sdt package, everything here is pure, stateless,
// and fails fast on malformed input.
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AleutianAI/EvalKit/eval"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrShapeMismatch is returned when labels and predictions differ in length.
	ErrShapeMismatch = errors.New("labels and predictions differ in length")

	// ErrEmptyInput is returned when there is nothing to score.
	ErrEmptyInput = errors.New("empty input")

	// ErrNonFiniteInput is returned when a NaN or infinity appears in the input.
	ErrNonFiniteInput = errors.New("non-finite input value")

	// ErrSingleClass is returned when balanced accuracy is requested but
	// only one class is present in the labels.
	ErrSingleClass = errors.New("balanced accuracy requires both classes")
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

// Accuracy computes the fraction of correct binary predictions.
//
// Description:
//
//	Labels and predictions are binarized with the strictly-positive
//	convention (> 0 means positive class). When balanced is true the
//	per-class recalls are averaged instead, which compensates for class
//	imbalance; both classes must then be present in the labels.
//
// Inputs:
//   - labels: True values. Must be finite and non-empty.
//   - predictions: Predicted values, same length as labels. Must be finite.
//   - balanced: Average per-class recalls instead of pooling.
//
// Outputs:
//   - float64: Accuracy in [0, 1].
//   - error: ErrShapeMismatch, ErrEmptyInput, ErrNonFiniteInput, or
//     ErrSingleClass.
//
// Thread Safety: Pure function; safe for concurrent use.
func Accuracy(labels, predictions []float64, balanced bool) (float64, error) {
	if err := checkPaired(labels, predictions); err != nil {
		return 0, err
	}

	if !balanced {
		correct := 0
		for i := range labels {
			if (labels[i] > 0) == (predictions[i] > 0) {
				correct++
			}
		}
		return float64(correct) / float64(len(labels)), nil
	}

	var posTotal, posCorrect, negTotal, negCorrect float64
	for i := range labels {
		if labels[i] > 0 {
			posTotal++
			if predictions[i] > 0 {
				posCorrect++
			}
		} else {
			negTotal++
			if predictions[i] <= 0 {
				negCorrect++
			}
		}
	}
	if posTotal == 0 || negTotal == 0 {
		return 0, ErrSingleClass
	}
	return (posCorrect/posTotal + negCorrect/negTotal) / 2, nil
}

// RMSE computes the root-mean-square error between labels and predictions.
//
// Outputs:
//   - float64: The RMSE, >= 0.
//   - error: ErrShapeMismatch, ErrEmptyInput, or ErrNonFiniteInput.
//
// Thread Safety: Pure function; safe for concurrent use.
func RMSE(labels, predictions []float64) (float64, error) {
	if err := checkPaired(labels, predictions); err != nil {
		return 0, err
	}

	var sumSq float64
	for i := range labels {
		diff := labels[i] - predictions[i]
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(labels))), nil
}

// PearsonCorrelation computes the Pearson correlation coefficient between
// labels and predictions.
//
// Description:
//
//	At least two sample pairs are required. Constant inputs have zero
//	variance; the resulting NaN is returned as-is rather than masked,
//	consistent with how the sdt package treats degenerate statistics.
//
// Outputs:
//   - float64: Correlation in [-1, 1], or NaN for constant input.
//   - error: ErrShapeMismatch, ErrEmptyInput, or ErrNonFiniteInput.
//
// Thread Safety: Pure function; safe for concurrent use.
func PearsonCorrelation(labels, predictions []float64) (float64, error) {
	if err := checkPaired(labels, predictions); err != nil {
		return 0, err
	}
	if len(labels) < 2 {
		return 0, fmt.Errorf("%w: need at least two pairs for correlation", ErrEmptyInput)
	}
	return stat.Correlation(labels, predictions, nil), nil
}

// checkPaired verifies the shared preconditions: equal non-zero lengths
// and finite values on both sides.
func checkPaired(labels, predictions []float64) error {
	if len(labels) != len(predictions) {
		return fmt.Errorf("%w: %d labels vs %d predictions",
			ErrShapeMismatch, len(labels), len(predictions))
	}
	if len(labels) == 0 {
		return ErrEmptyInput
	}
	for i, v := range labels {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: label at index %d", ErrNonFiniteInput, i)
		}
	}
	for i, v := range predictions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: prediction at index %d", ErrNonFiniteInput, i)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Scorer Adapters
// -----------------------------------------------------------------------------

// AccuracyScorer adapts Accuracy to the eval.Scorer interface.
type AccuracyScorer struct {
	// Balanced selects the class-balanced variant.
	Balanced bool
}

// Name returns "accuracy" or "balanced_accuracy".
func (s *AccuracyScorer) Name() string {
	if s.Balanced {
		return "balanced_accuracy"
	}
	return "accuracy"
}

// Score computes accuracy for one batch of outputs.
func (s *AccuracyScorer) Score(labels, predictions []float64) (float64, error) {
	return Accuracy(labels, predictions, s.Balanced)
}

// RMSEScorer adapts RMSE to the eval.Scorer interface.
type RMSEScorer struct{}

// Name returns "rmse".
func (s *RMSEScorer) Name() string { return "rmse" }

// Score computes RMSE for one batch of outputs.
func (s *RMSEScorer) Score(labels, predictions []float64) (float64, error) {
	return RMSE(labels, predictions)
}

// CorrelationScorer adapts PearsonCorrelation to the eval.Scorer interface.
type CorrelationScorer struct{}

// Name returns "pearson".
func (s *CorrelationScorer) Name() string { return "pearson" }

// Score computes the Pearson correlation for one batch of outputs.
func (s *CorrelationScorer) Score(labels, predictions []float64) (float64, error) {
	return PearsonCorrelation(labels, predictions)
}

// Verify interface compliance at compile time.
var (
	_ eval.Scorer = (*AccuracyScorer)(nil)
	_ eval.Scorer = (*RMSEScorer)(nil)
	_ eval.Scorer = (*CorrelationScorer)(nil)
)
