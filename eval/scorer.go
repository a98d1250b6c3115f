// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eval defines the scorer contract shared by all EvalKit metrics
// and a concurrent registry for looking scorers up by name.
//
// A scorer reduces one batch of classifier outputs to a single scalar.
// Concrete implementations live in the subpackages: eval/sdt (the d-prime
// sensitivity index), eval/score (accuracy, RMSE, correlation). The
// eval/telemetry subpackage wraps scorers with observability without
// changing their results.
package eval

import "errors"

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNotFound is returned when a scorer is not found in the registry.
	ErrNotFound = errors.New("scorer not found")

	// ErrAlreadyRegistered is returned when attempting to register a duplicate.
	ErrAlreadyRegistered = errors.New("scorer already registered")

	// ErrNilScorer is returned when attempting to register nil.
	ErrNilScorer = errors.New("scorer must not be nil")
)

// -----------------------------------------------------------------------------
// Scorer Interface
// -----------------------------------------------------------------------------

// Scorer reduces a batch of binary-classification outputs to one scalar.
//
// Description:
//
//	Labels are interpreted as strictly-positive-means-positive-class
//	({0,1}, {-1,+1} and {false,true} encodings all work); predictions are
//	real-valued scores aligned element-for-element with the labels. Every
//	implementation must validate its own preconditions and fail fast with
//	a descriptive error before computing anything.
//
// Thread Safety: Implementations must be safe for concurrent use; the
// built-in scorers are stateless.
type Scorer interface {
	// Name returns a unique identifier for registry lookup and metric
	// labels (lowercase, underscore-separated).
	//
	// Example: "dprime", "accuracy", "rmse"
	Name() string

	// Score computes the scalar metric for one batch of outputs.
	//
	// Inputs:
	//   - labels: True values, one per sample. Must be finite.
	//   - predictions: Predicted scores, same length as labels.
	//
	// Outputs:
	//   - float64: The metric value.
	//   - error: Non-nil if the inputs violate the scorer's preconditions.
	Score(labels, predictions []float64) (float64, error)
}
