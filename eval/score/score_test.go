// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		acc, err := Accuracy(
			[]float64{1, 1, 0, 0},
			[]float64{1, 0, 0, 1},
			false,
		)
		require.NoError(t, err)
		assert.Equal(t, 0.5, acc)
	})

	t.Run("perfect", func(t *testing.T) {
		acc, err := Accuracy(
			[]float64{1, 0, 1, 0},
			[]float64{1, 0, 1, 0},
			false,
		)
		require.NoError(t, err)
		assert.Equal(t, 1.0, acc)
	})

	t.Run("labels binarize on strictly positive", func(t *testing.T) {
		// -1 and 0 both mean negative.
		acc, err := Accuracy(
			[]float64{1, -1, 0},
			[]float64{2, -3, -0.5},
			false,
		)
		require.NoError(t, err)
		assert.Equal(t, 1.0, acc)
	})

	t.Run("balanced compensates for imbalance", func(t *testing.T) {
		// Predicting all-positive scores 3/4 plain but only 1/2 balanced.
		labels := []float64{1, 1, 1, 0}
		predictions := []float64{1, 1, 1, 1}

		plain, err := Accuracy(labels, predictions, false)
		require.NoError(t, err)
		assert.Equal(t, 0.75, plain)

		balanced, err := Accuracy(labels, predictions, true)
		require.NoError(t, err)
		assert.Equal(t, 0.5, balanced)
	})

	t.Run("balanced requires both classes", func(t *testing.T) {
		_, err := Accuracy([]float64{1, 1}, []float64{1, 0}, true)
		assert.ErrorIs(t, err, ErrSingleClass)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := Accuracy([]float64{1}, []float64{1, 0}, false)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Accuracy(nil, nil, false)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("non-finite input", func(t *testing.T) {
		_, err := Accuracy([]float64{1, math.NaN()}, []float64{1, 0}, false)
		assert.ErrorIs(t, err, ErrNonFiniteInput)
	})
}

func TestRMSE(t *testing.T) {
	t.Run("zero on exact predictions", func(t *testing.T) {
		rmse, err := RMSE([]float64{1, 2, 3}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 0.0, rmse)
	})

	t.Run("known error", func(t *testing.T) {
		rmse, err := RMSE([]float64{0, 0}, []float64{3, 4})
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(12.5), rmse, 1e-12)
	})

	t.Run("symmetric in its arguments", func(t *testing.T) {
		a := []float64{1, 2, 3}
		b := []float64{2, 2, 5}

		fwd, err := RMSE(a, b)
		require.NoError(t, err)
		rev, err := RMSE(b, a)
		require.NoError(t, err)
		assert.Equal(t, fwd, rev)
	})

	t.Run("non-finite prediction", func(t *testing.T) {
		_, err := RMSE([]float64{1, 2}, []float64{1, math.Inf(1)})
		assert.ErrorIs(t, err, ErrNonFiniteInput)
	})
}

func TestPearsonCorrelation(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		r, err := PearsonCorrelation([]float64{1, 2, 3}, []float64{10, 20, 30})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r, 1e-12)
	})

	t.Run("perfect negative", func(t *testing.T) {
		r, err := PearsonCorrelation([]float64{1, 2, 3}, []float64{3, 2, 1})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, r, 1e-12)
	})

	t.Run("constant input is NaN", func(t *testing.T) {
		r, err := PearsonCorrelation([]float64{1, 1, 1}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(r))
	})

	t.Run("single pair is rejected", func(t *testing.T) {
		_, err := PearsonCorrelation([]float64{1}, []float64{2})
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}

func TestScorerAdapters(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		assert.Equal(t, "accuracy", (&AccuracyScorer{}).Name())
		assert.Equal(t, "balanced_accuracy", (&AccuracyScorer{Balanced: true}).Name())
		assert.Equal(t, "rmse", (&RMSEScorer{}).Name())
		assert.Equal(t, "pearson", (&CorrelationScorer{}).Name())
	})

	t.Run("adapters delegate", func(t *testing.T) {
		labels := []float64{1, 1, 0, 0}
		predictions := []float64{1, 0, 0, 1}

		acc, err := (&AccuracyScorer{}).Score(labels, predictions)
		require.NoError(t, err)
		assert.Equal(t, 0.5, acc)

		rmse, err := (&RMSEScorer{}).Score(labels, predictions)
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(0.5), rmse, 1e-12)
	})
}
