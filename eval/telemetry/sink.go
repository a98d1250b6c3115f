// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AleutianAI/EvalKit/eval"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context must not be nil")

	// ErrNilData is returned when nil telemetry data is passed.
	ErrNilData = errors.New("telemetry data must not be nil")

	// ErrSinkClosed is returned when recording to a closed sink.
	ErrSinkClosed = errors.New("telemetry sink is closed")
)

// -----------------------------------------------------------------------------
// Data
// -----------------------------------------------------------------------------

// ScoreData describes one metric computation for export.
type ScoreData struct {
	// Scorer is the scorer name (e.g. "dprime").
	Scorer string

	// Groupings is the number of values produced (1 for scalar scorers).
	Groupings int

	// Values are the computed metric value(s). Empty when Error is set.
	Values []float64

	// Clipped reports whether output bounds altered any value. Set by
	// callers that configured bounds; the wrapper leaves it false.
	Clipped bool

	// Duration is the wall time of the computation.
	Duration time.Duration

	// Error is the scorer's error text, empty on success.
	Error string

	// Timestamp is when the computation finished.
	Timestamp time.Time

	// Labels are free-form attributes (fold, dataset, model revision).
	Labels map[string]string
}

// Sink receives metric-computation telemetry.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Sink interface {
	// RecordScore exports one computation. Must not block on slow backends
	// beyond what the context allows.
	RecordScore(ctx context.Context, data *ScoreData) error

	// Flush forces export of any buffered telemetry.
	Flush(ctx context.Context) error

	// Close releases resources. Idempotent.
	Close() error
}

// -----------------------------------------------------------------------------
// Memory Sink
// -----------------------------------------------------------------------------

// MemorySink collects score records in memory.
//
// Description:
//
//	Useful for tests and local inspection. Records are copied on write so
//	later mutation by the caller cannot corrupt the history.
//
// Thread Safety: Safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	records []ScoreData
	closed  bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		records: make([]ScoreData, 0, 64),
	}
}

// RecordScore appends a copy of the record.
func (s *MemorySink) RecordScore(ctx context.Context, data *ScoreData) error {
	if ctx == nil {
		return ErrNilContext
	}
	if data == nil {
		return ErrNilData
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}

	record := *data
	record.Values = append([]float64(nil), data.Values...)
	if data.Labels != nil {
		record.Labels = make(map[string]string, len(data.Labels))
		for k, v := range data.Labels {
			record.Labels[k] = v
		}
	}
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of all collected records.
func (s *MemorySink) Records() []ScoreData {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScoreData, len(s.records))
	copy(out, s.records)
	return out
}

// Flush is a no-op; records are already in memory.
func (s *MemorySink) Flush(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	return nil
}

// Close marks the sink as closed. Idempotent.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// -----------------------------------------------------------------------------
// Scorer Middleware
// -----------------------------------------------------------------------------

// WrapScorer returns a scorer that records every computation to the sink.
//
// Description:
//
//	The wrapper times Score, records the outcome (value or error text)
//	with the given labels, and passes the scorer's result through
//	unchanged. Sink errors are deliberately dropped: telemetry must never
//	change scoring behavior.
//
// Inputs:
//   - scorer: The scorer to instrument. Must not be nil.
//   - sink: Destination for the records. Must not be nil.
//   - labels: Attributes attached to every record. May be nil.
//
// Outputs:
//   - eval.Scorer: The instrumented scorer.
//
// Thread Safety: Safe for concurrent use if scorer and sink are.
func WrapScorer(scorer eval.Scorer, sink Sink, labels map[string]string) eval.Scorer {
	return &instrumentedScorer{
		scorer: scorer,
		sink:   sink,
		labels: labels,
	}
}

type instrumentedScorer struct {
	scorer eval.Scorer
	sink   Sink
	labels map[string]string
}

// Name returns the wrapped scorer's name.
func (s *instrumentedScorer) Name() string {
	return s.scorer.Name()
}

// Score computes the metric and records the outcome.
func (s *instrumentedScorer) Score(labels, predictions []float64) (float64, error) {
	start := time.Now()
	value, err := s.scorer.Score(labels, predictions)
	duration := time.Since(start)

	data := &ScoreData{
		Scorer:    s.scorer.Name(),
		Groupings: 1,
		Duration:  duration,
		Timestamp: time.Now(),
		Labels:    s.labels,
	}
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Values = []float64{value}
	}

	// Best effort; scoring must not fail because a backend is down.
	_ = s.sink.RecordScore(context.Background(), data)

	return value, err
}

// Verify interface compliance at compile time.
var (
	_ Sink        = (*MemorySink)(nil)
	_ eval.Scorer = (*instrumentedScorer)(nil)
)
