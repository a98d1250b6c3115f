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
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrOTelInitFailed is returned when OpenTelemetry initialization fails.
	ErrOTelInitFailed = errors.New("opentelemetry initialization failed")

	// ErrInvalidOTelConfig is returned when the OTel configuration is invalid.
	ErrInvalidOTelConfig = errors.New("invalid opentelemetry configuration")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// OTelConfig configures the OpenTelemetry sink.
//
// Thread Safety: Immutable after creation; safe for concurrent read access.
type OTelConfig struct {
	// ServiceName is the service name for telemetry.
	// Required.
	ServiceName string

	// ServiceVersion is the service version for telemetry.
	// Optional.
	ServiceVersion string

	// TracerProvider is the tracer provider to use.
	// If nil, uses the global tracer provider.
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If nil, uses the global meter provider.
	MeterProvider metric.MeterProvider

	// TraceEnabled enables trace span creation.
	// Default: true.
	TraceEnabled bool

	// MetricsEnabled enables metric recording.
	// Default: true.
	MetricsEnabled bool
}

// DefaultOTelConfig returns a configuration with sensible defaults.
//
// Outputs:
//   - *OTelConfig: Configuration with defaults applied.
//
// Example:
//
//	config := telemetry.DefaultOTelConfig()
//	config.ServiceName = "my-pipeline"
//	sink, err := telemetry.NewOTelSink(config)
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "evalkit",
		ServiceVersion: "1.0.0",
		TraceEnabled:   true,
		MetricsEnabled: true,
	}
}

// Validate checks that the configuration is valid.
func (c *OTelConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// OpenTelemetry Sink
// -----------------------------------------------------------------------------

// OTelSink exports score telemetry via OpenTelemetry.
//
// Description:
//
//	OTelSink creates trace spans for metric computations and records
//	OTel metrics for durations, values, and errors. It integrates with
//	the standard OTel providers for flexible backend configuration.
//	Without configured providers, telemetry is discarded (no-op).
//
// Thread Safety: Safe for concurrent use.
type OTelSink struct {
	config *OTelConfig
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics instruments
	scoreDuration metric.Float64Histogram
	scoreValue    metric.Float64Histogram
	scoresTotal   metric.Int64Counter
	clippedTotal  metric.Int64Counter
	errorsTotal   metric.Int64Counter

	mu     sync.RWMutex
	closed bool
}

// NewOTelSink creates a new OpenTelemetry telemetry sink.
//
// Inputs:
//   - config: OpenTelemetry configuration. Must not be nil.
//
// Outputs:
//   - *OTelSink: The created sink. Never nil on success.
//   - error: Non-nil if configuration is invalid or initialization fails.
//
// Thread Safety: The returned sink is safe for concurrent use.
//
// Assumptions:
//   - TracerProvider and MeterProvider are properly initialized.
//   - Caller is responsible for shutting down the providers.
func NewOTelSink(config *OTelConfig) (*OTelSink, error) {
	if config == nil {
		return nil, ErrInvalidOTelConfig
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidOTelConfig, err)
	}

	// Copy config to avoid mutation
	cfg := *config

	// Get providers
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	tracer := tp.Tracer(
		"github.com/AleutianAI/EvalKit/eval/telemetry",
		trace.WithInstrumentationVersion(cfg.ServiceVersion),
	)

	meter := mp.Meter(
		"github.com/AleutianAI/EvalKit/eval/telemetry",
		metric.WithInstrumentationVersion(cfg.ServiceVersion),
	)

	sink := &OTelSink{
		config: &cfg,
		tracer: tracer,
		meter:  meter,
	}

	if cfg.MetricsEnabled {
		if err := sink.initializeMetrics(); err != nil {
			return nil, errors.Join(ErrOTelInitFailed, err)
		}
	}

	return sink, nil
}

// initializeMetrics creates all metric instruments.
func (s *OTelSink) initializeMetrics() error {
	var err error

	s.scoreDuration, err = s.meter.Float64Histogram(
		"score.duration",
		metric.WithDescription("Metric computation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	s.scoreValue, err = s.meter.Float64Histogram(
		"score.value",
		metric.WithDescription("Computed metric values"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	s.scoresTotal, err = s.meter.Int64Counter(
		"score.total",
		metric.WithDescription("Total metric computations"),
		metric.WithUnit("{computation}"),
	)
	if err != nil {
		return err
	}

	s.clippedTotal, err = s.meter.Int64Counter(
		"score.clipped",
		metric.WithDescription("Computations whose output bounds clipped the result"),
		metric.WithUnit("{computation}"),
	)
	if err != nil {
		return err
	}

	s.errorsTotal, err = s.meter.Int64Counter(
		"score.errors",
		metric.WithDescription("Failed metric computations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordScore records one metric computation.
//
// Description:
//
//	Creates a trace span for the computation and records metrics for
//	duration, values, clipping, and errors. Non-finite values are
//	reported on the span but excluded from the value histogram, which
//	cannot represent them meaningfully.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - data: Score data to record. Must not be nil.
//
// Outputs:
//   - error: Non-nil if the sink is closed or inputs are invalid.
//
// Thread Safety: Safe for concurrent use.
func (s *OTelSink) RecordScore(ctx context.Context, data *ScoreData) error {
	if ctx == nil {
		return ErrNilContext
	}
	if data == nil {
		return ErrNilData
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSinkClosed
	}
	s.mu.RUnlock()

	name := data.Scorer
	if name == "" {
		name = "unknown"
	}

	// Common attributes
	attrs := []attribute.KeyValue{
		attribute.String("score.scorer", name),
		attribute.Int("score.groupings", data.Groupings),
	}
	for k, v := range data.Labels {
		attrs = append(attrs, attribute.String("label."+k, v))
	}

	// Create span if tracing enabled
	if s.config.TraceEnabled {
		_, span := s.tracer.Start(ctx, "score.record",
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(data.Timestamp),
		)

		span.SetAttributes(
			attribute.Float64("score.duration_seconds", data.Duration.Seconds()),
			attribute.Bool("score.clipped", data.Clipped),
			attribute.Float64Slice("score.values", data.Values),
		)

		if data.Error != "" {
			span.SetStatus(codes.Error, data.Error)
		}

		span.End()
	}

	// Record metrics if enabled
	if s.config.MetricsEnabled {
		attrSet := metric.WithAttributes(attrs...)

		s.scoreDuration.Record(ctx, data.Duration.Seconds(), attrSet)
		s.scoresTotal.Add(ctx, 1, attrSet)

		for _, v := range data.Values {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				s.scoreValue.Record(ctx, v, attrSet)
			}
		}

		if data.Clipped {
			s.clippedTotal.Add(ctx, 1, attrSet)
		}
		if data.Error != "" {
			s.errorsTotal.Add(ctx, 1, attrSet)
		}
	}

	return nil
}

// Flush forces export of any buffered telemetry.
//
// Description:
//
//	For the OTel sink this is a no-op: batching and export belong to the
//	providers, which this sink does not own. Call ForceFlush on the
//	TracerProvider and MeterProvider directly if needed.
//
// Thread Safety: Safe for concurrent use.
func (s *OTelSink) Flush(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}
	return nil
}

// Close marks the sink as closed.
//
// Description:
//
//	Does not shut down the providers as they may be shared; the caller
//	manages provider lifecycle.
//
// Thread Safety: Safe for concurrent use. Idempotent.
func (s *OTelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

// Verify interface compliance at compile time.
var _ Sink = (*OTelSink)(nil)
