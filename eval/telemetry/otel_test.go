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
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// createTestScoreData returns a representative successful computation record.
func createTestScoreData() *ScoreData {
	return &ScoreData{
		Scorer:    "dprime",
		Groupings: 1,
		Values:    []float64{2.83},
		Duration:  150 * time.Microsecond,
		Timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Configuration Tests
// -----------------------------------------------------------------------------

func TestDefaultOTelConfig(t *testing.T) {
	config := DefaultOTelConfig()

	if config.ServiceName != "evalkit" {
		t.Errorf("ServiceName = %s, want evalkit", config.ServiceName)
	}
	if config.ServiceVersion != "1.0.0" {
		t.Errorf("ServiceVersion = %s, want 1.0.0", config.ServiceVersion)
	}
	if !config.TraceEnabled {
		t.Error("TraceEnabled should be true by default")
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled should be true by default")
	}
}

func TestOTelConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := DefaultOTelConfig()
		if err := config.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("empty service name", func(t *testing.T) {
		config := DefaultOTelConfig()
		config.ServiceName = ""
		if err := config.Validate(); err == nil {
			t.Error("Validate() should fail for empty service name")
		}
	})
}

// -----------------------------------------------------------------------------
// NewOTelSink Tests
// -----------------------------------------------------------------------------

func TestNewOTelSink(t *testing.T) {
	t.Run("creates with valid config", func(t *testing.T) {
		config := DefaultOTelConfig()
		tp := trace.NewTracerProvider()
		mp := metric.NewMeterProvider()
		defer tp.Shutdown(context.Background())
		defer mp.Shutdown(context.Background())

		config.TracerProvider = tp
		config.MeterProvider = mp

		sink, err := NewOTelSink(config)
		if err != nil {
			t.Fatalf("NewOTelSink failed: %v", err)
		}
		if sink == nil {
			t.Fatal("Expected non-nil sink")
		}
		sink.Close()
	})

	t.Run("creates with global providers", func(t *testing.T) {
		config := DefaultOTelConfig()

		sink, err := NewOTelSink(config)
		if err != nil {
			t.Fatalf("NewOTelSink failed: %v", err)
		}
		if sink == nil {
			t.Fatal("Expected non-nil sink")
		}
		sink.Close()
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewOTelSink(nil)
		if !errors.Is(err, ErrInvalidOTelConfig) {
			t.Errorf("Expected ErrInvalidOTelConfig, got %v", err)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		config := &OTelConfig{ServiceName: ""}
		_, err := NewOTelSink(config)
		if !errors.Is(err, ErrInvalidOTelConfig) {
			t.Errorf("Expected ErrInvalidOTelConfig, got %v", err)
		}
	})

	t.Run("creates with tracing disabled", func(t *testing.T) {
		config := DefaultOTelConfig()
		config.TraceEnabled = false

		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, err := NewOTelSink(config)
		if err != nil {
			t.Fatalf("NewOTelSink failed: %v", err)
		}
		sink.Close()
	})

	t.Run("creates with metrics disabled", func(t *testing.T) {
		config := DefaultOTelConfig()
		config.MetricsEnabled = false

		tp := trace.NewTracerProvider()
		defer tp.Shutdown(context.Background())
		config.TracerProvider = tp

		sink, err := NewOTelSink(config)
		if err != nil {
			t.Fatalf("NewOTelSink failed: %v", err)
		}
		sink.Close()
	})
}

// -----------------------------------------------------------------------------
// RecordScore Tests
// -----------------------------------------------------------------------------

func TestOTelSink_RecordScore(t *testing.T) {
	t.Run("records score with tracing", func(t *testing.T) {
		spanRecorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(spanRecorder))
		mp := metric.NewMeterProvider()
		defer tp.Shutdown(context.Background())
		defer mp.Shutdown(context.Background())

		config := DefaultOTelConfig()
		config.TracerProvider = tp
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		err := sink.RecordScore(context.Background(), createTestScoreData())
		if err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}

		spans := spanRecorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("Expected 1 span, got %d", len(spans))
		}
		if spans[0].Name() != "score.record" {
			t.Errorf("Span name = %s, want score.record", spans[0].Name())
		}
	})

	t.Run("records metrics through a manual reader", func(t *testing.T) {
		reader := metric.NewManualReader()
		mp := metric.NewMeterProvider(metric.WithReader(reader))
		defer mp.Shutdown(context.Background())

		config := DefaultOTelConfig()
		config.TraceEnabled = false
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		if err := sink.RecordScore(context.Background(), createTestScoreData()); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("Collect failed: %v", err)
		}

		names := make(map[string]bool)
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				names[m.Name] = true
			}
		}
		for _, want := range []string{"score.duration", "score.value", "score.total"} {
			if !names[want] {
				t.Errorf("Expected metric %s to be recorded, got %v", want, names)
			}
		}
	})

	t.Run("non-finite values skip the value histogram", func(t *testing.T) {
		reader := metric.NewManualReader()
		mp := metric.NewMeterProvider(metric.WithReader(reader))
		defer mp.Shutdown(context.Background())

		config := DefaultOTelConfig()
		config.TraceEnabled = false
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		data := createTestScoreData()
		data.Values = []float64{math.Inf(1), math.NaN()}

		if err := sink.RecordScore(context.Background(), data); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				if m.Name == "score.value" {
					t.Error("score.value should not be recorded for non-finite values")
				}
			}
		}
	})

	t.Run("records error status", func(t *testing.T) {
		spanRecorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(spanRecorder))
		mp := metric.NewMeterProvider()
		defer tp.Shutdown(context.Background())
		defer mp.Shutdown(context.Background())

		config := DefaultOTelConfig()
		config.TracerProvider = tp
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		data := createTestScoreData()
		data.Values = nil
		data.Error = "input shape mismatch"

		if err := sink.RecordScore(context.Background(), data); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}

		spans := spanRecorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("Expected 1 span, got %d", len(spans))
		}
		if spans[0].Status().Description != "input shape mismatch" {
			t.Errorf("Span status = %q, want the scorer error", spans[0].Status().Description)
		}
	})

	t.Run("handles empty scorer name", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		data := createTestScoreData()
		data.Scorer = ""

		if err := sink.RecordScore(context.Background(), data); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}
	})

	t.Run("records score with labels", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		data := createTestScoreData()
		data.Labels = map[string]string{
			"fold":    "validation",
			"dataset": "holdout",
		}

		if err := sink.RecordScore(context.Background(), data); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}
	})

	t.Run("rejects nil context", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		err := sink.RecordScore(nil, createTestScoreData())
		if !errors.Is(err, ErrNilContext) {
			t.Errorf("Expected ErrNilContext, got %v", err)
		}
	})

	t.Run("rejects nil data", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		err := sink.RecordScore(context.Background(), nil)
		if !errors.Is(err, ErrNilData) {
			t.Errorf("Expected ErrNilData, got %v", err)
		}
	})

	t.Run("returns error after close", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		sink.Close()

		err := sink.RecordScore(context.Background(), createTestScoreData())
		if !errors.Is(err, ErrSinkClosed) {
			t.Errorf("Expected ErrSinkClosed, got %v", err)
		}
	})

	t.Run("skips tracing when disabled", func(t *testing.T) {
		spanRecorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(spanRecorder))
		mp := metric.NewMeterProvider()
		defer tp.Shutdown(context.Background())
		defer mp.Shutdown(context.Background())

		config := DefaultOTelConfig()
		config.TracerProvider = tp
		config.MeterProvider = mp
		config.TraceEnabled = false

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		if err := sink.RecordScore(context.Background(), createTestScoreData()); err != nil {
			t.Fatalf("RecordScore failed: %v", err)
		}

		if spans := spanRecorder.Ended(); len(spans) != 0 {
			t.Errorf("Expected no spans, got %d", len(spans))
		}
	})
}

// -----------------------------------------------------------------------------
// Lifecycle Tests
// -----------------------------------------------------------------------------

func TestOTelSink_Lifecycle(t *testing.T) {
	t.Run("flush on open sink", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		if err := sink.Flush(context.Background()); err != nil {
			t.Errorf("Flush failed: %v", err)
		}
	})

	t.Run("flush rejects nil context", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		defer sink.Close()

		if err := sink.Flush(nil); !errors.Is(err, ErrNilContext) {
			t.Errorf("Expected ErrNilContext, got %v", err)
		}
	})

	t.Run("flush after close", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		sink.Close()

		if err := sink.Flush(context.Background()); !errors.Is(err, ErrSinkClosed) {
			t.Errorf("Expected ErrSinkClosed, got %v", err)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		config := DefaultOTelConfig()
		mp := metric.NewMeterProvider()
		defer mp.Shutdown(context.Background())
		config.MeterProvider = mp

		sink, _ := NewOTelSink(config)
		if err := sink.Close(); err != nil {
			t.Errorf("First Close failed: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Errorf("Second Close failed: %v", err)
		}
	})
}
