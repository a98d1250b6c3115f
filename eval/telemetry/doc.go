// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exports metric-computation telemetry from evaluation
// pipelines without touching the pure scorer code.
//
// # Architecture
//
// Scorers stay side-effect free; observability is layered on from the
// outside:
//
//	labels, predictions ──► WrapScorer(scorer, sink) ──► value
//	                              │
//	                              ▼
//	                        Sink.RecordScore
//	                        • MemorySink (tests, local inspection)
//	                        • OTelSink   (spans + OTel metrics)
//
// # Usage
//
//	sink, err := telemetry.NewOTelSink(telemetry.DefaultOTelConfig())
//	if err != nil {
//	    return fmt.Errorf("create sink: %w", err)
//	}
//	defer sink.Close()
//
//	scorer := telemetry.WrapScorer(sdt.NewScorer(), sink,
//	    map[string]string{"fold": "validation"})
//	dp, err := scorer.Score(labels, predictions)
//
// Sink failures never affect scoring: the wrapper records on a best-effort
// basis and always passes the scorer's result through unchanged.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package telemetry
