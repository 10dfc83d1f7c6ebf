// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/ojasavaparas/Sentinel/internal/incident"
	"github.com/ojasavaparas/Sentinel/internal/trace"
)

// AnalyzeStream runs the same pipeline as Analyze but emits progress events
// while it works. The returned channel is closed after the final
// analysis_complete event, which carries the full report.
//
// The pipeline runs to completion even if the consumer stops reading, so
// the trace and message log stay consistent with the sequential path.
// Cancel ctx to release the event pump once the consumer is gone.
func (o *Orchestrator) AnalyzeStream(ctx context.Context, alert incident.Alert) <-chan incident.StreamEvent {
	traceID := uuid.NewString()

	in := make(chan incident.StreamEvent)
	out := make(chan incident.StreamEvent)

	// Events flow through an unbounded queue so a slow consumer never
	// stalls the agents mid-analysis.
	go pump(ctx, in, out)

	emit := func(ev incident.StreamEvent) { in <- ev }
	tracer := trace.NewTracer(emit)

	go func() {
		defer close(in)
		report := o.analyze(ctx, alert, traceID, tracer, emit)
		emit(incident.StreamEvent{
			Type:      incident.EventAnalysisComplete,
			AgentName: "orchestrator",
			Data:      map[string]any{"report": report},
		})
	}()

	return out
}

// pump shuttles events from in to out, buffering as needed. It closes out
// once in is closed and the buffer is drained, or drops the remainder when
// ctx is cancelled.
func pump(ctx context.Context, in <-chan incident.StreamEvent, out chan<- incident.StreamEvent) {
	defer close(out)

	var queue []incident.StreamEvent
	closed := false
	for {
		if closed && len(queue) == 0 {
			return
		}

		var send chan<- incident.StreamEvent
		var head incident.StreamEvent
		if len(queue) > 0 {
			send = out
			head = queue[0]
		}

		if closed {
			select {
			case send <- head:
				queue = queue[1:]
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case ev, ok := <-in:
			if !ok {
				closed = true
				continue
			}
			queue = append(queue, ev)
		case send <- head:
			queue = queue[1:]
		case <-ctx.Done():
			// Keep receiving so the producer never blocks, but stop
			// delivering.
			for range in {
			}
			return
		}
	}
}
