package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/rbuild/internal/core/ports"
)

// Bridge is a span processor that reports task and command spans to a renderer
// as they start and end. Spans are keyed by their span ID.
type Bridge struct {
	renderer ports.Renderer
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a Bridge reporting to renderer. A nil renderer reports nothing.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// NewProvider returns a tracer provider whose spans are reported to renderer.
func NewProvider(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(renderer)))
}

func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var parentID string
	if p := trace.SpanContextFromContext(parent); p.IsValid() {
		parentID = p.SpanID().String()
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), spanFailure(s))
}

// spanFailure returns nil for a span that did not fail. Otherwise the error
// carries the status description, or the recorded exit code when there is none.
func spanFailure(s sdktrace.ReadOnlySpan) error {
	status := s.Status()
	if status.Code != codes.Error {
		return nil
	}
	if status.Description != "" {
		return errors.New(status.Description)
	}
	for _, kv := range s.Attributes() {
		if kv.Key == attribute.Key("exit_code") && kv.Value.Type() == attribute.INT64 {
			return fmt.Errorf("exited with status %d", kv.Value.AsInt64())
		}
	}
	return errors.New("task failed")
}

func (b *Bridge) ForceFlush(context.Context) error { return nil }

func (b *Bridge) Shutdown(context.Context) error { return nil }
