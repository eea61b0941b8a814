// Package tracing installs an OpenTelemetry tracer provider when
// MARKETPLACE_TRACE is set. Spans go to a JSON file next to the event log;
// otherwise the global no-op provider stays in place and spans cost nothing.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName tags every span.
const ServiceName = "marketplace"

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("MARKETPLACE_TRACE") != "")
}

// Enabled reports whether MARKETPLACE_TRACE was set at startup.
func Enabled() bool {
	return enabled.Load()
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Shutdown flushes and stops the provider installed by Setup.
type Shutdown func(context.Context) error

// Setup writes spans to <dataDir>/traces.jsonl when tracing is enabled.
// The returned Shutdown is always safe to call.
func Setup(dataDir string) (Shutdown, error) {
	if !Enabled() {
		return func(context.Context) error { return nil }, nil
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "traces.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	shutdown, err := Install(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return func(ctx context.Context) error {
		defer f.Close()
		return shutdown(ctx)
	}, nil
}

// Install registers a batching SDK provider exporting to w as the global
// tracer provider.
func Install(w io.Writer) (Shutdown, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// setEnabled overrides the env-derived flag; tests only.
func setEnabled(v bool) {
	enabled.Store(v)
}
