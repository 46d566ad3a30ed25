package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "dentflow"

// InitTracing installs the global tracer provider for exporter. With "none" or an empty
// value spans stay no-ops. The returned func flushes and stops the provider.
func InitTracing(exporter string, out io.Writer) (func(context.Context) error, error) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "stdout":
		if out == nil {
			out = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		)
		otel.SetTracerProvider(tp)
		GetLogger().Info("tracing enabled", zap.String("exporter", "stdout"))
		return tp.Shutdown, nil
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", exporter)
	}
}
