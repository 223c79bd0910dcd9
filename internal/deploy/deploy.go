package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("internal/deploy")
var meter = otel.Meter("internal/deploy")
var rowsDeployed, _ = meter.Int64Counter("deploy.rows")

func metricTarget(t OutputType) metric.AddOption {
	return metric.WithAttributes(attribute.String("target", string(t)))
}

// Report describes what a sink wrote.
type Report struct {
	Target   OutputType
	Location string
	Pages    int
	Rows     int
	// files or objects written, summary included
	Files int
}

type Sink interface {
	Name() OutputType
	Write(ctx context.Context, bundle Bundle) (Report, error)
}

// Run writes the bundle to the given sink and nowhere else.
func Run(ctx context.Context, sink Sink, bundle Bundle) (Report, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("deploy:%s", sink.Name()))
	defer span.End()

	report, err := sink.Write(ctx, bundle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sink write failed")
		return report, fmt.Errorf("deploy to %s: %w", sink.Name(), err)
	}
	report.Target = sink.Name()

	rowsDeployed.Add(ctx, int64(report.Rows), metricTarget(sink.Name()))
	span.SetAttributes(
		attribute.String("location", report.Location),
		attribute.Int("pages", report.Pages),
		attribute.Int("rows", report.Rows),
	)
	slog.InfoContext(
		ctx, "deployed dataset",
		"target", sink.Name(),
		"location", report.Location,
		"pages", report.Pages,
		"rows", report.Rows,
	)
	return report, nil
}
