package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OtelAPI forwards every report to an inner API and additionally records
// broken/warning reports as counters and ReportCount values as a histogram.
type OtelAPI struct {
	inner   API
	broken  metric.Int64Counter
	warning metric.Int64Counter
	counts  metric.Int64Histogram
}

func NewOtelAPI(provider metric.MeterProvider, inner API) (OtelAPI, error) {
	meter := provider.Meter("orderharvest")

	broken, err := meter.Int64Counter(
		"orderharvest.reports.broken",
		metric.WithDescription("Number of broken component reports."),
	)
	if err != nil {
		return OtelAPI{}, err
	}
	warning, err := meter.Int64Counter(
		"orderharvest.reports.warning",
		metric.WithDescription("Number of warning reports."),
	)
	if err != nil {
		return OtelAPI{}, err
	}
	counts, err := meter.Int64Histogram(
		"orderharvest.reports.count",
		metric.WithDescription("Point-in-time counts reported by components."),
	)
	if err != nil {
		return OtelAPI{}, err
	}

	return OtelAPI{
		inner:   inner,
		broken:  broken,
		warning: warning,
		counts:  counts,
	}, nil
}

func (o OtelAPI) ReportBroken(id string, params ...any) {
	o.broken.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportBroken(id, params...)
}

func (o OtelAPI) ReportWarning(id string, params ...any) {
	o.warning.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportWarning(id, params...)
}

func (o OtelAPI) ReportDebug(msg string, params ...any) {
	o.inner.ReportDebug(msg, params...)
}

func (o OtelAPI) ReportCount(id string, count int64) {
	o.counts.Record(context.Background(), count, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportCount(id, count)
}

// SetupMetrics creates a meter provider that periodically pushes to the given
// OTLP/HTTP endpoint.
func SetupMetrics(ctx context.Context, serviceName, endpoint string, headers map[string]string) (*sdkmetric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(endpoint),
		otlpmetrichttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Second*5))),
		sdkmetric.WithResource(r),
	)
	return provider, nil
}
