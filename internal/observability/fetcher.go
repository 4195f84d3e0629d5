package observability

import (
	"context"
	"time"

	"healthbadge/internal/client"
	"healthbadge/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "healthbadge/client"

// InstrumentedFetcher wraps a client.Fetcher with a span, a latency
// histogram and an error counter per call. Errors pass through unchanged.
type InstrumentedFetcher struct {
	inner    client.Fetcher
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// FetcherOption overrides the providers an InstrumentedFetcher records to.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider records spans to tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) FetcherOption {
	return func(o *fetcherOptions) { o.tracerProvider = tp }
}

// WithMeterProvider records metrics to mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) FetcherOption {
	return func(o *fetcherOptions) { o.meterProvider = mp }
}

// NewInstrumentedFetcher records to the global otel providers unless
// overridden.
func NewInstrumentedFetcher(inner client.Fetcher, opts ...FetcherOption) (*InstrumentedFetcher, error) {
	o := fetcherOptions{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"healthcheck.fetch.duration",
		metric.WithDescription("Duration of health-check fetches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"healthcheck.fetch.errors",
		metric.WithDescription("Number of failed health-check fetches by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedFetcher{
		inner:    inner,
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		duration: duration,
		errors:   errCounter,
	}, nil
}

// FetchHealth calls the wrapped Fetcher inside a client span and records its
// duration and, on failure, the error kind.
func (f *InstrumentedFetcher) FetchHealth(ctx context.Context) (*models.HealthStatus, error) {
	ctx, span := f.tracer.Start(ctx, "healthcheck.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status, err := f.inner.FetchHealth(ctx)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	f.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		kind := string(client.KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		f.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		span.SetAttributes(attribute.String("healthcheck.error.kind", kind))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if status != nil {
		span.SetAttributes(
			attribute.String("healthcheck.environment", status.Environment),
			attribute.String("healthcheck.version", status.Version),
		)
	}
	span.SetStatus(codes.Ok, "")
	return status, nil
}
