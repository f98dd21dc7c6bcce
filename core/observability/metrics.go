package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	queryItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_query_items_total",
			Help: "Total number of processed batch items by outcome code",
		},
		[]string{"code"},
	)

	queryItemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querygate_query_item_duration_seconds",
			Help:    "Batch item processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"code"},
	)

	batchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_batches_total",
			Help: "Total number of processed batches",
		},
		[]string{"outcome"},
	)
)

// CodeSuccess labels items that executed
const CodeSuccess = "OK"

type instruments struct {
	itemsTotal   metric.Int64Counter
	itemDuration metric.Float64Histogram
	batchSize    metric.Int64Histogram
}

var (
	instrumentsOnce sync.Once
	inst            instruments
)

func buildMeterProvider(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled || !cfg.MetricsEnabled {
		return sdkmetric.NewMeterProvider(), nil
	}

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter),
		),
	), nil
}

func initInstruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		inst.itemsTotal, _ = meter.Int64Counter("querygate.query.items_total")
		inst.itemDuration, _ = meter.Float64Histogram("querygate.query.item_duration_ms")
		inst.batchSize, _ = meter.Int64Histogram("querygate.query.batch_size")
	})
}

// RecordItem records the outcome of one batch item. code is CodeSuccess or
// the errno of the failure.
func RecordItem(ctx context.Context, queryName, code string, duration time.Duration) {
	queryItemsTotal.WithLabelValues(code).Inc()
	queryItemDuration.WithLabelValues(code).Observe(duration.Seconds())

	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String(AttrQueryName, queryName),
		attribute.String(AttrErrorCode, code),
	)
	inst.itemsTotal.Add(ctx, 1, attrs)
	inst.itemDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordBatch records one processed batch. failed is true for envelope-level
// failures.
func RecordBatch(ctx context.Context, size int, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	batchesTotal.WithLabelValues(outcome).Inc()

	initInstruments()
	inst.batchSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("outcome", outcome)))
}
