package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	trainingRuns     metric.Int64Counter
	modelActivations metric.Int64Counter
	predictions      metric.Int64Counter
	reports          metric.Int64Counter
	trainingDuration metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "enbase"
	}
	meter := provider.Meter(name)

	trainingRuns, err := meter.Int64Counter("enbase_training_runs_total")
	if err != nil {
		return nil, err
	}
	modelActivations, err := meter.Int64Counter("enbase_model_activations_total")
	if err != nil {
		return nil, err
	}
	predictions, err := meter.Int64Counter("enbase_predictions_total")
	if err != nil {
		return nil, err
	}
	reports, err := meter.Int64Counter("enbase_reports_generated_total")
	if err != nil {
		return nil, err
	}
	trainingDuration, err := meter.Float64Histogram("enbase_training_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		trainingRuns:     trainingRuns,
		modelActivations: modelActivations,
		predictions:      predictions,
		reports:          reports,
		trainingDuration: trainingDuration,
	}, nil
}

// RecordTraining counts a training attempt and its outcome.
func (m *Metrics) RecordTraining(ctx context.Context, energySource, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("energy_source", strings.TrimSpace(energySource)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.trainingRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.trainingDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordActivation counts a model becoming active.
func (m *Metrics) RecordActivation(ctx context.Context, energySource, confidence string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("energy_source", strings.TrimSpace(energySource)),
		attribute.String("confidence", strings.TrimSpace(confidence)),
	)
	m.modelActivations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPrediction counts prediction requests.
func (m *Metrics) RecordPrediction(ctx context.Context, energySource string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("energy_source", strings.TrimSpace(energySource)))
	m.predictions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReport counts generated performance reports by compliance status.
func (m *Metrics) RecordReport(ctx context.Context, energySource, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("energy_source", strings.TrimSpace(energySource)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.reports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"energy_source": {},
	"outcome":       {},
	"confidence":    {},
	"status":        {},
	"job":           {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
