// Package observability exports ledger metrics through OpenTelemetry.
package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"typerbot/config"
	"typerbot/events"
	"typerbot/models"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the ledger
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// reader overrides the configured exporter, for tests
	reader sdkmetric.Reader

	betsPlacedCounter     metric.Int64Counter
	stakedPointsCounter   metric.Int64Counter
	betsSettledCounter    metric.Int64Counter
	creditedPointsCounter metric.Int64Counter
	pointsAwardedCounter  metric.Int64Counter
	promotionsCounter     metric.Int64Counter
	sweepsCounter         metric.Int64Counter
	sweepFailuresCounter  metric.Int64Counter
	sweepDurationHist     metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates an enabled provider that reports to reader
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled && mp.reader == nil {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		exporter, err := mp.newExporter(ctx)
		if err != nil {
			return err
		}
		if exporter == nil {
			mp.initialized = true
			return nil
		}
		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	if mp.reader == nil {
		otel.SetMeterProvider(mp.meterProvider)
	}

	mp.meter = mp.meterProvider.Meter("typerbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// newExporter returns nil with no error when export is switched off
func (mp *MetricsProvider) newExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return exporter, nil

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return exporter, nil

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil
	}

	return nil, fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.betsPlacedCounter, BetsPlacedTotal, "Total number of bets placed"},
		{&mp.stakedPointsCounter, StakedPoints, "Total points staked on bets"},
		{&mp.betsSettledCounter, BetsSettledTotal, "Total number of bets settled"},
		{&mp.creditedPointsCounter, CreditedPoints, "Total points credited by settlement"},
		{&mp.pointsAwardedCounter, PointsAwardedTotal, "Total activity points awarded"},
		{&mp.promotionsCounter, PromotionsTotal, "Total number of rank promotions"},
		{&mp.sweepsCounter, SweepsTotal, "Total number of settlement sweeps"},
		{&mp.sweepFailuresCounter, SweepFailuresTotal, "Total number of bets a sweep failed to check or settle"},
	}

	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(
			c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	mp.sweepDurationHist, err = mp.meter.Float64Histogram(
		SweepDuration,
		metric.WithDescription("Duration of settlement sweeps in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Register subscribes the provider to ledger events
func (mp *MetricsProvider) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, mp.HandleEvent)
	bus.Subscribe(events.EventTypeBetSettled, mp.HandleEvent)
	bus.Subscribe(events.EventTypePointsAwarded, mp.HandleEvent)
	bus.Subscribe(events.EventTypePromotion, mp.HandleEvent)
}

// HandleEvent records a committed ledger event
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	switch e := event.(type) {
	case events.BetPlacedEvent:
		mp.betsPlacedCounter.Add(ctx, 1)
		mp.stakedPointsCounter.Add(ctx, e.Stake)

	case events.BetSettledEvent:
		attrs := metric.WithAttributes(attribute.String(LabelState, string(e.State)))
		mp.betsSettledCounter.Add(ctx, 1, attrs)
		mp.creditedPointsCounter.Add(ctx, e.Credited, attrs)

	case events.PointsAwardedEvent:
		mp.pointsAwardedCounter.Add(ctx, e.Amount,
			metric.WithAttributes(attribute.String(LabelSource, e.Source)),
		)

	case events.PromotionEvent:
		mp.promotionsCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelRank, e.NewTier.Name)),
		)
	}
}

// RecordSweep records the outcome of one settlement sweep
func (mp *MetricsProvider) RecordSweep(result *models.SweepResult) {
	if !mp.isEnabled() || result == nil {
		return
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String(LabelAborted, strconv.FormatBool(result.Aborted)))

	mp.sweepsCounter.Add(ctx, 1, attrs)
	mp.sweepDurationHist.Record(ctx, result.Duration.Seconds(), attrs)
	if result.Failed > 0 {
		mp.sweepFailuresCounter.Add(ctx, int64(result.Failed))
	}
}

// isEnabled reports whether instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}
