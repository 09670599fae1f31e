package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ExporterOption configures an OTelExporter
type ExporterOption func(*exporterConfig)

type exporterConfig struct {
	registry *promclient.Registry
}

// WithRegistry exports to reg instead of the default Prometheus registry
func WithRegistry(reg *promclient.Registry) ExporterOption {
	return func(c *exporterConfig) {
		c.registry = reg
	}
}

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	handler       http.Handler

	meter          metric.Meter
	retained       metric.Int64ObservableGauge
	capacity       metric.Int64ObservableGauge
	requests       metric.Int64ObservableCounter
	notifications  metric.Int64ObservableCounter
	events         metric.Int64ObservableCounter
	malformed      metric.Int64ObservableCounter
	mirrorFailures metric.Int64ObservableCounter
	queuePending   metric.Int64ObservableGauge
	queueDropped   metric.Int64ObservableCounter
	mirrorLength   metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector, opts ...ExporterOption) (*OTelExporter, error) {
	cfg := &exporterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var promOpts []prometheus.Option
	handler := promhttp.Handler()
	if cfg.registry != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(cfg.registry))
		handler = promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{})
	}

	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"artemis-inbox",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		handler:       handler,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates all instruments and one callback observing them together
func (oe *OTelExporter) registerInstruments() error {
	var err error

	gauge := func(name, desc, unit string) metric.Int64ObservableGauge {
		if err != nil {
			return nil
		}
		var g metric.Int64ObservableGauge
		g, err = oe.meter.Int64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			err = fmt.Errorf("creating %s: %w", name, err)
		}
		return g
	}
	counter := func(name, desc, unit string) metric.Int64ObservableCounter {
		if err != nil {
			return nil
		}
		var c metric.Int64ObservableCounter
		c, err = oe.meter.Int64ObservableCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			err = fmt.Errorf("creating %s: %w", name, err)
		}
		return c
	}

	oe.retained = gauge("artemis.inbox.retained", "Entries currently held by the retention buffer", "{entries}")
	oe.capacity = gauge("artemis.inbox.capacity", "Retention buffer capacity", "{entries}")
	oe.requests = counter("artemis.inbox.requests", "Callback requests recorded", "{requests}")
	oe.notifications = counter("artemis.inbox.notifications", "Event notifications parsed", "{notifications}")
	oe.events = counter("artemis.inbox.events", "Events parsed from notifications", "{events}")
	oe.malformed = counter("artemis.inbox.malformed", "Bodies that were not valid JSON", "{requests}")
	oe.mirrorFailures = counter("artemis.inbox.mirror.failures", "Entries the mirror failed to store", "{entries}")
	oe.queuePending = gauge("artemis.inbox.queue.pending", "Requests waiting for post-processing", "{requests}")
	oe.queueDropped = counter("artemis.inbox.queue.dropped", "Requests dropped because the queue was full", "{requests}")
	oe.mirrorLength = gauge("artemis.inbox.mirror.length", "Entries held by the Redis mirror", "{entries}")
	if err != nil {
		return err
	}

	_, err = oe.meter.RegisterCallback(oe.observe,
		oe.retained, oe.capacity, oe.requests, oe.notifications, oe.events,
		oe.malformed, oe.mirrorFailures, oe.queuePending, oe.queueDropped, oe.mirrorLength,
	)
	if err != nil {
		return fmt.Errorf("registering callback: %w", err)
	}

	return nil
}

// observe is a callback that reports every instrument from one collection
func (oe *OTelExporter) observe(ctx context.Context, o metric.Observer) error {
	m, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	o.ObserveInt64(oe.retained, m.Inbox.Retained)
	o.ObserveInt64(oe.capacity, m.Inbox.Capacity)
	o.ObserveInt64(oe.requests, m.Inbox.Recorded)
	o.ObserveInt64(oe.notifications, m.Inbox.Notifications)
	o.ObserveInt64(oe.events, m.Inbox.Events)
	o.ObserveInt64(oe.malformed, m.Inbox.Malformed)
	o.ObserveInt64(oe.mirrorFailures, m.Inbox.MirrorFailures)
	o.ObserveInt64(oe.queuePending, m.Queue.Pending)
	o.ObserveInt64(oe.queueDropped, m.Queue.Dropped)
	if m.MirrorLength >= 0 {
		o.ObserveInt64(oe.mirrorLength, m.MirrorLength, metric.WithAttributes(
			attribute.String("mirror.backend", "redis"),
		))
	}

	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return oe.handler
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
