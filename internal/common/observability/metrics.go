package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Flow names recorded by the feature services.
const (
	FlowLogin          = "login"
	FlowRegister       = "register"
	FlowRestore        = "restore"
	FlowReportGenerate = "report_generate"
	FlowUpload         = "upload"
	FlowTemplateSave   = "template_save"
	FlowBillingLoad    = "billing_load"
	FlowSubscribe      = "subscribe"
	FlowPurchase       = "purchase"
)

// Observability records user-flow outcomes through OpenTelemetry metrics,
// exported in Prometheus format.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	flowCounter   otelmetric.Int64Counter
	flowDuration  otelmetric.Float64Histogram
}

// New builds a meter provider backed by the Prometheus exporter. On exporter
// failure the returned value records nothing.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

// NewWithReader is used by tests to read recorded values back.
func NewWithReader(reader metric.Reader, serviceName string) *Observability {
	return newWithProvider(metric.NewMeterProvider(metric.WithReader(reader)), serviceName)
}

// Noop returns an Observability that records nothing.
func Noop() *Observability {
	return &Observability{}
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	flowCounter, _ := meter.Int64Counter(
		"flows.completed",
		otelmetric.WithDescription("Number of user flows completed by outcome"),
	)

	flowDuration, _ := meter.Float64Histogram(
		"flows.duration",
		otelmetric.WithDescription("User flow duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		flowCounter:   flowCounter,
		flowDuration:  flowDuration,
	}
}

func (o *Observability) RecordFlow(ctx context.Context, flow, status string) {
	if o == nil || o.flowCounter == nil {
		return
	}
	o.flowCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordFlowDuration(ctx context.Context, flow string, duration time.Duration, status string) {
	if o == nil || o.flowDuration == nil {
		return
	}
	o.flowDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("status", status),
	))
}

// Track records both the outcome and the duration of a flow that started at start.
func (o *Observability) Track(ctx context.Context, flow string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	o.RecordFlow(ctx, flow, status)
	o.RecordFlowDuration(ctx, flow, time.Since(start), status)
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
