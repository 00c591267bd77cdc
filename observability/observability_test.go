package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{2.0, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.TraceIDRatioBased(0.5).Description()},
	}
	for _, tc := range tests {
		if got := samplerFor(tc.rate).Description(); got != tc.want {
			t.Errorf("samplerFor(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

func TestStartSpan_Noop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanDocumentRequest)
	defer span.End()

	if ctx == nil || span == nil {
		t.Fatal("expected non-nil context and span")
	}
}

func TestNewClientMetrics_Noop(t *testing.T) {
	metrics, err := NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", 200, 100*time.Millisecond)
	metrics.RecordTransportError(ctx, "GET", "connection")
}

func TestClientMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", 404, 10*time.Millisecond)
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "PUT", 0, 5*time.Millisecond)
	metrics.RecordTransportError(ctx, "PUT", "connection")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	if sums[MetricRequestTotal] != 1 {
		t.Errorf("expected 1 completed request, got %d", sums[MetricRequestTotal])
	}
	if sums[MetricRequestActive] != 0 {
		t.Errorf("expected no requests in flight, got %d", sums[MetricRequestActive])
	}
	if sums[MetricTransportErrors] != 1 {
		t.Errorf("expected 1 transport error, got %d", sums[MetricTransportErrors])
	}
}

func TestTracerAndMeter(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("expected non-nil tracer")
	}
	if Meter("test-meter") == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestConfig_Derived(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg.Insecure = true
	tc := cfg.TracerConfig("cradle", "1.2.3", "staging")
	if tc.ServiceName != "cradle" || tc.ServiceVersion != "1.2.3" || tc.Environment != "staging" {
		t.Errorf("unexpected tracer config %+v", tc)
	}
	if !tc.Insecure || tc.SampleRate != 1.0 || tc.Endpoint != "localhost:4318" {
		t.Errorf("unexpected tracer transport %+v", tc)
	}

	mc := cfg.MeterConfig("cradle", "1.2.3", "staging")
	if mc.Interval != 15*time.Second || !mc.Insecure {
		t.Errorf("unexpected meter config %+v", mc)
	}
}
