package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/chargespot/chargespot/internal/telemetry"

// ProviderMetrics holds metrics for calls to the station directory.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	resultCount     metric.Int64Histogram
}

// NewProviderMetrics creates metrics for monitoring station directory calls.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	resultCount, err := meter.Int64Histogram(
		"provider.result.count",
		metric.WithDescription("Number of stations returned per search"),
		metric.WithUnit("{station}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		resultCount:     resultCount,
	}, nil
}

// RecordRequest records metrics for a provider request.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Background context so a cancelled request still gets counted.
	ctx := context.TODO()
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordResults records how many stations a search returned.
func (m *ProviderMetrics) RecordResults(provider string, count int) {
	m.resultCount.Record(context.TODO(), int64(count),
		metric.WithAttributes(attribute.String("provider.name", provider)))
}

// ReportMetrics holds metrics for PDF report generation.
type ReportMetrics struct {
	exportDuration metric.Float64Histogram
	exportTotal    metric.Int64Counter
	exportStations metric.Int64Histogram
}

// NewReportMetrics creates metrics for monitoring report exports.
func NewReportMetrics() (*ReportMetrics, error) {
	meter := otel.Meter(meterName)

	exportDuration, err := meter.Float64Histogram(
		"report.export.duration",
		metric.WithDescription("Duration of report exports in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	exportTotal, err := meter.Int64Counter(
		"report.export.total",
		metric.WithDescription("Total number of report exports"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	exportStations, err := meter.Int64Histogram(
		"report.export.stations",
		metric.WithDescription("Number of stations per exported report"),
		metric.WithUnit("{station}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		exportDuration: exportDuration,
		exportTotal:    exportTotal,
		exportStations: exportStations,
	}, nil
}

// RecordExport records one export attempt.
func (m *ReportMetrics) RecordExport(stations int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.Bool("error", err != nil)}

	ctx := context.TODO()
	m.exportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.exportTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err == nil {
		m.exportStations.Record(ctx, int64(stations))
	}
}
