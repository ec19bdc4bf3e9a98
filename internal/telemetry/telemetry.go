// Package telemetry records scan metrics with OpenTelemetry and collects
// them in-process for the --benchmark summary.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const meterName = "github.com/gubarz/fnspan"

// Metric names
const (
	FilesScannedName   = "fnspan_files_scanned_total"
	FunctionsFoundName = "fnspan_functions_found_total"
	ViolationsName     = "fnspan_violations_total"
	FunctionLinesName  = "fnspan_function_lines"
	ScanDurationName   = "fnspan_scan_duration_seconds"
)

// AttrExcused marks violations covered by the allow-list
const AttrExcused = "excused"

// Metrics holds the scan instruments and the reader that collects them
type Metrics struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader

	filesScanned   metric.Int64Counter
	functionsFound metric.Int64Counter
	violations     metric.Int64Counter
	functionLines  metric.Int64Histogram
	scanDuration   metric.Float64Histogram
}

// Stats is a point-in-time summary of the collected metrics
type Stats struct {
	FilesScanned    int64
	FunctionsFound  int64
	Violations      int64
	Excused         int64
	LongestFunction int64
	ScanSeconds     float64
}

// New creates an SDK meter provider backed by a manual reader and registers
// it as the global provider.
func New() (*Metrics, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	m := &Metrics{provider: provider, reader: reader}
	if err := m.initInstruments(provider.Meter(meterName)); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initInstruments(meter metric.Meter) error {
	var err error

	m.filesScanned, err = meter.Int64Counter(
		FilesScannedName,
		metric.WithDescription("Total number of source files scanned"),
	)
	if err != nil {
		return fmt.Errorf("failed to create files scanned counter: %w", err)
	}

	m.functionsFound, err = meter.Int64Counter(
		FunctionsFoundName,
		metric.WithDescription("Total number of function spans extracted"),
	)
	if err != nil {
		return fmt.Errorf("failed to create functions found counter: %w", err)
	}

	m.violations, err = meter.Int64Counter(
		ViolationsName,
		metric.WithDescription("Total number of functions over the line threshold"),
	)
	if err != nil {
		return fmt.Errorf("failed to create violations counter: %w", err)
	}

	m.functionLines, err = meter.Int64Histogram(
		FunctionLinesName,
		metric.WithDescription("Line count of extracted functions"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create function lines histogram: %w", err)
	}

	m.scanDuration, err = meter.Float64Histogram(
		ScanDurationName,
		metric.WithDescription("Time spent extracting spans from one file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scan duration histogram: %w", err)
	}

	return nil
}

// RecordFile records one scanned file
func (m *Metrics) RecordFile(ctx context.Context, functions int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.filesScanned.Add(ctx, 1)
	m.functionsFound.Add(ctx, int64(functions))
	m.scanDuration.Record(ctx, elapsed.Seconds())
}

// RecordFunction records the length of one function and whether it is a violation
func (m *Metrics) RecordFunction(ctx context.Context, lines int, violation, excused bool) {
	if m == nil {
		return
	}
	m.functionLines.Record(ctx, int64(lines))
	if violation {
		m.violations.Add(ctx, 1, metric.WithAttributes(attribute.Bool(AttrExcused, excused)))
	}
}

// Snapshot collects the current values
func (m *Metrics) Snapshot(ctx context.Context) (Stats, error) {
	var stats Stats
	if m == nil {
		return stats, nil
	}

	var data metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &data); err != nil {
		return stats, fmt.Errorf("collect metrics: %w", err)
	}

	for _, scope := range data.ScopeMetrics {
		for _, md := range scope.Metrics {
			switch md.Name {
			case FilesScannedName:
				stats.FilesScanned = sumInt64(md.Data)
			case FunctionsFoundName:
				stats.FunctionsFound = sumInt64(md.Data)
			case ViolationsName:
				stats.Violations, stats.Excused = violationCounts(md.Data)
			case FunctionLinesName:
				stats.LongestFunction = maxInt64(md.Data)
			case ScanDurationName:
				if hist, ok := md.Data.(metricdata.Histogram[float64]); ok {
					for _, dp := range hist.DataPoints {
						stats.ScanSeconds += dp.Sum
					}
				}
			}
		}
	}
	return stats, nil
}

// Shutdown flushes and stops the provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

func sumInt64(data metricdata.Aggregation) int64 {
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func violationCounts(data metricdata.Aggregation) (total, excused int64) {
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		return 0, 0
	}
	for _, dp := range sum.DataPoints {
		total += dp.Value
		if v, found := dp.Attributes.Value(attribute.Key(AttrExcused)); found && v.AsBool() {
			excused += dp.Value
		}
	}
	return total, excused
}

func maxInt64(data metricdata.Aggregation) int64 {
	hist, ok := data.(metricdata.Histogram[int64])
	if !ok {
		return 0
	}
	var longest int64
	for _, dp := range hist.DataPoints {
		if v, defined := dp.Max.Value(); defined && v > longest {
			longest = v
		}
	}
	return longest
}
