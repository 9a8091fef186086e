package overlay

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/go-overlay/go-overlay")
var meter = otel.Meter("github.com/go-overlay/go-overlay")

// ---- resolve.go ----

var (
	// resolveDuration measures the duration of a single resolution pass, from the
	// raw edit batches to the final Snapshot.
	resolveDuration metric.Float64Histogram
	// resolvedTanks records the number of tanks in each resolved Snapshot.
	resolvedTanks metric.Int64Histogram
)

// ---- warning.go ----

const (
	// warningKindAttr labels each recorded warning with its WarningKind, so the
	// anomalies of a data set can be broken down by the rule they violate.
	warningKindAttr = "warning.kind"
)

// warningsCounter counts the warnings recorded by resolution passes.
var warningsCounter metric.Int64Counter

// ---- reload.go ----

// reloadFailures counts reloads that failed to load or publish a snapshot.
var reloadFailures metric.Int64Counter

func init() {
	var err error
	resolveDuration, err = meter.Float64Histogram(
		"overlay.resolve.duration",
		metric.WithDescription("The duration of a single resolution pass, from raw edit batches to the resolved snapshot."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("overlay: failed to init 'overlay.resolve.duration' instrument")
	}

	resolvedTanks, err = meter.Int64Histogram(
		"overlay.resolve.tanks",
		metric.WithDescription("The number of tanks in each resolved snapshot."),
	)
	if err != nil {
		panic("overlay: failed to init 'overlay.resolve.tanks' instrument")
	}

	warningsCounter, err = meter.Int64Counter(
		"overlay.warnings",
		metric.WithDescription("The number of data anomalies recorded while resolving overlays."),
	)
	if err != nil {
		panic("overlay: failed to init 'overlay.warnings' instrument")
	}

	reloadFailures, err = meter.Int64Counter(
		"overlay.reload.failures",
		metric.WithDescription("The number of reloads that failed to load data files or publish the resolved snapshot."),
	)
	if err != nil {
		panic("overlay: failed to init 'overlay.reload.failures' instrument")
	}
}

// measureResolve records the duration of a resolution pass and the size of the
// snapshot it produced.
//
// We use floating-point division for higher precision than the Milliseconds
// method provides.
func measureResolve(ctx context.Context, tanks int, d time.Duration) {
	resolveDuration.Record(ctx, float64(d)/float64(time.Millisecond))
	resolvedTanks.Record(ctx, int64(tanks))
}

func countWarning(ctx context.Context, kind WarningKind) {
	attrs := attribute.NewSet(attribute.String(warningKindAttr, kind.String()))
	warningsCounter.Add(ctx, 1, metric.WithAttributeSet(attrs))
}
