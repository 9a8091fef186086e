package neo4jexport

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/go-overlay/go-overlay/export/neo4jexport")
var meter = otel.Meter("github.com/go-overlay/go-overlay/export/neo4jexport")

// exportDuration measures how long it takes to replace the exported graph with
// a snapshot, labelled by database and outcome.
var exportDuration metric.Float64Histogram

func init() {
	var err error
	exportDuration, err = meter.Float64Histogram(
		"overlay.export.neo4j.duration",
		metric.WithDescription("The duration of a single export of a resolved snapshot to Neo4j."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		s := fmt.Sprintf("neo4jexport: failed to init 'overlay.export.neo4j.duration' instrument: %v", err)
		panic(s)
	}
}

func measureExport(ctx context.Context, database string, ok bool, d time.Duration) {
	attrs := attribute.NewSet(
		attribute.String("neo4j.database", database),
		attribute.Bool("export.ok", ok),
	)
	exportDuration.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributeSet(attrs))
}
