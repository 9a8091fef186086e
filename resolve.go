package overlay

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielorbach/go-component"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Input holds the raw edit batches of one load: the classification batches and
// the property batches, in any order.
type Input struct {
	Classifications []ClassificationBatch
	Properties      []PropertyBatch
}

// Resolve merges all edit batches into per-tank timelines, resolves property
// inheritance, and collapses the result into the Snapshot valid at the target
// game version.
//
// Resolve never fails: anomalies in the data are recorded as warnings on the
// returned Snapshot and the offending records are dropped. The absence of
// warnings does not imply completeness; check the Snapshot is not empty.
//
// Resolve holds no state of its own. Concurrent calls are independent as long
// as they do not share the edit batches being resolved with a writer.
func Resolve(ctx context.Context, in Input, target int) *Snapshot {
	ctx, span := tracer.Start(ctx, "overlay.Resolve", trace.WithAttributes(
		attribute.Int("game.version", target),
		attribute.Int("batches.classification", len(in.Classifications)),
		attribute.Int("batches.property", len(in.Properties)),
	))
	defer span.End()

	logger := component.Logger(ctx).With(slog.Int("game-version", target))
	start := time.Now()

	var ws Warnings
	logger.Debug("Accumulating classification overlays...", slog.Int("batches", len(in.Classifications)))
	timelines := AccumulateClassifications(ctx, in.Classifications, &ws)

	logger.Debug("Accumulating property overlays...", slog.Int("batches", len(in.Properties)))
	graph := AccumulateProperties(ctx, in.Properties, &ws)

	logger.Debug("Resolving property inheritance...")
	graph.Resolve(ctx, &ws)

	s := project(ctx, target, timelines, graph, &ws)
	measureResolve(ctx, s.Len(), time.Since(start))
	span.SetAttributes(attribute.Int("snapshot.tanks", s.Len()), attribute.Int("snapshot.warnings", ws.Len()))

	logger.Info("Resolved snapshot",
		slog.Int("tanks", s.Len()),
		slog.Int("properties", len(s.properties)),
		slog.Int("warnings", ws.Len()),
		slog.Any("hash", s.Hash()),
	)
	return s
}
