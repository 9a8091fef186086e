package neo4jexport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielorbach/go-component"
	"github.com/go-overlay/go-overlay"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Write replaces the graph exported to the named database with s. The database
// must have been prepared with Bootstrap.
func Write(ctx context.Context, d neo4j.DriverWithContext, database string, s *overlay.Snapshot) (err error) {
	ctx, span := tracer.Start(ctx, "neo4jexport.Write", trace.WithAttributes(
		attribute.String("neo4j.database", database),
		attribute.Stringer("snapshot.hash", s.Hash()),
	))
	defer span.End()

	defer func(start time.Time) {
		measureExport(ctx, database, err == nil, time.Since(start))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}(time.Now())

	logger := component.Logger(ctx).With("neo4j.database", database)
	params := newGraphParams(s)

	session := d.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer func() {
		if err := session.Close(ctx); err != nil {
			logger.Error("Failed to close export write session", "error", err)
		}
	}()

	logger.Debug("Exporting snapshot...", slog.Any("hash", s.Hash()), slog.Int("tanks", s.Len()))
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, step := range exportSteps {
			result, err := tx.Run(ctx, step.query, params)
			if err != nil {
				return nil, fmt.Errorf("%s: run cypher: %w", step.name, err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("%s: consume: %w", step.name, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	logger.Info("Exported snapshot", slog.Any("hash", s.Hash()))
	return nil
}

// exportSteps replace the exported graph, in order. All steps share the
// parameters built by newGraphParams.
var exportSteps = []struct {
	name  string
	query string
}{
	{"clear", `
		MATCH (n)
		WHERE n:Snapshot OR n:Tank OR n:Property
		DETACH DELETE n
	`},
	{"snapshot", `
		CREATE (:Snapshot {version: $version, hash: $hash, warnings: $warnings, _exported_at: datetime()})
	`},
	{"tanks", `
		UNWIND $tanks AS t
		CREATE (:Tank {key: t.key, country: t.country, tier: t.tier, class: t.class, category: t.category, image: t.image})
	`},
	{"properties", `
		UNWIND $properties AS p
		CREATE (n:Property {key: p.key})
		SET n += p.descriptions
	`},
	{"inheritance", `
		UNWIND $inherits AS i
		MATCH (child:Property {key: i.child}), (parent:Property {key: i.parent})
		CREATE (child)-[:INHERITS]->(parent)
	`},
	{"values", `
		UNWIND $values AS v
		MATCH (t:Tank {key: v.tank}), (p:Property {key: v.property})
		CREATE (t)-[:HAS {value: v.value}]->(p)
	`},
}

// newGraphParams flattens a snapshot into the query parameters of
// exportSteps. Neo4j properties cannot hold maps, so descriptions become
// "description.<lang>" properties.
func newGraphParams(s *overlay.Snapshot) map[string]any {
	hash, _ := s.Hash().MarshalText()
	warnings := make([]any, 0)
	for _, w := range s.Warnings() {
		warnings = append(warnings, w.String())
	}

	tanks := make([]any, 0, s.Len())
	values := make([]any, 0)
	for _, t := range s.Tanks() {
		tanks = append(tanks, map[string]any{
			"key":      t.Key,
			"country":  t.Country,
			"tier":     int64(t.Tier),
			"class":    string(t.Class),
			"category": string(t.Category),
			"image":    t.ImageName,
		})
		for k, v := range t.Properties {
			values = append(values, map[string]any{
				"tank":     t.Key,
				"property": k.String(),
				"value":    v,
			})
		}
	}

	properties := make([]any, 0)
	inherits := make([]any, 0)
	for _, p := range s.Properties() {
		descriptions := make(map[string]any, len(p.Descriptions))
		for lang, text := range p.Descriptions {
			descriptions["description."+lang] = text
		}
		properties = append(properties, map[string]any{
			"key":          p.Key.String(),
			"descriptions": descriptions,
		})
		if p.InheritsFrom != nil {
			inherits = append(inherits, map[string]any{
				"child":  p.Key.String(),
				"parent": p.InheritsFrom.String(),
			})
		}
	}

	return map[string]any{
		"version":    int64(s.Version()),
		"hash":       string(hash),
		"warnings":   warnings,
		"tanks":      tanks,
		"values":     values,
		"properties": properties,
		"inherits":   inherits,
	}
}
