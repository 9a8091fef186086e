package neo4jexport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultDatabase is the database every Neo4j server starts with.
const DefaultDatabase = "neo4j"

// Bootstrap prepares the named database for exports: it creates the database
// unless it is DefaultDatabase (which requires the enterprise edition), and the
// uniqueness constraints that back the MATCH clauses of Write.
//
// This function is idempotent.
func Bootstrap(ctx context.Context, d neo4j.DriverWithContext, name string) error {
	if name != DefaultDatabase {
		if err := createDatabase(ctx, d, name); err != nil {
			return fmt.Errorf("create database: %w", err)
		}
	}

	// Schema commands cannot share a transaction with each other, so each runs in
	// its own auto-commit transaction.
	for _, label := range []string{"Tank", "Property", "Snapshot"} {
		property := "key"
		if label == "Snapshot" {
			property = "hash"
		}
		_, err := neo4j.ExecuteQuery(ctx, d, `
			CREATE CONSTRAINT IF NOT EXISTS
			FOR (n:`+label+`)
			REQUIRE n.`+property+` IS UNIQUE
		`, nil, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(name))
		if err != nil {
			return fmt.Errorf("unique constraint: label %v: %w", label, err)
		}
	}
	return nil
}

// ErrReservedName is returned by Bootstrap for database names Neo4j keeps for
// internal use: those that begin with an underscore or with the prefix system.
var ErrReservedName = errors.New("database name is reserved")

func createDatabase(ctx context.Context, d neo4j.DriverWithContext, name string) error {
	if name == "" {
		return errors.New("empty database name")
	}
	if strings.HasPrefix(name, "system") || strings.HasPrefix(name, "_") {
		return fmt.Errorf("%q: %w", name, ErrReservedName)
	}

	s := d.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() { _ = s.Close(ctx) }()

	result, err := s.Run(ctx, `CREATE DATABASE $name IF NOT EXISTS`, map[string]any{
		"name": name,
	})
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}
