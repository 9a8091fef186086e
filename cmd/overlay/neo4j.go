package main

import (
	"fmt"
	"log/slog"

	"github.com/danielorbach/go-component"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"github.com/go-overlay/go-overlay/export/neo4jexport"
)

func newExportNeo4jCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-neo4j",
		Short: "Replace the graph of a Neo4j database with a resolved snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := a.config.Neo4j

			auth := neo4j.NoAuth()
			if c.User != "" {
				auth = neo4j.BasicAuth(c.User, c.Password, "")
			}
			driver, err := neo4j.NewDriverWithContext(c.URL, auth)
			if err != nil {
				return fmt.Errorf("neo4j driver: %w", err)
			}
			defer func() {
				if err := driver.Close(ctx); err != nil {
					component.Logger(ctx).Warn("Failed to close neo4j driver", slog.Any("error", err))
				}
			}()
			if err := driver.VerifyConnectivity(ctx); err != nil {
				return fmt.Errorf("connect to %s: %w", c.URL, err)
			}

			s, err := a.resolve(ctx)
			if err != nil {
				return err
			}
			if err := neo4jexport.Bootstrap(ctx, driver, c.Database); err != nil {
				return fmt.Errorf("bootstrap database %s: %w", c.Database, err)
			}
			if err := neo4jexport.Write(ctx, driver, c.Database, s); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tanks to %s (%s)\n", s.Len(), c.Database, s.Hash())
			return err
		},
	}
	flags := cmd.Flags()
	flags.String("neo4j-url", "", "Bolt URL of the Neo4j server")
	flags.String("neo4j-user", "", "Neo4j user; empty disables authentication")
	flags.String("neo4j-password", "", "Neo4j password")
	flags.String("database", "", "Neo4j database to export to")
	return cmd
}
