package main

import (
	"context"
	"fmt"

	"github.com/coderisk/graphindex/internal/graphwriter"
	"github.com/coderisk/graphindex/internal/schema"
	"github.com/spf13/cobra"
)

var (
	schemaForce  bool
	schemaResetRepoID string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage graph constraints and indexes",
	Long: `schema applies the constraints, property indexes, and full-text
indexes the graph writer depends on. Run it once before the first index, or
with --force after changing the schema definitions.`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaForce, "force", false, "drop and reapply every constraint and index")
	schemaCmd.Flags().StringVar(&schemaResetRepoID, "reset-repo", "", "delete the named repository's subgraph instead of touching schema")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	backend, err := graphwriter.NewNeo4jBackendWithTimeout(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database, cfg.Graph.QueryTimeout)
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer backend.Close(ctx)

	manager := schema.NewManager(backend)

	if schemaResetRepoID != "" {
		logger.Infof("deleting subgraph for repository %q", schemaResetRepoID)
		return manager.Reset(ctx, schemaResetRepoID)
	}

	if schemaForce {
		logger.Info("dropping and reapplying all constraints and indexes")
		return manager.ForceUpdate(ctx)
	}

	logger.Info("applying constraints and indexes")
	return manager.Apply(ctx)
}
