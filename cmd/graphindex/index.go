package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coderisk/graphindex/internal/graphwriter"
	"github.com/coderisk/graphindex/internal/logging"
	"github.com/coderisk/graphindex/internal/orchestrator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagRepoPath    string
	flagRepoURL     string
	flagRepoID      string
	flagBranch      string
	flagAuthToken   string
	flagForceFull   bool
	flagResetDB     bool
	flagUpdateSchema bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a repository into the graph",
	Long: `index runs one full end-to-end indexing pass: scan, incremental plan,
parse, resolve, write, and analyze. Pass either --repo-path for a local
checkout or --repo-url for a shallow clone.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagRepoPath, "repo-path", "", "local repository path")
	indexCmd.Flags().StringVar(&flagRepoURL, "repo-url", "", "clone-able repository URL")
	indexCmd.Flags().StringVar(&flagRepoID, "repo-id", "", "repository identifier (required)")
	indexCmd.Flags().StringVar(&flagBranch, "branch", "", "branch to clone/checkout")
	indexCmd.Flags().StringVar(&flagAuthToken, "auth-token", "", "token for authenticated clone")
	indexCmd.Flags().BoolVar(&flagForceFull, "force-full-reindex", false, "ignore prior index state and reindex everything")
	indexCmd.Flags().BoolVar(&flagResetDB, "reset-db", false, "delete the repository's existing subgraph before indexing")
	indexCmd.Flags().BoolVar(&flagUpdateSchema, "update-schema", false, "apply constraints/indexes before indexing")

	indexCmd.MarkFlagRequired("repo-id")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	if flagRepoPath == "" && flagRepoURL == "" {
		return fmt.Errorf("one of --repo-path or --repo-url is required")
	}

	cfg.Repository.ID = flagRepoID
	if flagRepoPath != "" {
		cfg.Repository.Path = flagRepoPath
	}
	if flagRepoURL != "" {
		cfg.Repository.URL = flagRepoURL
	}
	if flagBranch != "" {
		cfg.Repository.Branch = flagBranch
	}
	if flagAuthToken != "" {
		cfg.Repository.AuthToken = flagAuthToken
	}
	cfg.Index.ForceFullReindex = cfg.Index.ForceFullReindex || flagForceFull
	cfg.Index.ResetDB = cfg.Index.ResetDB || flagResetDB
	cfg.Index.UpdateSchema = cfg.Index.UpdateSchema || flagUpdateSchema

	backend, err := graphwriter.NewNeo4jBackendWithTimeout(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database, cfg.Graph.QueryTimeout)
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer backend.Close(ctx)

	log, err := logging.NewLogger(logging.DefaultConfig(verbose))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Close()

	o := orchestrator.New(cfg, backend, log)
	result, err := o.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("indexing run failed")
		return err
	}

	logger.WithFields(logrusFields(result)).Infof("indexing run completed in %s", time.Since(start))
	return nil
}

func logrusFields(r *orchestrator.Result) logrus.Fields {
	return logrus.Fields{
		"repository_id":         r.RepositoryID,
		"resumed":               r.Resumed,
		"files_discovered":      r.FilesDiscovered,
		"files_processed":       r.FilesProcessed,
		"files_failed":          len(r.FilesFailed),
		"files_deleted":         r.FilesDeleted,
		"nodes_created":         r.NodesCreated,
		"relationships_created": r.RelationshipsCreated,
		"page_rank_method":      r.PageRankMethod,
	}
}
