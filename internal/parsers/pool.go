package parsers

import (
	"context"
	"sync"
	"time"

	"github.com/coderisk/graphindex/internal/ir"
)

// PoolConfig controls the fan-out's concurrency and per-file budget.
type PoolConfig struct {
	Workers        int
	PerFileTimeout time.Duration
}

// DefaultPoolConfig mirrors the teacher's worker-pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Workers: 8, PerFileTimeout: 30 * time.Second}
}

// ParseAll fans filePaths out across cfg.Workers goroutines, each parsing
// one file at a time under a per-file timeout, and returns every result in
// the order workers complete them (unordered across files, same as the
// teacher's channel-collection loop). A parse error on one file never
// aborts the others — the caller inspects each ParseResult.Err and routes
// it into filesFailed per spec §7's ParseError policy.
//
// Every successfully parsed file is written to store immediately and its
// Nodes/Edges are dropped from the returned ParseResult, so the slice
// ParseAll keeps in memory stays proportional to the file count rather than
// to the repository's total IR size — the cross-file resolver reads the IR
// back out of store.
//
// Grounded on internal/ingestion/processor.go's parseFilesParallel/
// parseFileWithTimeout worker-pool pattern, adapted from treesitter's
// CodeEntity output to ir.ParseResult and parameterized by repositoryID.
func ParseAll(ctx context.Context, repositoryID string, filePaths []string, cfg PoolConfig, store *ScratchStore) []ir.ParseResult {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	paths := make(chan string, cfg.Workers)
	results := make(chan ir.ParseResult, cfg.Workers)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				fileCtx, cancel := context.WithTimeout(ctx, cfg.PerFileTimeout)
				result := parseOneWithTimeout(fileCtx, repositoryID, path)
				cancel()
				results <- result

				select {
				case <-ctx.Done():
					return
				default:
				}
			}
		}()
	}

	go func() {
		defer close(paths)
		for _, p := range filePaths {
			select {
			case <-ctx.Done():
				return
			case paths <- p:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]ir.ParseResult, 0, len(filePaths))
	for r := range results {
		if r.Err == nil {
			if err := store.Put(r); err != nil {
				r.Err = err
			} else {
				r.Nodes = nil
				r.Edges = nil
			}
		}
		out = append(out, r)
	}
	return out
}

// parseOneWithTimeout runs ParseFile on its own goroutine so a context
// timeout can be observed even though tree-sitter parsing itself is not
// cancellable mid-call; the timeout bounds wall-clock wait, not CPU work.
func parseOneWithTimeout(ctx context.Context, repositoryID, path string) ir.ParseResult {
	done := make(chan ir.ParseResult, 1)
	go func() {
		done <- ParseFile(repositoryID, path, time.Now().UTC())
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return ir.ParseResult{FilePath: path, Err: ctx.Err()}
	}
}
