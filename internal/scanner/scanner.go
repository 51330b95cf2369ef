// Package scanner implements the file scanner (C2): it walks a repository,
// applies the configured include-extensions and ignore-globs, and returns
// a content-addressed record per candidate file. It is grounded on
// internal/ingestion/walker.go's WalkSourceFiles/shouldSkipDir/isSupportedFile,
// generalized from a hardcoded JS/TS/Python allow-list to a configurable
// extension set and doublestar glob patterns.
package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/coderisk/graphindex/internal/ir"
)

// Config controls which files the scanner yields.
type Config struct {
	SupportedExtensions []string
	IgnorePatterns      []string
	FollowSymlinks      bool
}

// Scanner walks a repository root and enumerates candidate source files.
// It MUST NOT open the database — per spec §4.1 the scanner is a pure
// filesystem operation.
type Scanner struct {
	cfg        Config
	extSet     map[string]struct{}
	rootAbs    string
}

// New builds a Scanner for the given root directory.
func New(rootPath string, cfg Config) (*Scanner, error) {
	rootAbs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	extSet := make(map[string]struct{}, len(cfg.SupportedExtensions))
	for _, e := range cfg.SupportedExtensions {
		extSet[e] = struct{}{}
	}

	return &Scanner{cfg: cfg, extSet: extSet, rootAbs: rootAbs}, nil
}

// Scan walks the repository and returns a FileRecord for every included
// file, each carrying its content hash. Symlinks are only followed when
// they resolve inside the repository root.
func (s *Scanner) Scan(ctx context.Context) ([]ir.FileRecord, error) {
	var records []ir.FileRecord

	err := filepath.WalkDir(s.rootAbs, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(s.rootAbs, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && s.matchesIgnore(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			if !s.cfg.FollowSymlinks || !s.resolvesInsideRoot(path) {
				return nil
			}
		}

		if !s.isSupported(path) || s.matchesIgnore(rel) {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			// Unreadable file (permissions, dangling symlink) — skip, not fatal.
			return nil
		}

		records = append(records, ir.FileRecord{
			Path:        path,
			Size:        info.Size(),
			ContentHash: ir.ContentHash(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Scanner) isSupported(path string) bool {
	ext := filepath.Ext(path)
	_, ok := s.extSet[ext]
	return ok
}

func (s *Scanner) matchesIgnore(relPath string) bool {
	for _, pattern := range s.cfg.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) resolvesInsideRoot(path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.rootAbs, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}
