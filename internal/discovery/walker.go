// Package discovery finds the source files fnspan scans.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is one discovered file and its contents
type SourceFile struct {
	Path    string // Path as reachable from the working directory
	RelPath string // Slash-separated path relative to the scan root
	Text    string
}

// Options configures a Walker
type Options struct {
	Extensions       []string
	SkipDirs         []string
	RespectGitignore bool
	MaxFileBytes     int64
	Logger           *slog.Logger
}

// Walker discovers source files below one or more roots
type Walker struct {
	extensions map[string]bool
	skipDirs   map[string]bool
	gitignore  bool
	maxBytes   int64
	logger     *slog.Logger
}

// NewWalker creates a walker from options
func NewWalker(opts Options) *Walker {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, dir := range opts.SkipDirs {
		skip[dir] = true
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &Walker{
		extensions: exts,
		skipDirs:   skip,
		gitignore:  opts.RespectGitignore,
		maxBytes:   opts.MaxFileBytes,
		logger:     logger,
	}
}

// WalkAll walks every root and merges the results, dropping duplicates
func (w *Walker) WalkAll(ctx context.Context, roots []string) ([]SourceFile, error) {
	seen := make(map[string]bool)
	var all []SourceFile
	for _, root := range roots {
		files, err := w.Walk(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			key := filepath.Clean(f.Path)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, f)
		}
	}
	return all, nil
}

// Walk returns the source files under root sorted by relative path. A root
// naming a single file is returned on its own whatever its extension.
func (w *Walker) Walk(ctx context.Context, root string) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path error: %w", err)
	}

	if !info.IsDir() {
		f, ok, err := w.readFile(root, filepath.ToSlash(filepath.Clean(root)), info.Size())
		if err != nil || !ok {
			return nil, err
		}
		return []SourceFile{f}, nil
	}

	var ignore *Gitignore
	if w.gitignore {
		ignore, err = LoadGitignore(root)
		if err != nil {
			return nil, fmt.Errorf("loading .gitignore: %w", err)
		}
		w.logger.Debug("loaded gitignore", slog.String("root", root), slog.Int("patterns", ignore.Len()))
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if w.skipDirs[d.Name()] || ignore.Match(rel, true) {
				w.logger.Debug("skipping directory", slog.String("path", rel))
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !w.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if ignore.Match(rel, false) {
			w.logger.Debug("skipping ignored file", slog.String("path", rel))
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		f, ok, err := w.readFile(path, rel, info.Size())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, nil
}

// readFile loads one file, skipping oversized and binary content
func (w *Walker) readFile(path, rel string, size int64) (SourceFile, bool, error) {
	if w.maxBytes > 0 && size > w.maxBytes {
		w.logger.Warn("skipping large file",
			slog.String("path", rel),
			slog.Int64("bytes", size),
			slog.Int64("limit", w.maxBytes))
		return SourceFile{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if looksBinary(data) {
		w.logger.Warn("skipping binary file", slog.String("path", rel))
		return SourceFile{}, false, nil
	}
	return SourceFile{Path: path, RelPath: rel, Text: string(data)}, true, nil
}

// looksBinary treats a NUL byte in the first 8KiB as binary content
func looksBinary(data []byte) bool {
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	return bytes.IndexByte(sample, 0) >= 0
}
