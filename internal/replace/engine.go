// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package replace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Modes.
const (
	ModeLiteral = "literal"
	ModeRegex   = "regex"
)

// sniffLen is how much of a file is inspected for binary content.
const sniffLen = 8192

var (
	ErrEmptySearch = errors.Base("search text is empty")
	ErrNotDir      = errors.Base("repository path is not a directory")
	ErrUnknownMode = errors.Base("unknown replace mode")
)

// Options configure an Engine.
type Options struct {
	Include     []string // doublestar globs relative to the root; empty means all files
	Exclude     []string
	Workers     int
	MaxFileSize int64 // files larger than this are skipped; 0 disables the limit
}

// Request describes one replace run.
type Request struct {
	Root    string
	Search  string
	Replace string
	Mode    string // ModeLiteral (default) or ModeRegex
}

// FileChange records the replacements made in one file.
type FileChange struct {
	Path         string `json:"path"` // relative to the root, slash separated
	Replacements int    `json:"replacements"`
}

// Result summarizes a replace run.
type Result struct {
	FilesScanned int          `json:"files_scanned"`
	FilesSkipped int          `json:"files_skipped"`
	FilesChanged int          `json:"files_changed"`
	Replacements int          `json:"replacements"`
	Changed      []FileChange `json:"changed"`
}

// Engine performs search and replace in-process.
type Engine struct {
	opts Options
}

// NewEngine creates an engine.
func NewEngine(opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{opts: opts}
}

// matcher rewrites file content and reports how many matches it replaced.
type matcher func(data []byte) ([]byte, int)

func newMatcher(req Request) (matcher, error) {
	if req.Search == "" {
		return nil, errors.WithStack(ErrEmptySearch)
	}

	switch req.Mode {
	case "", ModeLiteral:
		search := []byte(req.Search)
		replacement := []byte(req.Replace)
		return func(data []byte) ([]byte, int) {
			n := bytes.Count(data, search)
			if n == 0 {
				return data, 0
			}
			return bytes.ReplaceAll(data, search, replacement), n
		}, nil

	case ModeRegex:
		re, err := regexp.Compile(req.Search)
		if err != nil {
			return nil, errors.Errorf("compile pattern: %w", err)
		}
		replacement := []byte(req.Replace)
		return func(data []byte) ([]byte, int) {
			n := len(re.FindAllIndex(data, -1))
			if n == 0 {
				return data, 0
			}
			return re.ReplaceAll(data, replacement), n
		}, nil

	default:
		return nil, errors.WithDetails(ErrUnknownMode, "mode", req.Mode)
	}
}

// Run applies req to every eligible file below req.Root. Progress lines
// are written to out when it is non-nil.
func (e *Engine) Run(ctx context.Context, req Request, out io.Writer) (*Result, error) {
	match, err := newMatcher(req)
	if err != nil {
		return nil, err
	}

	// WalkDir does not descend through a symlinked root.
	root, err := filepath.EvalSymlinks(req.Root)
	if err != nil {
		return nil, errors.Errorf("resolve repository: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("stat repository: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.WithDetails(ErrNotDir, "path", req.Root)
	}

	files, skipped, err := e.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	result := &Result{FilesSkipped: skipped}
	var mu sync.Mutex
	report := func(format string, args ...interface{}) {
		if out != nil {
			fmt.Fprintf(out, format+"\n", args...)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, binary, err := e.processFile(filepath.Join(root, filepath.FromSlash(rel)), match)
			if err != nil {
				return errors.Errorf("%s: %w", rel, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if binary {
				result.FilesSkipped++
				return nil
			}
			result.FilesScanned++
			if n > 0 {
				result.FilesChanged++
				result.Replacements += n
				result.Changed = append(result.Changed, FileChange{Path: rel, Replacements: n})
				report("%s: %d replacement(s)", rel, n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Changed, func(i, j int) bool {
		return result.Changed[i].Path < result.Changed[j].Path
	})

	log.Info().
		Str("root", req.Root).
		Int("scanned", result.FilesScanned).
		Int("changed", result.FilesChanged).
		Int("replacements", result.Replacements).
		Msg("replace finished")
	report("Scanned %d file(s), changed %d, %d replacement(s).", result.FilesScanned, result.FilesChanged, result.Replacements)

	return result, nil
}

// collect lists regular files under root, relative and slash separated,
// that pass the include, exclude and size filters.
func (e *Engine) collect(ctx context.Context, root string) ([]string, int, error) {
	var files []string
	skipped := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !e.selected(rel) {
			skipped++
			return nil
		}
		if e.opts.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if info.Size() > e.opts.MaxFileSize {
				skipped++
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, 0, errors.Errorf("walk repository: %w", err)
	}
	return files, skipped, nil
}

func (e *Engine) selected(rel string) bool {
	if len(e.opts.Include) > 0 && !matchAny(e.opts.Include, rel) {
		return false
	}
	return !matchAny(e.opts.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// processFile rewrites one file in place. It reports the number of
// replacements and whether the file was skipped as binary.
func (e *Engine) processFile(path string, match matcher) (int, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, errors.WithStack(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, errors.WithStack(err)
	}
	if IsBinary(data) {
		return 0, true, nil
	}

	updated, n := match(data)
	if n == 0 || bytes.Equal(updated, data) {
		return n, false, nil
	}

	if err := writeFileAtomic(path, updated, info.Mode().Perm()); err != nil {
		return 0, false, err
	}
	return n, false, nil
}

// IsBinary reports whether data looks like a non-text file.
func IsBinary(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if len(head) == 0 {
		return false
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	// Several signatures (BM, MZ, ID3, %PDF) are printable ASCII, so a
	// match only counts when the head is not UTF-8 text.
	if validUTF8Prefix(head, len(data) > len(head)) {
		return false
	}
	kind, err := filetype.Match(head)
	return err == nil && kind != filetype.Unknown
}

// validUTF8Prefix reports whether head is valid UTF-8. A truncated head
// may end partway through a rune, which is allowed.
func validUTF8Prefix(head []byte, truncated bool) bool {
	if utf8.Valid(head) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(head); i++ {
		if utf8.RuneStart(head[len(head)-i]) {
			return utf8.Valid(head[:len(head)-i])
		}
	}
	return false
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".repoedit-*")
	if err != nil {
		return errors.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Errorf("replace file: %w", err)
	}
	return nil
}
