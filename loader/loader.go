// Package loader reads ledger files from disk for batch analysis. It
// can recursively resolve include directives, so a ledger split across
// files is checked as one workspace, the way the editor session sees
// its open documents.
//
// Relative include paths resolve from the directory of the file
// containing the directive, and a file included more than once is
// loaded once.
//
// Example usage:
//
//	// Load a single file, includes left unresolved
//	loader := loader.New()
//	files, err := loader.Load(ctx, "main.beancount")
//
//	// Load the whole workspace
//	loader := loader.New(loader.WithFollowIncludes())
//	files, err := loader.Load(ctx, "main.beancount")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/parser"
)

// File is one loaded and parsed ledger file.
type File struct {
	// Path is the file's path as resolved on disk.
	Path string

	// URI is the file:// form of the absolute path, usable as a
	// document key in the symbol index.
	URI string

	Text []byte
	Tree *ast.SyntaxTree
}

// Loader reads and parses ledger files with optional include
// resolution.
type Loader struct {
	// FollowIncludes determines whether include directives are
	// recursively loaded. When false only the named file is parsed and
	// its include entries stay in the tree untouched.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load every
// included file, depth first, each one exactly once.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the named file and, when configured, everything it
// includes. Files come back in depth-first load order with the root
// first. Syntax problems never fail the load; they surface as error
// entries in the trees. Only unreadable files are errors.
func (l *Loader) Load(ctx context.Context, filename string) ([]*File, error) {
	state := &loaderState{
		follow:  l.FollowIncludes,
		visited: make(map[string]bool),
	}
	if err := state.load(ctx, filename, ""); err != nil {
		return nil, err
	}
	return state.files, nil
}

// loaderState tracks progress through the include graph.
type loaderState struct {
	follow  bool
	visited map[string]bool // absolute paths already loaded
	files   []*File
}

func (l *loaderState) load(ctx context.Context, filename, includedFrom string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", filename, err)
	}

	// A file included twice, or an include cycle, is loaded once.
	if l.visited[absPath] {
		return nil
	}
	l.visited[absPath] = true

	text, err := os.ReadFile(filename)
	if err != nil {
		if includedFrom != "" {
			return fmt.Errorf("in file %s: %w", includedFrom, err)
		}
		return err
	}

	file := &File{
		Path: filename,
		URI:  "file://" + absPath,
		Text: text,
		Tree: parser.Parse(text, filename),
	}
	l.files = append(l.files, file)

	if !l.follow {
		return nil
	}

	baseDir := filepath.Dir(absPath)
	for _, entry := range file.Tree.Entries {
		include, ok := entry.(*ast.Include)
		if !ok {
			continue
		}
		path := include.Filename
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if err := l.load(ctx, path, filename); err != nil {
			return err
		}
	}
	return nil
}
