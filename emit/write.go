package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"go.oastate.dev/oastate/catalog"
)

// Option configures [Run].
type Option func(*config)

type config struct {
	concurrency int
}

// WithConcurrency overrides the number of files written in parallel.
// Defaults to runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

// Run writes cat's entries and plan's builders as a Rust source tree rooted
// at outDir. Each catalog entry's file content is fully rendered before that
// file is written, so the concurrent write phase (bounded by an
// errgroup.Group) never affects emitted bytes, only wall-clock: the graph
// algorithms in document/resolve/catalog stay single-threaded, and only this
// I/O-bound leaf parallelizes.
func Run(cat *catalog.Catalog, plan *Plan, outDir string, opts ...Option) error {
	cfg := &config{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(cfg)
	}
	if outDir == "" {
		return fmt.Errorf("%w: empty output directory", ErrConfig)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	entries := cat.Entries()
	rendered := make([]string, len(entries))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			src, err := renderEntry(e)
			if err != nil {
				return err
			}
			rendered[i] = src
			return writeFile(filepath.Join(append(append([]string{outDir}, e.ModulePath...), catalog.SnakeCase(e.TypeName)+".rs")...), src)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrEmission, err)
	}

	markerSrc, err := renderMarkers(plan.MarkerNames)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(outDir, "generics.rs"), markerSrc); err != nil {
		return fmt.Errorf("%w: %w", ErrEmission, err)
	}

	runtimeModule := commonModulePrefix(entries)
	runtimeImportPath := crateReferencePath(runtimeModule, "")
	runtimeImportPath = strings.TrimSuffix(runtimeImportPath, "::")

	var ops strings.Builder
	fmt.Fprintf(&ops, "use crate::generics::*;\nuse %s::{ApiError, Sendable, apply_query};\n\n", runtimeImportPath)
	for _, b := range plan.Builders {
		src, err := renderBuilder(b)
		if err != nil {
			return err
		}
		ops.WriteString(src)
		ops.WriteString("\n")
	}
	if err := writeFile(filepath.Join(outDir, "operations.rs"), ops.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrEmission, err)
	}

	// mod.rs aggregation happens after every leaf file exists: the tree
	// walk below only reads entries' already-computed module paths, so it's
	// safe to run sequentially as a barrier after the concurrent phase. The
	// client runtime (ApiError/ApiClient/Sendable) is injected into the
	// mod.rs at runtimeModule, the first common prefix of every catalog
	// entry's module path, per the "top-level mod.rs" rule.
	return writeModTree(outDir, entries, runtimeModule)
}

// commonModulePrefix returns the longest module path shared by every entry,
// the directory the client runtime is injected into. Falls back to the
// crate root (nil) if entries is empty or its module paths share no common
// prefix at all.
func commonModulePrefix(entries []*catalog.Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	prefix := append([]string(nil), entries[0].ModulePath...)
	for _, e := range entries[1:] {
		prefix = commonPrefixOf(prefix, e.ModulePath)
		if len(prefix) == 0 {
			return nil
		}
	}
	return prefix
}

func commonPrefixOf(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

type dirNode struct {
	children map[string]*dirNode
	leaves   []string
}

func newDirNode() *dirNode {
	return &dirNode{children: make(map[string]*dirNode)}
}

func writeModTree(outDir string, entries []*catalog.Entry, runtimeModule []string) error {
	root := newDirNode()
	for _, e := range entries {
		node := root
		for _, seg := range e.ModulePath {
			child, ok := node.children[seg]
			if !ok {
				child = newDirNode()
				node.children[seg] = child
			}
			node = child
		}
		node.leaves = append(node.leaves, catalog.SnakeCase(e.TypeName))
	}

	return writeModNode(outDir, root, true, nil, runtimeModule)
}

func writeModNode(dir string, node *dirNode, isRoot bool, currentPath, runtimeModule []string) error {
	childNames := make([]string, 0, len(node.children))
	for name := range node.children {
		childNames = append(childNames, name)
	}
	sort.Strings(childNames)

	leaves := append([]string(nil), node.leaves...)
	sort.Strings(leaves)
	leaves = dedupe(leaves)

	var sb strings.Builder
	if isRoot {
		sb.WriteString("pub mod generics;\npub mod operations;\n")
	}
	for _, name := range childNames {
		fmt.Fprintf(&sb, "pub mod %s {\n    include!(\"./%s/mod.rs\");\n}\n", name, name)
	}
	for _, leaf := range leaves {
		fmt.Fprintf(&sb, "pub mod %s {\n    include!(\"./%s.rs\");\n}\n", leaf, leaf)
	}
	if samePath(currentPath, runtimeModule) {
		sb.WriteString("\n")
		sb.WriteString(renderClientRuntime())
	}

	if err := writeFile(filepath.Join(dir, "mod.rs"), sb.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrEmission, err)
	}

	for _, name := range childNames {
		childPath := append(append([]string(nil), currentPath...), name)
		if err := writeModNode(filepath.Join(dir, name), node.children[name], false, childPath, runtimeModule); err != nil {
			return err
		}
	}
	return nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedupe(ss []string) []string {
	out := ss[:0]
	var prev string
	for i, s := range ss {
		if i > 0 && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
	}
	return out
}
