package emit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.oastate.dev/oastate/catalog"
	"go.oastate.dev/oastate/document"
	"go.oastate.dev/oastate/emit"
	"go.oastate.dev/oastate/resolve"
)

func TestRun_WritesFileTree(t *testing.T) {
	doc, err := document.Load[document.NoExtensions](strings.NewReader(widgetDoc))
	require.NoError(t, err)
	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)
	cat, _, err := catalog.Synthesize(resolved)
	require.NoError(t, err)
	plan, _ := emit.BuildPlan(resolved, cat)

	outDir := t.TempDir()
	require.NoError(t, emit.Run(cat, plan, outDir, emit.WithConcurrency(2)))

	widgetFile := filepath.Join(outDir, "io", "example", "v1", "widget.rs")
	content, err := os.ReadFile(widgetFile)
	require.NoError(t, err)
	require.Contains(t, string(content), "pub struct Widget")
	require.Contains(t, string(content), `#[serde(rename = "name"`)

	rootMod, err := os.ReadFile(filepath.Join(outDir, "mod.rs"))
	require.NoError(t, err)
	require.Contains(t, string(rootMod), "pub mod io {")
	require.Contains(t, string(rootMod), "pub mod generics;")
	require.Contains(t, string(rootMod), "pub mod operations;")

	ops, err := os.ReadFile(filepath.Join(outDir, "operations.rs"))
	require.NoError(t, err)
	require.Contains(t, string(ops), "WidgetGetBuilder")
}

func TestRun_RejectsEmptyOutDir(t *testing.T) {
	doc, err := document.Load[document.NoExtensions](strings.NewReader(widgetDoc))
	require.NoError(t, err)
	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)
	cat, _, err := catalog.Synthesize(resolved)
	require.NoError(t, err)
	plan, _ := emit.BuildPlan(resolved, cat)

	err = emit.Run(cat, plan, "")
	require.ErrorIs(t, err, emit.ErrConfig)
}
