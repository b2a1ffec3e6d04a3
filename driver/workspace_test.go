package driver

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/rename"
)

func newWorkspace(files map[string]string) *Workspace {
	w := New(rename.Options{})
	for path, text := range files {
		w.Add(path, text)
	}
	return w
}

var lib = map[string]string{
	"src/A.purs": "module A where\na1 = a1\n",
	"src/B.purs": "module B where\nimport A as Q\nb = Q.a1\n",
	"src/C.purs": "module C where\nimport A\nimport B (b)\nc = \\x -> b\n",
}

func TestMemo(t *testing.T) {
	var m memo[int]
	calls := 0
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.get("k", func() (int, error) {
				calls++
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	m.reset()
	_, _ = m.get("k", func() (int, error) { calls++; return 0, nil })
	assert.Equal(t, 2, calls)
}

func TestModules(t *testing.T) {
	w := newWorkspace(lib)
	names, err := w.Modules()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names)

	path, ok := w.File("B")
	require.True(t, ok)
	assert.Equal(t, "src/B.purs", path)
	_, ok = w.File("D")
	assert.False(t, ok)
}

func TestDuplicateModule(t *testing.T) {
	w := newWorkspace(map[string]string{
		"a.purs": "module A where\n",
		"b.purs": "module A where\n",
	})
	_, err := w.Modules()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module A is declared in both a.purs and b.purs")
}

func TestParseMemoized(t *testing.T) {
	w := newWorkspace(lib)
	f1, err := w.Parse("src/A.purs")
	require.NoError(t, err)
	f2, err := w.Parse("src/A.purs")
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = w.Parse("nope.purs")
	assert.EqualError(t, err, "unknown file nope.purs")
}

func TestImportedDecls(t *testing.T) {
	w := newWorkspace(lib)
	decls, err := w.ImportedDecls("C")
	require.NoError(t, err)
	var got []string
	for _, d := range decls {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"C.c", "A.a1", "B.b"}, got)
}

func TestRename(t *testing.T) {
	w := newWorkspace(lib)
	errs, err := w.Rename("C")
	require.NoError(t, err)
	assert.Empty(t, errs)

	im, err := w.Index("C")
	require.NoError(t, err)
	assert.Contains(t, ast.Dump(im.Module), "(value c [] (lam [x] B.b))")

	_, err = w.Rename("Nope")
	assert.EqualError(t, err, "unknown module Nope")
}

func TestRenameAll(t *testing.T) {
	files := map[string]string{
		"src/Bad.purs":    "module Bad where\nx = y\nimport A\n",
		"src/Broken.purs": "modle Broken where\n",
	}
	for k, v := range lib {
		files[k] = v
	}
	var logs bytes.Buffer
	w := newWorkspace(files)
	w.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reports, err := w.RenameAll(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, reports, 5)

	var names []string
	for _, r := range reports[:4] {
		names = append(names, r.Module)
	}
	assert.Equal(t, []string{"A", "B", "Bad", "C"}, names)

	assert.NoError(t, reports[0].Err)
	assert.Contains(t, ast.Dump(reports[1].Result.Module), "(value b [] A.a1)")

	bad := reports[2].Diagnostics()
	require.Len(t, bad, 2)
	assert.Equal(t, "src/Bad.purs:2:5: unresolved name y", bad[0].String())
	assert.Equal(t, "src/Bad.purs:3:1: imports must come before declarations", bad[1].String())

	broken := reports[4]
	assert.Equal(t, "src/Broken.purs", broken.Path)
	assert.Empty(t, broken.Module)
	assert.NotEmpty(t, broken.Diagnostics())

	assert.Contains(t, logs.String(), "renaming workspace")
}

func TestRenameAllCancelled(t *testing.T) {
	w := newWorkspace(lib)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := w.RenameAll(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 3)
	assert.ErrorIs(t, reports[0].Err, context.Canceled)
	assert.Equal(t, "A: context canceled", reports[0].Diagnostics()[0].String())
}

func TestAddResets(t *testing.T) {
	w := newWorkspace(map[string]string{"a.purs": "module A where\nx = y\n"})
	errs, err := w.Rename("A")
	require.NoError(t, err)
	require.Len(t, errs, 1)

	w.Add("a.purs", "module A where\ny = y\n")
	errs, err = w.Rename("A")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"A.purs", "sub/B.purs", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("module X where\n"), 0o644))
	}
	extra := filepath.Join(dir, "notes.txt")

	files, err := CollectFiles([]string{dir, extra})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.purs"), filepath.Join(dir, "sub", "B.purs"), extra}, files)

	_, err = CollectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	w := New(rename.Options{})
	require.NoError(t, w.AddFiles(files[:2]...))
	assert.Len(t, w.Files(), 2)
	assert.Error(t, w.AddFiles(filepath.Join(dir, "missing.purs")))
}
