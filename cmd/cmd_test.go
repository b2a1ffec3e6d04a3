package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/config"
	"github.com/zyla/purr/parser"
	"github.com/zyla/purr/rename"
)

// run executes the CLI in a scratch directory and returns stdout, stderr
// and the action error.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	var out, errOut bytes.Buffer
	app := New("test")
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"purr", "--color", "never"}, args...))
	return out.String(), errOut.String(), err
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"M.purs": "module M where\nf x = x\n"})
	out, _, err := run(t, dir, "parse", "M.purs")
	require.NoError(t, err)
	assert.Equal(t, "module M\n  (value f [x] x)\n", out)
}

func TestParseCommandErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"M.purs": "module M where\nf = )\ng = 1\n"})
	out, errOut, err := run(t, dir, "parse", "M.purs")
	require.Error(t, err)
	assert.Equal(t, "1 error", err.Error())
	assert.Contains(t, out, "(value g [] 1)")
	assert.Regexp(t, `^M\.purs:2:\d+: error: `, errOut)

	_, _, err = run(t, dir, "parse")
	assert.EqualError(t, err, "usage: purr parse <file.purs>")
	_, _, err = run(t, dir, "parse", "missing.purs")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTokensCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"M.purs": "module M where\n"})
	out, _, err := run(t, dir, "tokens", "M.purs")
	require.NoError(t, err)
	assert.Contains(t, out, "1:1\tmodule\n1:8\tidentifier \"M\"\n")
}

func TestDocCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"M.purs": "module M where\n-- | Identity.\nid x = x\n"})
	out, _, err := run(t, dir, "doc", "M.purs")
	require.NoError(t, err)
	assert.Equal(t, "module M\n\nid x = x\n    Identity.\n", out)

	out, _, err = run(t, dir, "doc", "M.purs", "id")
	require.NoError(t, err)
	assert.Equal(t, "id x = x\n    Identity.\n", out)

	_, _, err = run(t, dir, "doc", "M.purs", "nope")
	assert.EqualError(t, err, "M.purs: no declaration named nope")
}

func TestExprAndTypeCommands(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "expr", "f", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "(app f x y)\n", out)

	out, _, err = run(t, dir, "type", "A -> B -> C")
	require.NoError(t, err)
	assert.Equal(t, "(-> A (-> B C))\n", out)

	_, errOut, err := run(t, dir, "expr", "f (")
	require.Error(t, err)
	assert.Contains(t, errOut, "<input>:1:")
}

var project = map[string]string{
	"src/A.purs": "module A where\na1 = \\x -> \\y -> x\n",
	"src/B.purs": "module B where\nimport A as Q\nb = Q.a1\n",
}

func TestRenameCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, project)

	out, errOut, err := run(t, dir, "rename", "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "(value b [] A.a1)")
	assert.Equal(t, "2 modules renamed\n", errOut)
}

func TestRenameExampleProject(t *testing.T) {
	dir, err := filepath.Abs("../examples/prelude")
	require.NoError(t, err)
	out, errOut, err := run(t, dir, "rename", "--dump", "-j", "2")
	require.NoError(t, err)
	assert.Equal(t, "3 modules renamed\n", errOut)
	for _, want := range []string{
		"(value pure' [] Data.Function.identity)",
		"(value describe [] Data.Maybe.show)",
		"(value main [] (lam [args] Data.Function.identity))",
		"(value shadow [identity] identity)",
		"(value display [] Data.Maybe.describe)",
	} {
		assert.Contains(t, out, want)
	}

	out, _, err = run(t, dir, "doc", "src/Data/Maybe.purs", "Maybe")
	require.NoError(t, err)
	assert.Equal(t, "data Maybe a = Nothing | Just a\n    Absence or presence of a value.\n", out)
}

func TestRenameCommandErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"src/C.purs": "module C where\nc = y\n"})
	_, errOut, err := run(t, dir, "rename", "src")
	require.Error(t, err)
	assert.Equal(t, "1 error", err.Error())
	assert.Equal(t, "src/C.purs:2:5: error: unresolved name y\n  c = y\n      ^\n", errOut)

	_, _, err = run(t, t.TempDir(), "rename", ".")
	assert.EqualError(t, err, "no .purs files found")
}

func TestRenameCommandConfig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, project)
	writeFiles(t, dir, map[string]string{config.DefaultFile: "lookup: top\n"})

	_, errOut, err := run(t, dir, "rename")
	require.Error(t, err)
	assert.Contains(t, errOut, "unresolved name x")

	_, _, err = run(t, dir, "rename", "--lookup", "all")
	assert.NoError(t, err)

	_, _, err = run(t, dir, "rename", "--lookup", "nearest")
	assert.ErrorContains(t, err, "unknown lookup mode")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote purr.yaml\n", out)

	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "all", cfg.Lookup)

	_, _, err = run(t, dir, "init")
	assert.EqualError(t, err, "purr.yaml already exists")
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, colorEnabled("always", &bytes.Buffer{}))
	assert.False(t, colorEnabled("never", os.Stderr))
	assert.False(t, colorEnabled("auto", &bytes.Buffer{}))
	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled("auto", os.Stderr))
}

func newTestSession() (*session, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	s := &settings{log: slog.New(slog.DiscardHandler)}
	return newSession(s, &out, &errOut), &out, &errOut
}

func TestSessionEval(t *testing.T) {
	tests := []struct {
		input string
		out   string
		err   string
	}{
		{"f x", "(app f x)\n", ""},
		{"   ", "", ""},
		{":t A -> B", "(-> A B)\n", ""},
		{":tokens f x", "identifier \"f\"\nidentifier \"x\"\n", ""},
		{":lookup top", "lookup mode top\n", ""},
		{":lookup nearest", "", "unknown lookup mode"},
		{":bogus", "", "unknown command :bogus"},
		{"f (", "", "<repl>:1:"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ss, out, errOut := newTestSession()
			assert.False(t, ss.eval(tt.input))
			assert.Equal(t, tt.out, out.String())
			if tt.err == "" {
				assert.Empty(t, errOut.String())
			} else {
				assert.Contains(t, errOut.String(), tt.err)
			}
		})
	}
}

func TestSessionQuit(t *testing.T) {
	ss, _, _ := newTestSession()
	assert.True(t, ss.eval(":quit"))
	assert.True(t, ss.eval(":q"))
}

func TestSessionRename(t *testing.T) {
	ss, out, errOut := newTestSession()
	ss.eval(`:let g = \z -> z`)
	ss.eval(":let f = (")
	require.Len(t, ss.decls, 1)
	assert.NotEmpty(t, errOut.String())
	errOut.Reset()

	ss.eval(`:rename \x -> g`)
	assert.Equal(t, "(lam [x] Repl.g)\n", out.String())
	assert.Empty(t, errOut.String())

	ss.eval(":rename nope")
	assert.Contains(t, errOut.String(), "unresolved name nope")

	ss.s.lookup = rename.LookupTopScope
	errOut.Reset()
	ss.eval(`:rename \x -> \y -> x`)
	assert.Contains(t, errOut.String(), "unresolved name x")
}

func TestIncomplete(t *testing.T) {
	for src, want := range map[string]bool{
		"f (":       true,
		"if x then": true,
		"f )":       false,
		"f x":       false,
	} {
		r := parser.ParseExpr(ast.NewContext(), src)
		assert.Equal(t, want, r.Err != nil && incomplete(src, r.Err), src)
	}
}
