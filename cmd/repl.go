package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/diag"
	"github.com/zyla/purr/index"
	"github.com/zyla/purr/parser"
	"github.com/zyla/purr/rename"
	"github.com/zyla/purr/scanner"
)

const (
	historyFile = ".purr_history"
	promptMain  = "purr> "
	promptCont  = "  ... "
	replHelp    = `Enter an expression to see its normalized syntax tree.
  :type <type>      parse a type
  :tokens <source>  show the laid-out tokens
  :rename <expr>    rename an expression against the definitions so far
  :let <decl>       add a declaration to the session module
  :lookup all|top   switch the local lookup mode
  :quit             leave
`
)

// session is the state of one REPL run. Declarations added with :let form
// an implicit module that :rename resolves against.
type session struct {
	ctx    *ast.Context
	s      *settings
	decls  []string
	out    io.Writer
	errOut io.Writer
}

func newSession(s *settings, out, errOut io.Writer) *session {
	return &session{ctx: ast.NewContext(), s: s, out: out, errOut: errOut}
}

// eval handles one complete input and reports whether the session ends.
func (ss *session) eval(input string) (quit bool) {
	line := strings.TrimSpace(input)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		ss.expr(line)
		return false
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case ":q", ":quit":
		return true
	case ":h", ":help":
		fmt.Fprint(ss.out, replHelp)
	case ":t", ":type":
		src := diag.NewSource("<repl>", arg)
		r := parser.ParseType(ss.ctx, arg)
		if r.Err == nil {
			fmt.Fprintln(ss.out, r.Value.Value.String())
		}
		ss.report(src, parseErrors(r))
	case ":tokens":
		toks, errs := scanner.LexAll(arg)
		for _, t := range toks {
			if t.Kind != scanner.EOF {
				fmt.Fprintln(ss.out, t)
			}
		}
		for _, e := range errs {
			ss.report(diag.NewSource("<repl>", arg), e)
		}
	case ":let":
		ss.let(arg)
	case ":rename":
		ss.rename(arg)
	case ":lookup":
		mode, err := rename.ParseLookupMode(arg)
		if err != nil {
			fmt.Fprintln(ss.errOut, err)
			return false
		}
		ss.s.lookup = mode
		fmt.Fprintf(ss.out, "lookup mode %s\n", mode)
	default:
		fmt.Fprintf(ss.errOut, "unknown command %s. Type :help for help.\n", command)
	}
	return false
}

func (ss *session) report(src *diag.Source, err error) {
	if err != nil {
		ss.s.formatter().FormatAll(ss.errOut, src, diag.Collect(src, err))
	}
}

func (ss *session) expr(line string) {
	r := parser.ParseExpr(ss.ctx, line)
	if r.Err == nil {
		fmt.Fprintln(ss.out, r.Value.Value.String())
	}
	ss.report(diag.NewSource("<repl>", line), parseErrors(r))
}

const sessionHeader = "module Repl where\n"

// module builds the session module, optionally with extra declarations.
func (ss *session) module(extra ...string) string {
	return sessionHeader + strings.Join(append(append([]string{}, ss.decls...), extra...), "\n") + "\n"
}

// check parses and indexes a session module.
func (ss *session) check(text string) (*index.IndexedModule, *diag.Source, error) {
	src := diag.NewSource("<repl>", text)
	r := parser.ParseModule(ss.ctx, text)
	if err := parseErrors(r); err != nil {
		return nil, src, err
	}
	im, err := index.Index(r.Value)
	return im, src, err
}

func (ss *session) let(decl string) {
	if _, src, err := ss.check(ss.module(decl)); err != nil {
		ss.report(src, err)
		return
	}
	ss.decls = append(ss.decls, decl)
}

func (ss *session) rename(expr string) {
	const name = "it'"
	im, src, err := ss.check(ss.module(name + " = " + expr))
	if err != nil {
		ss.report(src, err)
		return
	}
	imports, err := index.ImportedDecls(im, func(ast.Symbol) (*index.IndexedModule, bool) { return nil, false })
	if err != nil {
		ss.report(src, err)
		return
	}
	errs := rename.RenameModule(ss.ctx, im, imports, rename.Options{Lookup: ss.s.lookup, Logger: ss.s.log})
	if len(errs) > 0 {
		ss.report(src, errs)
		return
	}
	it, _ := im.Value(ss.ctx.Intern(name))
	body := it.Equations[0].Body.(*ast.Unconditional)
	fmt.Fprintln(ss.out, body.Expr.Value.String())
}

// incomplete reports whether err was raised at the end of src, meaning
// more input could complete it.
func incomplete(src string, err error) bool {
	var p diag.Positioned
	if !errors.As(err, &p) {
		return false
	}
	return p.Pos().Start >= len(strings.TrimRight(src, " \t\n"))
}

// readInput prompts until the input parses or fails before its end.
func (ss *session) readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		r := parser.ParseExpr(ss.ctx, src)
		if r.Err == nil || !incomplete(src, r.Err) {
			return src, true
		}
	}
}

func replAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ss := newSession(s, cmd.Root().Writer, cmd.Root().ErrWriter)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(ss.out, "purr "+cmd.Root().Version+". Type :help for help.")
	for ctx.Err() == nil {
		input, ok := ss.readInput(ln)
		if !ok {
			fmt.Fprintln(ss.out)
			break
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		if ss.eval(input) {
			break
		}
	}
	return nil
}
