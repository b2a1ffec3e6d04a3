package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/config"
	"github.com/zyla/purr/diag"
	"github.com/zyla/purr/doc"
	"github.com/zyla/purr/driver"
	"github.com/zyla/purr/parser"
	"github.com/zyla/purr/rename"
	"github.com/zyla/purr/scanner"
)

// Execute runs the purr CLI with the given version string.
func Execute(version string) {
	if err := New(version).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// New builds the command tree.
func New(version string) *cli.Command {
	lookupFlag := &cli.StringFlag{
		Name:  "lookup",
		Usage: "Local scopes searched for variables: all or top",
	}
	return &cli.Command{
		Name:                   "purr",
		Usage:                  "Parse and rename PureScript modules",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Project file (default " + config.DefaultFile + ")",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Color diagnostics: auto, always or never",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log pass boundaries to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "tokens",
				Usage:     "Print the laid-out token stream of a file",
				ArgsUsage: "<file.purs>",
				Action:    tokensAction,
			},
			{
				Name:      "parse",
				Usage:     "Parse a file and print its syntax tree",
				ArgsUsage: "<file.purs>",
				Action:    parseAction,
			},
			{
				Name:      "expr",
				Usage:     "Parse an expression and print it",
				ArgsUsage: "<source>",
				Action:    exprAction,
			},
			{
				Name:      "type",
				Usage:     "Parse a type and print it",
				ArgsUsage: "<source>",
				Action:    typeAction,
			},
			{
				Name:      "doc",
				Usage:     "Show the doc comments of a file or one of its declarations",
				ArgsUsage: "<file.purs> [name]",
				Action:    docAction,
			},
			{
				Name:      "rename",
				Usage:     "Rename every module of the project or the given files",
				ArgsUsage: "[file.purs | directory...]",
				Flags: []cli.Flag{
					lookupFlag,
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Modules renamed in parallel",
						Value:   4,
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "Print the renamed modules",
					},
				},
				Action: renameAction,
			},
			{
				Name:   "init",
				Usage:  "Write a default " + config.DefaultFile,
				Action: initAction,
			},
			{
				Name:   "repl",
				Usage:  "Parse expressions interactively",
				Flags:  []cli.Flag{lookupFlag},
				Action: replAction,
			},
		},
	}
}

// settings is the configuration after command line overrides.
type settings struct {
	cfg    *config.Config
	lookup rename.LookupMode
	color  bool
	log    *slog.Logger
}

func loadSettings(cmd *cli.Command) (*settings, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("lookup") {
		cfg.Lookup = cmd.String("lookup")
	}
	if cmd.IsSet("color") {
		cfg.Color = cmd.String("color")
	}
	if cmd.Bool("verbose") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lookup, _ := cfg.LookupMode()
	level, _ := cfg.Level()
	errw := cmd.Root().ErrWriter
	return &settings{
		cfg:    cfg,
		lookup: lookup,
		color:  colorEnabled(cfg.Color, errw),
		log:    slog.New(slog.NewTextHandler(errw, &slog.HandlerOptions{Level: level})),
	}, nil
}

// colorEnabled resolves auto mode: color only on a terminal and only when
// NO_COLOR is unset.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *settings) formatter() diag.Formatter { return diag.Formatter{Color: s.color} }

// reportErrors renders err against src and returns a summary error, or nil
// when err is nil.
func (s *settings) reportErrors(w io.Writer, src *diag.Source, err error) error {
	if err == nil {
		return nil
	}
	n := s.formatter().FormatAll(w, src, diag.Collect(src, err))
	return errorCount(n)
}

func errorCount(n int) error {
	if n == 1 {
		return errors.New("1 error")
	}
	return fmt.Errorf("%d errors", n)
}

func readSource(cmd *cli.Command, usage string) (*diag.Source, error) {
	if cmd.NArg() < 1 {
		return nil, fmt.Errorf("usage: purr %s", usage)
	}
	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return diag.NewSource(path, string(data)), nil
}

// inlineSource joins the arguments into one source text.
func inlineSource(cmd *cli.Command, usage string) (*diag.Source, error) {
	if cmd.NArg() < 1 {
		return nil, fmt.Errorf("usage: purr %s", usage)
	}
	return diag.NewSource("<input>", strings.Join(cmd.Args().Slice(), " ")), nil
}

func tokensAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := readSource(cmd, "tokens <file.purs>")
	if err != nil {
		return err
	}
	toks, lexErrs := scanner.LexAll(src.Text)
	w := cmd.Root().Writer
	for _, t := range toks {
		line, col := src.Position(t.Start)
		fmt.Fprintf(w, "%d:%d\t%s\n", line, col, t)
	}
	errs := make([]error, len(lexErrs))
	for i, e := range lexErrs {
		errs[i] = e
	}
	return s.reportErrors(cmd.Root().ErrWriter, src, errors.Join(errs...))
}

// parseErrors joins the errors of a parse result.
func parseErrors[T any](r parser.Result[T]) error {
	errs := make([]error, 0, len(r.Errors)+1)
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(append(errs, r.Err)...)
}

func parseAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := readSource(cmd, "parse <file.purs>")
	if err != nil {
		return err
	}
	r := parser.ParseModule(ast.NewContext(), src.Text)
	if r.Value != nil {
		fmt.Fprint(cmd.Root().Writer, ast.Dump(r.Value))
	}
	return s.reportErrors(cmd.Root().ErrWriter, src, parseErrors(r))
}

func exprAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := inlineSource(cmd, "expr <source>")
	if err != nil {
		return err
	}
	r := parser.ParseExpr(ast.NewContext(), src.Text)
	if r.Err == nil {
		fmt.Fprintln(cmd.Root().Writer, r.Value.Value.String())
	}
	return s.reportErrors(cmd.Root().ErrWriter, src, parseErrors(r))
}

func typeAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := inlineSource(cmd, "type <source>")
	if err != nil {
		return err
	}
	r := parser.ParseType(ast.NewContext(), src.Text)
	if r.Err == nil {
		fmt.Fprintln(cmd.Root().Writer, r.Value.Value.String())
	}
	return s.reportErrors(cmd.Root().ErrWriter, src, parseErrors(r))
}

func docAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	src, err := readSource(cmd, "doc <file.purs> [name]")
	if err != nil {
		return err
	}
	r := parser.ParseModule(ast.NewContext(), src.Text)
	if r.Err != nil {
		return s.reportErrors(cmd.Root().ErrWriter, src, parseErrors(r))
	}
	md := doc.Extract(src, r.Value)
	w := cmd.Root().Writer
	if cmd.NArg() < 2 {
		fmt.Fprint(w, doc.Format(md))
		return nil
	}
	name := cmd.Args().Get(1)
	d, ok := doc.Lookup(md, name)
	if !ok {
		return fmt.Errorf("%s: no declaration named %s", src.Name, name)
	}
	fmt.Fprint(w, doc.FormatDecl(d))
	return nil
}

func renameAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		targets = s.cfg.Sources
	}
	files, err := driver.CollectFiles(targets)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.SourceExt)
	}

	ws := driver.New(rename.Options{Lookup: s.lookup, Logger: s.log})
	if err := ws.AddFiles(files...); err != nil {
		return err
	}
	reports, err := ws.RenameAll(ctx, int(cmd.Int("jobs")))
	if err != nil {
		return err
	}

	out, errw := cmd.Root().Writer, cmd.Root().ErrWriter
	f := s.formatter()
	total := 0
	for _, r := range reports {
		total += f.FormatAll(errw, r.Source, r.Diagnostics())
		if cmd.Bool("dump") && r.Result != nil {
			fmt.Fprint(out, ast.Dump(r.Result.Module))
		}
	}
	if total > 0 {
		return errorCount(total)
	}
	fmt.Fprintf(errw, "%d modules renamed\n", len(reports))
	return nil
}

func initAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Write(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)
	return nil
}
