// Package driver runs the front-end passes over a set of source files.
// Results are memoized per file or module so that each pass runs at most
// once, however many modules ask for it.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/diag"
	"github.com/zyla/purr/index"
	"github.com/zyla/purr/parser"
	"github.com/zyla/purr/rename"
)

// SourceExt is the extension of source files picked up from directories.
const SourceExt = ".purs"

// cell holds one memoized result.
type cell[T any] struct {
	once sync.Once
	val  T
	err  error
}

// memo computes each key's value once.
type memo[T any] struct {
	mu      sync.Mutex
	entries map[string]*cell[T]
}

func (m *memo[T]) get(key string, compute func() (T, error)) (T, error) {
	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[string]*cell[T])
	}
	c, ok := m.entries[key]
	if !ok {
		c = &cell[T]{}
		m.entries[key] = c
	}
	m.mu.Unlock()
	c.once.Do(func() { c.val, c.err = compute() })
	return c.val, c.err
}

func (m *memo[T]) reset() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
}

// ParsedFile is the outcome of parsing one file. Module is nil when parsing
// failed; Errors lists the errors the parser recovered from.
type ParsedFile struct {
	Path   string
	Source *diag.Source
	Module *ast.Module
	Errors []*parser.Error
}

// Err joins the recovered errors, or returns nil.
func (f *ParsedFile) Err() error {
	errs := make([]error, len(f.Errors))
	for i, e := range f.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Workspace is a set of source files sharing one symbol context.
// Files must be added before the first query; adding a file later discards
// every memoized result.
type Workspace struct {
	Context *ast.Context
	Options rename.Options
	Logger  *slog.Logger

	mu      sync.Mutex
	sources map[string]*diag.Source

	parsed  memo[*ParsedFile]
	byName  memo[map[string]string]
	indexed memo[*index.IndexedModule]
	renamed memo[rename.ErrorList]
}

// New returns an empty workspace.
func New(opts rename.Options) *Workspace {
	return &Workspace{
		Context: ast.NewContext(),
		Options: opts,
		Logger:  opts.Logger,
		sources: make(map[string]*diag.Source),
	}
}

func (w *Workspace) log() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// Add registers the source text of a file.
func (w *Workspace) Add(path, text string) {
	w.mu.Lock()
	w.sources[path] = diag.NewSource(path, text)
	w.mu.Unlock()
	w.parsed.reset()
	w.byName.reset()
	w.indexed.reset()
	w.renamed.reset()
}

// AddFiles reads and registers files.
func (w *Workspace) AddFiles(paths ...string) error {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		w.Add(p, string(data))
	}
	return nil
}

// Files lists the registered paths in order.
func (w *Workspace) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.sources))
	for p := range w.sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Source returns the registered source of path.
func (w *Workspace) Source(path string) (*diag.Source, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sources[path]
	return s, ok
}

// Parse parses the file at path. The error is the fatal parse error, if
// any; recovered errors are in the result.
func (w *Workspace) Parse(path string) (*ParsedFile, error) {
	return w.parsed.get(path, func() (*ParsedFile, error) {
		src, ok := w.Source(path)
		if !ok {
			return nil, fmt.Errorf("unknown file %s", path)
		}
		start := time.Now()
		r := parser.ParseModule(w.Context, src.Text)
		w.log().Debug("parsed", "file", path, "errors", len(r.Errors), "fatal", r.Err != nil, "elapsed", time.Since(start))
		return &ParsedFile{Path: path, Source: src, Module: r.Value, Errors: r.Errors}, r.Err
	})
}

// modules maps module names to the files declaring them. Files that fail to
// parse declare nothing.
func (w *Workspace) modules() (map[string]string, error) {
	return w.byName.get("", func() (map[string]string, error) {
		byName := make(map[string]string)
		var errs []error
		for _, path := range w.Files() {
			f, err := w.Parse(path)
			if err != nil {
				continue
			}
			name := f.Module.Name.String()
			if prev, dup := byName[name]; dup {
				errs = append(errs, fmt.Errorf("module %s is declared in both %s and %s", name, prev, path))
				continue
			}
			byName[name] = path
		}
		return byName, errors.Join(errs...)
	})
}

// Modules lists the names of the modules in the workspace, sorted.
func (w *Workspace) Modules() ([]string, error) {
	byName, err := w.modules()
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, err
}

// File returns the file declaring module name.
func (w *Workspace) File(name string) (string, bool) {
	byName, _ := w.modules()
	path, ok := byName[name]
	return path, ok
}

// Index indexes module name. An indexed module is returned alongside
// indexing errors whenever parsing succeeded.
func (w *Workspace) Index(name string) (*index.IndexedModule, error) {
	return w.indexed.get(name, func() (*index.IndexedModule, error) {
		path, ok := w.File(name)
		if !ok {
			return nil, fmt.Errorf("unknown module %s", name)
		}
		f, err := w.Parse(path)
		if err != nil {
			return nil, err
		}
		return index.Index(f.Module)
	})
}

func (w *Workspace) lookup(name ast.Symbol) (*index.IndexedModule, bool) {
	im, _ := w.Index(name.String())
	return im, im != nil
}

// ImportedDecls computes the module scope of module name.
func (w *Workspace) ImportedDecls(name string) ([]index.ImportedDecl, error) {
	im, err := w.Index(name)
	if im == nil {
		return nil, err
	}
	return index.ImportedDecls(im, w.lookup)
}

// Rename renames module name in place and returns its renaming errors. The
// error is set when an earlier pass failed badly enough to stop renaming.
func (w *Workspace) Rename(name string) (rename.ErrorList, error) {
	return w.renamed.get(name, func() (rename.ErrorList, error) {
		im, err := w.Index(name)
		if im == nil {
			return nil, err
		}
		imports, ierr := index.ImportedDecls(im, w.lookup)
		if ierr != nil {
			return nil, errors.Join(err, ierr)
		}
		opts := w.Options
		opts.Logger = w.log()
		errs := rename.RenameModule(w.Context, im, imports, opts)
		return errs, err
	})
}

// Report is the outcome of running every pass over one module.
type Report struct {
	Module string
	Path   string
	Source *diag.Source
	Result *index.IndexedModule
	// Err joins recovered parse errors, index errors and renaming errors.
	Err error
}

// Diagnostics renders Err against the module's source.
func (r Report) Diagnostics() []diag.Diagnostic {
	if r.Err == nil {
		return nil
	}
	if r.Source == nil {
		return []diag.Diagnostic{{File: r.Module, Msg: r.Err.Error()}}
	}
	return diag.Collect(r.Source, r.Err)
}

// RenameAll renames every module, running up to jobs modules at a time
// (at least one). Files that fail to parse are reported under their path.
// Reports are sorted by module name.
func (w *Workspace) RenameAll(ctx context.Context, jobs int) ([]Report, error) {
	names, err := w.Modules()
	if err != nil {
		return nil, err
	}
	jobs = max(1, jobs)
	w.log().Debug("renaming workspace", "modules", len(names), "jobs", jobs)

	reports := make([]Report, len(names))
	work := make(chan int, len(names))
	for i := range names {
		work <- i
	}
	close(work)
	var wg sync.WaitGroup
	for range min(jobs, len(names)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					reports[i] = Report{Module: names[i], Err: ctx.Err()}
					continue
				}
				reports[i] = w.report(names[i])
			}
		}()
	}
	wg.Wait()

	for _, path := range w.Files() {
		if f, perr := w.Parse(path); perr != nil && f != nil {
			reports = append(reports, Report{Path: path, Source: f.Source, Err: errors.Join(f.Err(), perr)})
		}
	}
	return reports, ctx.Err()
}

func (w *Workspace) report(name string) Report {
	path, _ := w.File(name)
	f, _ := w.Parse(path)
	r := Report{Module: name, Path: path, Source: f.Source}
	errs, err := w.Rename(name)
	r.Result, _ = w.Index(name)
	r.Err = errors.Join(f.Err(), err, errs.Err())
	return r
}

// CollectFiles expands targets into source files. Directories are walked
// for files ending in SourceExt; plain files are taken as given.
func CollectFiles(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", target, err)
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), SourceExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", target, err)
		}
	}
	return files, nil
}
