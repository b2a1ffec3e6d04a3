// Package rename resolves the variables of a module's value declarations.
//
// Each variable is either local, bound by an enclosing equation parameter
// or lambda, or refers to a module-level value; module-level references are
// rewritten in place to the name qualified by their defining module.
// Coverage is partial: only variables and lambdas are handled
// in expressions, only variable binders in patterns. Anything else is
// reported as not yet implemented rather than skipped.
package rename

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/index"
)

// LookupMode selects which local scopes a variable is looked up in.
type LookupMode int

const (
	// LookupAllScopes searches every open scope, innermost first.
	LookupAllScopes LookupMode = iota
	// LookupTopScope searches only the innermost scope; names bound further
	// out fall through to the module scope.
	LookupTopScope
)

func (m LookupMode) String() string {
	if m == LookupTopScope {
		return "top"
	}
	return "all"
}

// ParseLookupMode parses "all" or "top". The empty string means "all".
func ParseLookupMode(s string) (LookupMode, error) {
	switch s {
	case "", "all":
		return LookupAllScopes, nil
	case "top":
		return LookupTopScope, nil
	}
	return 0, fmt.Errorf("unknown lookup mode %q (want all or top)", s)
}

// Options configure a renaming pass.
type Options struct {
	Lookup LookupMode
	Logger *slog.Logger // nil discards
}

type scope map[ast.Symbol]struct{}

type renamer struct {
	opts      Options
	log       *slog.Logger
	module    map[ast.QualifiedName]ast.AbsoluteName
	ambiguous map[ast.QualifiedName][]ast.AbsoluteName
	scopes    []scope
	errs      ErrorList
}

// RenameModule renames the value declarations of m in place. imports is the
// module scope as computed by index.ImportedDecls. Declarations of m itself
// shadow imported names; two imports giving one name different meanings
// make it ambiguous.
func RenameModule(ctx *ast.Context, m *index.IndexedModule, imports []index.ImportedDecl, opts Options) ErrorList {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &renamer{
		opts:      opts,
		log:       log.With("module", m.Name.String()),
		module:    make(map[ast.QualifiedName]ast.AbsoluteName, len(imports)),
		ambiguous: make(map[ast.QualifiedName][]ast.AbsoluteName),
	}
	r.buildModuleScope(m.Name, imports)
	r.log.Debug("module scope", "names", len(r.module), "ambiguous", len(r.ambiguous), "symbols", ctx.Len())

	r.push()
	for _, v := range m.Values {
		r.value(v)
	}
	r.pop()
	if len(r.scopes) != 0 {
		panic(fmt.Sprintf("rename: %d scopes left open", len(r.scopes)))
	}
	r.log.Debug("renamed", "values", len(m.Values), "errors", len(r.errs))
	return r.errs
}

func (r *renamer) buildModuleScope(self ast.Symbol, imports []index.ImportedDecl) {
	own := make(map[ast.QualifiedName]bool)
	for _, d := range imports {
		qn, abs := d.QualifiedName(), d.ID.AbsoluteName()
		if d.Qualifier.IsZero() && d.ID.Module == self {
			own[qn] = true
			r.module[qn] = abs
			delete(r.ambiguous, qn)
			continue
		}
		if own[qn] {
			continue
		}
		if cands, ok := r.ambiguous[qn]; ok {
			if !containsName(cands, abs) {
				r.ambiguous[qn] = append(cands, abs)
			}
			continue
		}
		if prev, ok := r.module[qn]; ok && prev != abs {
			r.ambiguous[qn] = []ast.AbsoluteName{prev, abs}
			delete(r.module, qn)
			continue
		}
		r.module[qn] = abs
	}
}

func containsName(names []ast.AbsoluteName, n ast.AbsoluteName) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}

func (r *renamer) push() { r.scopes = append(r.scopes, scope{}) }

func (r *renamer) pop() {
	if len(r.scopes) == 0 {
		panic("rename: pop of empty scope stack")
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *renamer) top() scope {
	if len(r.scopes) == 0 {
		panic("rename: no open scope")
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *renamer) isLocal(name ast.Symbol) bool {
	if r.opts.Lookup == LookupTopScope {
		_, ok := r.top()[name]
		return ok
	}
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

func (r *renamer) report(e *Error) {
	r.log.Debug("rename error", "kind", e.Kind.String(), "span", e.Span.String(), "name", e.Name)
	r.errs = append(r.errs, e)
}

func (r *renamer) value(v *index.ValueDecl) {
	if v.Type != nil {
		r.typ(v.Type)
	}
	for _, eq := range v.Equations {
		r.push()
		for i := range eq.Params {
			r.pat(&eq.Params[i])
		}
		r.body(eq.Body)
		r.pop()
	}
}

// typ renames a type signature. Types are not renamed yet.
func (r *renamer) typ(*ast.Type) {}

func (r *renamer) body(b ast.GuardedBody) {
	switch x := b.(type) {
	case *ast.Unconditional:
		r.expr(&x.Expr)
	case *ast.Guarded:
		span := x.Alts[0].Expr.Span
		r.report(&Error{Kind: NotImplemented, Span: span, Detail: "renaming guarded bodies"})
	}
}

func (r *renamer) pat(p *ast.Pat) {
	switch x := p.Value.(type) {
	case *ast.VarPat:
		top := r.top()
		if _, dup := top[x.Name]; dup {
			r.report(&Error{Kind: DuplicateBinder, Span: p.Span, Name: x.Name.String()})
			return
		}
		top[x.Name] = struct{}{}
	default:
		r.report(&Error{Kind: NotImplemented, Span: p.Span, Detail: "renaming " + patKindName(p.Value) + " patterns"})
	}
}

func (r *renamer) expr(e *ast.Expr) {
	switch x := e.Value.(type) {
	case *ast.Var:
		r.variable(e.Span, x)
	case *ast.Lam:
		r.push()
		for i := range x.Params {
			r.pat(&x.Params[i])
		}
		r.expr(&x.Body)
		r.pop()
	default:
		r.report(&Error{Kind: NotImplemented, Span: e.Span, Detail: "renaming " + exprKindName(e.Value) + " expressions"})
	}
}

func (r *renamer) variable(span ast.Span, v *ast.Var) {
	if !v.Name.IsQualified() && r.isLocal(v.Name.Name) {
		return
	}
	if abs, ok := r.module[v.Name]; ok {
		v.Name = abs.ToQualifiedName()
		return
	}
	if cands, ok := r.ambiguous[v.Name]; ok {
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = c.String()
		}
		r.report(&Error{
			Kind:   Ambiguous,
			Span:   span,
			Name:   v.Name.String(),
			Detail: "could refer to " + strings.Join(names, " or "),
		})
		return
	}
	r.report(&Error{Kind: Unresolved, Span: span, Name: v.Name.String(), Suggestion: r.suggest(v.Name)})
}

// suggest returns the known name closest to an unresolved one, or "".
func (r *renamer) suggest(name ast.QualifiedName) string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}
	for qn := range r.module {
		if qn.Qualifier == name.Qualifier {
			add(qn.Name.String())
		}
	}
	for qn := range r.ambiguous {
		if qn.Qualifier == name.Qualifier {
			add(qn.Name.String())
		}
	}
	if !name.IsQualified() {
		for _, s := range r.scopes {
			for sym := range s {
				add(sym.String())
			}
		}
	}
	sort.Strings(candidates)

	best := closest(name.Name.String(), candidates)
	if best == "" || !name.IsQualified() {
		return best
	}
	return name.Qualifier.String() + "." + best
}

func closest(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", len(target)/3+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(target), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func exprKindName(k ast.ExprKind) string {
	switch k.(type) {
	case *ast.LiteralExpr:
		return "literal"
	case *ast.Infix:
		return "operator chain"
	case *ast.Accessor:
		return "record accessor"
	case *ast.RecordUpdate:
		return "record update"
	case *ast.Operator:
		return "operator section"
	case *ast.DataConstructor:
		return "data constructor"
	case *ast.App:
		return "application"
	case *ast.Case:
		return "case"
	case *ast.If:
		return "if"
	case *ast.Typed:
		return "type annotation"
	case *ast.Let:
		return "let"
	case *ast.Wildcard:
		return "wildcard"
	case *ast.Do:
		return "do"
	case *ast.Ado:
		return "ado"
	case *ast.Negate:
		return "negation"
	}
	return "unknown"
}

func patKindName(k ast.PatKind) string {
	switch k.(type) {
	case *ast.LiteralPat:
		return "literal"
	case *ast.InfixPat:
		return "operator"
	case *ast.ConstructorPat:
		return "constructor"
	case *ast.WildcardPat:
		return "wildcard"
	case *ast.AsPat:
		return "as"
	case *ast.TypedPat:
		return "typed"
	}
	return "unknown"
}
