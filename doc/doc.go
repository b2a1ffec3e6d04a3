// Package doc extracts documentation comments from PureScript source.
//
// A doc comment is a block of line comments whose first line starts with
// "-- |". Following "--" lines continue the block. A block documents the
// module header or top-level declaration on the line right after it; a
// blank line in between breaks the attachment.
package doc

import (
	"fmt"
	"strings"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/diag"
)

// ModuleDoc holds the documentation of one module.
type ModuleDoc struct {
	Name  string
	Path  string
	Doc   string // attached to the module header
	Decls []DeclDoc
}

// DeclDoc describes one top-level declaration.
type DeclDoc struct {
	Name      string
	Kind      string // value, type, data, newtype, foreign, class, instance
	Signature string // first source line of the declaration
	Doc       string
	Line      int // 1-based
}

// Extract collects the declarations of m with the doc comments src attaches
// to them. The equations and signature of one value yield a single entry.
func Extract(src *diag.Source, m *ast.Module) *ModuleDoc {
	blocks, header := docBlocks(src.Text)
	md := &ModuleDoc{Name: m.Name.String(), Path: src.Name, Doc: blocks[header]}
	seen := make(map[string]bool)
	for _, d := range m.Decls {
		name, kind := declName(d.Value)
		if name == "" || (kind == "value" && seen[name]) {
			continue
		}
		if kind == "value" {
			seen[name] = true
		}
		line, _ := src.Position(d.Span.Start)
		md.Decls = append(md.Decls, DeclDoc{
			Name:      name,
			Kind:      kind,
			Signature: strings.TrimSpace(src.Line(line)),
			Doc:       blocks[line],
			Line:      line,
		})
	}
	return md
}

// docBlocks maps the 1-based line following each doc comment block to the
// block's text, and returns the line of the module header.
func docBlocks(text string) (map[int]string, int) {
	blocks := make(map[int]string)
	header := 0
	var cur []string
	inDoc := false
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-- |"):
			inDoc = true
			cur = append(cur, strings.TrimPrefix(trimmed[4:], " "))
		case inDoc && strings.HasPrefix(trimmed, "--"):
			cur = append(cur, strings.TrimPrefix(trimmed[2:], " "))
		default:
			if inDoc && trimmed != "" {
				blocks[i+1] = strings.Join(cur, "\n")
			}
			if header == 0 && strings.HasPrefix(trimmed, "module ") {
				header = i + 1
			}
			inDoc = false
			cur = nil
		}
	}
	return blocks, header
}

func declName(d ast.DeclKind) (name, kind string) {
	switch x := d.(type) {
	case *ast.TypeSignature:
		return x.Name.String(), "value"
	case *ast.ValueEquation:
		return x.Name.String(), "value"
	case *ast.TypeSynonym:
		return x.Name.String(), "type"
	case *ast.DataDecl:
		if x.Newtype {
			return x.Name.String(), "newtype"
		}
		return x.Name.String(), "data"
	case *ast.ForeignValue:
		return x.Name.String(), "foreign"
	case *ast.ForeignData:
		return x.Name.String(), "foreign data"
	case *ast.ClassDecl:
		return x.Name.String(), "class"
	case *ast.InstanceChain:
		return instanceName(x.Instances[0]), "instance"
	case *ast.DeriveDecl:
		return instanceName(x.Instance), "instance"
	}
	return "", ""
}

func instanceName(i *ast.InstanceDecl) string {
	if !i.Name.IsZero() {
		return i.Name.String()
	}
	return i.Class.String()
}

// Lookup finds a declaration by name.
func Lookup(md *ModuleDoc, name string) (DeclDoc, bool) {
	for _, d := range md.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return DeclDoc{}, false
}

// Format renders the documented parts of md for terminal display.
// Undocumented declarations are left out.
func Format(md *ModuleDoc) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", md.Name)
	if md.Doc != "" {
		writeIndented(&sb, md.Doc)
	}
	for _, d := range md.Decls {
		if d.Doc == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(FormatDecl(d))
	}
	return sb.String()
}

// FormatDecl renders one declaration and its doc comment.
func FormatDecl(d DeclDoc) string {
	var sb strings.Builder
	sb.WriteString(d.Signature)
	sb.WriteString("\n")
	if d.Doc != "" {
		writeIndented(&sb, d.Doc)
	}
	return sb.String()
}

func writeIndented(sb *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			sb.WriteString("    ")
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}
