package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/diag"
	"github.com/zyla/purr/parser"
)

func extract(t *testing.T, text string) *ModuleDoc {
	t.Helper()
	r := parser.ParseModule(ast.NewContext(), text)
	require.True(t, r.OK(), "%v %v", r.Err, r.Errors)
	return Extract(diag.NewSource("M.purs", text), r.Value)
}

const sample = `-- | Optional values.
-- | Second line.
module M where

-- | Absence or presence.
data Maybe a = Nothing | Just a

-- | Extract a value.
--
-- Falls back to the default.
fromMaybe :: forall a. a -> Maybe a -> a
fromMaybe d Nothing = d
fromMaybe _ (Just a) = a

-- | Orphaned by the blank line.

undocumented = 1

-- Plain comment.
plain = 2

-- | Equality.
class Eq a where
  eq :: a -> a -> Boolean

-- | Host value.
foreign import now :: Int
`

func TestExtract(t *testing.T) {
	md := extract(t, sample)
	assert.Equal(t, "M", md.Name)
	assert.Equal(t, "M.purs", md.Path)
	assert.Equal(t, "Optional values.\nSecond line.", md.Doc)

	var names, kinds []string
	for _, d := range md.Decls {
		names = append(names, d.Name)
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []string{"Maybe", "fromMaybe", "undocumented", "plain", "Eq", "now"}, names)
	assert.Equal(t, []string{"data", "value", "value", "value", "class", "foreign"}, kinds)

	from, ok := Lookup(md, "fromMaybe")
	require.True(t, ok)
	assert.Equal(t, "Extract a value.\n\nFalls back to the default.", from.Doc)
	assert.Equal(t, "fromMaybe :: forall a. a -> Maybe a -> a", from.Signature)
	assert.Equal(t, 11, from.Line)

	for _, name := range []string{"undocumented", "plain"} {
		d, ok := Lookup(md, name)
		require.True(t, ok)
		assert.Empty(t, d.Doc, name)
	}
	_, ok = Lookup(md, "missing")
	assert.False(t, ok)
}

func TestExtractInstances(t *testing.T) {
	md := extract(t, `module M where
-- | Shown.
instance showInt :: Show Int
derive instance Eq T
`)
	require.Len(t, md.Decls, 2)
	assert.Equal(t, DeclDoc{Name: "showInt", Kind: "instance", Signature: "instance showInt :: Show Int", Doc: "Shown.", Line: 3}, md.Decls[0])
	assert.Equal(t, "Eq", md.Decls[1].Name)
	assert.Empty(t, md.Doc)
}

func TestFormat(t *testing.T) {
	md := extract(t, sample)
	want := `module M
    Optional values.
    Second line.

data Maybe a = Nothing | Just a
    Absence or presence.

fromMaybe :: forall a. a -> Maybe a -> a
    Extract a value.

    Falls back to the default.

class Eq a where
    Equality.

foreign import now :: Int
    Host value.
`
	assert.Equal(t, want, Format(md))
}

func TestFormatDecl(t *testing.T) {
	assert.Equal(t, "x :: Int\n", FormatDecl(DeclDoc{Signature: "x :: Int"}))
	assert.Equal(t, "x :: Int\n    A.\n", FormatDecl(DeclDoc{Signature: "x :: Int", Doc: "A."}))
}
