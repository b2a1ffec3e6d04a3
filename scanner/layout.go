package scanner

type contextKind int

const (
	ctxBlock   contextKind = iota // indentation block opened by where/let/do/ado/of
	ctxBracket                    // ( [ {
	ctxMarker                     // pending if ... then ... else, case ... of
)

type layoutContext struct {
	kind   contextKind
	column int  // block column
	opener Kind // keyword that opened the block or marker
}

// layout holds the context stack while markers are inserted.
type layout struct {
	stack []layoutContext
	out   []Token
}

// Layout inserts LayoutStart, LayoutSep and LayoutEnd markers into a raw
// token stream produced by Lex.
//
// The keywords where, let, do, ado and of open a block at the column of
// the following token. The block is empty when that token is not indented
// past the enclosing block. A line starting at a block's column separates
// items of that block; a line starting left of it closes the block. The
// keyword in closes the innermost let or ado block, then/else/of close
// blocks opened after their if or case, and closing brackets and commas
// close blocks opened inside the bracket. End of input closes everything.
func Layout(toks []Token) []Token {
	l := &layout{out: make([]Token, 0, len(toks)+len(toks)/4)}
	pending := EOF // opener waiting for the next token's column
	for _, t := range toks {
		closedLet := false
		switch {
		case pending != EOF:
			l.emit(LayoutStart, t.Start)
			if t.Kind == EOF || t.Column <= l.blockColumn() {
				l.emit(LayoutEnd, t.Start)
				if t.Kind != EOF && t.NewlineBefore {
					closedLet = l.newline(t)
				}
			} else {
				l.stack = append(l.stack, layoutContext{kind: ctxBlock, column: t.Column, opener: pending})
			}
			pending = EOF
		case t.NewlineBefore && t.Kind != EOF:
			closedLet = l.newline(t)
		}

		switch t.Kind {
		case EOF:
			for len(l.stack) > 0 {
				l.pop(t.WhitespaceStart)
			}
		case Then:
			l.closeToMarker(If, false, t.WhitespaceStart)
		case Else:
			l.closeToMarker(If, true, t.WhitespaceStart)
		case Of:
			l.closeToMarker(Case, true, t.WhitespaceStart)
		case In:
			if !closedLet {
				l.closeLet(t.WhitespaceStart)
			}
		case RightParen, RightBracket, RightBrace:
			l.closeBracket(true, t.WhitespaceStart)
		case Comma:
			l.closeBracket(false, t.WhitespaceStart)
		}

		l.out = append(l.out, t)

		switch t.Kind {
		case LeftParen, LeftBracket, LeftBrace:
			l.stack = append(l.stack, layoutContext{kind: ctxBracket})
		case If, Case:
			l.stack = append(l.stack, layoutContext{kind: ctxMarker, opener: t.Kind})
		}
		switch t.Kind {
		case Where, Let, Do, Ado, Of:
			pending = t.Kind
		}
	}
	return l.out
}

func (l *layout) emit(k Kind, pos int) {
	l.out = append(l.out, Token{Kind: k, WhitespaceStart: pos, Start: pos, End: pos})
}

// blockColumn returns the column of the innermost open block, or -1.
func (l *layout) blockColumn() int {
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i].kind == ctxBlock {
			return l.stack[i].column
		}
	}
	return -1
}

// top returns the index of the innermost context that is not a marker.
func (l *layout) top() int {
	i := len(l.stack) - 1
	for i >= 0 && l.stack[i].kind == ctxMarker {
		i--
	}
	return i
}

// pop removes the innermost context, emitting LayoutEnd for blocks.
func (l *layout) pop(pos int) layoutContext {
	c := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	if c.kind == ctxBlock {
		l.emit(LayoutEnd, pos)
	}
	return c
}

// newline handles the first token of a line. It reports whether a let or
// ado block was closed, in which case a following in is already satisfied.
func (l *layout) newline(t Token) bool {
	closedLet := false
	for {
		i := l.top()
		if i < 0 || l.stack[i].kind != ctxBlock || l.stack[i].column <= t.Column {
			break
		}
		l.stack = l.stack[:i+1]
		if c := l.pop(t.WhitespaceStart); c.opener == Let || c.opener == Ado {
			closedLet = true
		}
	}
	if i := l.top(); i >= 0 && l.stack[i].kind == ctxBlock && l.stack[i].column == t.Column {
		l.stack = l.stack[:i+1]
		l.emit(LayoutSep, t.Start)
	}
	return closedLet
}

// closeToMarker closes blocks opened since the innermost marker of the
// given opener. The search stops at brackets. The marker itself is removed
// when drop is set.
func (l *layout) closeToMarker(opener Kind, drop bool, pos int) {
	i := len(l.stack) - 1
	for i >= 0 && l.stack[i].kind == ctxBlock {
		i--
	}
	if i < 0 || l.stack[i].kind != ctxMarker || l.stack[i].opener != opener {
		return
	}
	for len(l.stack) > i+1 {
		l.pop(pos)
	}
	if drop {
		l.stack = l.stack[:i]
	}
}

// closeLet closes blocks up to and including the innermost let or ado
// block, unless a bracket intervenes.
func (l *layout) closeLet(pos int) {
	for i := len(l.stack) - 1; i >= 0; i-- {
		c := l.stack[i]
		if c.kind == ctxBracket {
			return
		}
		if c.kind == ctxBlock && (c.opener == Let || c.opener == Ado) {
			for len(l.stack) > i {
				l.pop(pos)
			}
			return
		}
	}
}

// closeBracket closes blocks opened inside the innermost bracket. With
// closing set the bracket context is removed as well.
func (l *layout) closeBracket(closing bool, pos int) {
	i := len(l.stack) - 1
	for i >= 0 && l.stack[i].kind != ctxBracket {
		i--
	}
	if i < 0 {
		return
	}
	for len(l.stack) > i+1 {
		l.pop(pos)
	}
	if closing {
		l.stack = l.stack[:i]
	}
}
