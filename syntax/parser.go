// Package syntax turns a pattern string into an ast.Tree.
//
// The grammar (whitespace not significant):
//
//	root      = union
//	union     = concat ( '|' concat )*
//	concat    = basic+
//	basic     = element ( ( '*' | '+' | '?' | '{' repeat '}' ) '?'? )?
//	repeat    = number ( ',' number? )?
//	element   = '(' ( '?:' )? root ')' | '[' set ']'
//	          | '.' | '^' | '$' | char
//	set       = '^'? set-item+
//	set-item  = char ( '-' char )?
//	char      = any non-meta | '\' meta
//
// Meta-characters are exactly `| * + ? , - ^ $ . { } ( ) [ ]`. An escape
// of a meta-character produces a literal of that character; an escape of
// anything else is a parse error. "," is only treated as a meta-character
// inside a "{...}" repeat count — everywhere else it is an ordinary
// literal (see the open question recorded in SPEC_FULL.md).
package syntax

import (
	"strings"

	"github.com/coregx/retriad/ast"
)

// metachars is the full set of characters a backslash escape may name.
// Outside a character class each of them except "," needs that escape to
// be used literally; a bare "," is an ordinary literal there.
const metachars = `|*+?,-^$.{}()[]`

func isMeta(c rune) bool {
	return strings.ContainsRune(metachars, c)
}

// Parse compiles a pattern string into an AST. The returned tree's Root is
// always a CaptureGroup(0).
func Parse(pattern string) (*ast.Tree, error) {
	p := &parser{pattern: []rune(pattern), nextGroup: 1}
	items, err := p.parseAlternation(false)
	if err != nil {
		return nil, p.wrap(err)
	}
	if !p.atEOF() {
		// Every stray closer and dangling quantifier is already rejected
		// by parseElement before this point, so this is unreachable under
		// the current grammar; it guards against a future grammar change
		// leaving input unconsumed without reporting an error.
		return nil, p.wrap(ErrTrailingGarbage)
	}
	root := ast.NewCaptureGroup(0, nil)
	root.Children = items
	return &ast.Tree{Root: root, CaptureCount: p.nextGroup}, nil
}

type parser struct {
	pattern   []rune
	pos       int
	nextGroup int // next capture index to assign, starting at 1
}

func (p *parser) wrap(err error) error {
	return &ParseError{Pattern: string(p.pattern), Pos: p.pos, Err: err}
}

func (p *parser) atEOF() bool { return p.pos >= len(p.pattern) }

func (p *parser) peek() rune {
	if p.atEOF() {
		return 0
	}
	return p.pattern[p.pos]
}

func (p *parser) peekAt(offset int) rune {
	i := p.pos + offset
	if i < 0 || i >= len(p.pattern) {
		return 0
	}
	return p.pattern[i]
}

func (p *parser) advance() rune {
	c := p.peek()
	p.pos++
	return c
}

// parseAlternation parses "union". insideGroup tells the concat parser
// whether ')' is a legal terminator (true) or a stray closer (false).
func (p *parser) parseAlternation(insideGroup bool) ([]*ast.Node, error) {
	first, err := p.parseConcat(insideGroup)
	if err != nil {
		return nil, err
	}
	if p.peek() != '|' {
		return first, nil
	}

	branches := []*ast.Node{{Kind: ast.NonCaptureGroup, Children: first}}
	for p.peek() == '|' {
		p.advance()
		items, err := p.parseConcat(insideGroup)
		if err != nil {
			return nil, err
		}
		branches = append(branches, &ast.Node{Kind: ast.NonCaptureGroup, Children: items})
	}
	return []*ast.Node{{Kind: ast.Union, Children: branches}}, nil
}

// parseConcat parses "basic+": a non-empty run of quantified elements,
// stopping at '|', at ')' when insideGroup, or at end of input.
func (p *parser) parseConcat(insideGroup bool) ([]*ast.Node, error) {
	var items []*ast.Node
	for {
		if p.atEOF() || p.peek() == '|' || (insideGroup && p.peek() == ')') {
			break
		}
		item, err := p.parseBasic()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrEmptyExpression
	}
	return items, nil
}

// parseBasic parses "element ( quantifier '?'? )?".
func (p *parser) parseBasic() (*ast.Node, error) {
	elem, err := p.parseElement()
	if err != nil {
		return nil, err
	}

	switch p.peek() {
	case '*':
		p.advance()
		return ast.NewStar(p.parseGreediness(), elem), nil
	case '+':
		p.advance()
		return ast.NewPlus(p.parseGreediness(), elem), nil
	case '?':
		p.advance()
		return ast.NewOption(p.parseGreediness(), elem), nil
	case '{':
		p.advance()
		return p.parseRepeat(elem)
	default:
		return elem, nil
	}
}

// parseGreediness consumes a trailing '?' marking a quantifier
// non-greedy, if present.
func (p *parser) parseGreediness() ast.Greediness {
	if p.peek() == '?' {
		p.advance()
		return ast.NonGreedy
	}
	return ast.Greedy
}

// parseRepeat parses the body of "{...}" after the opening brace has been
// consumed, producing a Repeat node over elem.
func (p *parser) parseRepeat(elem *ast.Node) (*ast.Node, error) {
	min, minOK := p.parseNumber()
	if !minOK {
		if p.atEOF() {
			return nil, ErrUnterminatedRepeat
		}
		return nil, ErrEmptyRepeatBound
	}

	max := ast.Finite(min)
	if p.peek() == ',' {
		p.advance()
		if p.peek() != '}' {
			m, ok := p.parseNumber()
			if !ok {
				return nil, ErrUnterminatedRepeat
			}
			max = ast.Finite(m)
		} else {
			max = ast.Infinity
		}
	}

	if p.peek() != '}' {
		return nil, ErrUnterminatedRepeat
	}
	p.advance()

	if !max.Infinite && max.Num < min {
		return nil, ErrInvertedRepeat
	}

	return ast.NewRepeat(p.parseGreediness(), ast.Finite(min), max, elem), nil
}

// parseNumber reads a run of ASCII digits. ok is false if there were none.
func (p *parser) parseNumber() (uint32, bool) {
	start := p.pos
	var n uint32
	for !p.atEOF() && p.peek() >= '0' && p.peek() <= '9' {
		n = n*10 + uint32(p.advance()-'0')
	}
	return n, p.pos > start
}

// parseElement parses "element": a group, a character class, an anchor,
// a dot, or a single literal character.
func (p *parser) parseElement() (*ast.Node, error) {
	switch p.peek() {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '.':
		p.advance()
		return ast.NewMatchAny(), nil
	case '^':
		p.advance()
		return ast.NewPositionSOL(), nil
	case '$':
		p.advance()
		return ast.NewPositionEOL(), nil
	case '*', '+', '?', '{':
		return nil, ErrDanglingQuantifier
	case ')':
		return nil, ErrUnexpectedCloseParen
	case ']':
		return nil, ErrUnexpectedCloseBracket
	case '-', '}':
		return nil, ErrUnexpectedMetachar
	case '\\':
		return p.parseEscapedChar()
	default:
		return ast.NewMatchChar(p.advance()), nil
	}
}

// parseEscapedChar parses "'\' meta" at the current position, which must
// be a backslash.
func (p *parser) parseEscapedChar() (*ast.Node, error) {
	p.advance() // consume '\'
	if p.atEOF() {
		return nil, ErrUnsupportedEscape
	}
	c := p.advance()
	if !isMeta(c) {
		return nil, ErrUnsupportedEscape
	}
	return ast.NewMatchChar(c), nil
}

// parseGroup parses "'(' ( '?:' )? root ')'" after verifying the opening
// '(' is current.
func (p *parser) parseGroup() (*ast.Node, error) {
	p.advance() // consume '('

	noncapture := p.peek() == '?' && p.peekAt(1) == ':'
	var idx int
	if noncapture {
		p.advance()
		p.advance()
	} else {
		idx = p.nextGroup
		p.nextGroup++
	}

	if p.atEOF() {
		return nil, ErrUnterminatedGroup
	}
	items, err := p.parseAlternation(true)
	if err != nil {
		return nil, err
	}
	if p.peek() != ')' {
		return nil, ErrUnterminatedGroup
	}
	p.advance()

	if noncapture {
		return &ast.Node{Kind: ast.NonCaptureGroup, Children: items}, nil
	}
	return &ast.Node{Kind: ast.CaptureGroup, CaptureIndex: idx, Children: items}, nil
}

// parseClass parses "'[' set ']'" after verifying the opening '[' is
// current.
func (p *parser) parseClass() (*ast.Node, error) {
	p.advance() // consume '['

	exclude := false
	if p.peek() == '^' {
		p.advance()
		exclude = true
	}

	var items []*ast.Node
	for {
		if p.atEOF() {
			return nil, ErrUnterminatedClass
		}
		if p.peek() == ']' {
			break
		}
		item, err := p.parseSetItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.advance() // consume ']'

	if len(items) == 0 {
		return nil, ErrEmptyClass
	}
	if exclude {
		return &ast.Node{Kind: ast.ExcludeSet, Children: items}, nil
	}
	return &ast.Node{Kind: ast.IncludeSet, Children: items}, nil
}

// parseSetItem parses "char ( '-' char )?" inside a character class.
func (p *parser) parseSetItem() (*ast.Node, error) {
	lo, err := p.parseSetChar()
	if err != nil {
		return nil, err
	}

	if p.peek() == '-' && p.peekAt(1) != ']' && p.peekAt(1) != 0 {
		p.advance() // consume '-'
		hi, err := p.parseSetChar()
		if err != nil {
			return nil, err
		}
		if hi < lo {
			return nil, ErrInvertedRange
		}
		return ast.NewMatchRange(lo, hi), nil
	}
	return ast.NewMatchChar(lo), nil
}

// parseSetChar parses a single "char" inside a character class: any raw
// character (no metacharacter restriction other than the ']' terminator
// the caller already checked for), or a backslash escape of a
// metacharacter.
func (p *parser) parseSetChar() (rune, error) {
	if p.peek() == '\\' {
		p.advance()
		if p.atEOF() {
			return 0, ErrUnsupportedEscape
		}
		c := p.advance()
		if !isMeta(c) {
			return 0, ErrUnsupportedEscape
		}
		return c, nil
	}
	return p.advance(), nil
}
