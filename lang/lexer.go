package lang

import (
	"slices"
	"unicode/utf8"
)

// Lex scans src into a flat sequence of lines. Each line holds its tokens,
// with () and [] groups already nested, and its indentation.
//
// A line ends at a newline or a semicolon. A statement that follows a
// semicolon inherits the indentation of the line it shares. Lines without
// tokens are blank and always have indentation zero, so they delimit blocks.
func Lex(src []byte) []*Line {
	if len(src) == 0 || src[len(src)-1] != '\n' {
		src = append(slices.Clip(src), '\n')
	}

	lx := lexer{src: src, cur: &Line{}, fresh: true}
	lx.run()

	return lx.lines
}

type lexer struct {
	src   []byte
	pos   int
	lines []*Line
	cur   *Line
	fresh bool // counting indentation
	split bool // cur follows a semicolon
}

func (lx *lexer) run() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		if lx.fresh {
			if c == ' ' {
				lx.cur.Indent++
				lx.pos++

				continue
			}

			lx.fresh = false
		}

		switch {
		case c == '\n':
			lx.pos++
			lx.endLine(false)

		case c == ';':
			lx.pos++
			lx.endLine(true)

		case c == '#':
			lx.emit(Token{Kind: KindComment})

			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}

		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++

		case isDigit(c) || (c == '-' && isDigit(lx.peek(1))):
			lx.number()

		case isLetter(c) || c == '_':
			lx.word()

		case c == '\'' || c == '"' || c == '`':
			lx.quote()

		default:
			lx.operator()
		}
	}

	if len(lx.cur.Tokens) > 0 {
		lx.endLine(false)
	}
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}

	return 0
}

func (lx *lexer) emit(t Token) { lx.cur.Tokens = append(lx.cur.Tokens, t) }

func (lx *lexer) endLine(semicolon bool) {
	l := lx.cur

	switch {
	case len(l.Tokens) > 0:
		l.Tokens = NestBrackets(l.Tokens, KindCircleBegin, KindCircleEnd)
		l.Tokens = NestBrackets(l.Tokens, KindSquareBegin, KindSquareEnd)
		lx.lines = append(lx.lines, l)

	case !lx.split && !semicolon:
		l.Indent = 0
		lx.lines = append(lx.lines, l)
	}

	if semicolon {
		lx.cur = &Line{Indent: l.Indent}
		lx.fresh, lx.split = false, true

		return
	}

	lx.cur = &Line{}
	lx.fresh, lx.split = true, false
}

func (lx *lexer) number() {
	start := lx.pos
	neg := lx.src[lx.pos] == '-'

	if neg {
		lx.pos++
	}

	var dot, rational bool

scan:
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case isDigit(c):
			lx.pos++

		case c == '.' && !dot && !rational && isDigit(lx.peek(1)):
			dot = true
			lx.pos++

		case c == '/' && !dot && !rational &&
			lx.peek(1) == '/' && isDigit(lx.peek(2)):
			rational = true
			lx.pos += 2

		default:
			break scan
		}
	}

	var kind Kind

	switch {
	case rational:
		kind = KindRational
	case dot && neg:
		kind = KindFloat
	case dot:
		kind = KindUFloat
	case neg:
		kind = KindInt
	default:
		kind = KindUInt
	}

	lx.emit(Token{Kind: kind, Data: string(lx.src[start:lx.pos])})
}

func (lx *lexer) word() {
	start := lx.pos
	link := false

scan:
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case isWordByte(c):
			lx.pos++

		case c == '.' && isWordByte(lx.peek(1)):
			link = true
			lx.pos++

		case c == '[' && link:
			n := lx.simpleIndex()
			if n == 0 {
				break scan
			}

			lx.pos += n

		default:
			break scan
		}
	}

	data := string(lx.src[start:lx.pos])

	switch {
	case link:
		lx.emit(Token{Kind: KindLink, Data: data})
	case data == "true":
		lx.emit(Bool(true))
	case data == "false":
		lx.emit(Bool(false))
	default:
		if k, ok := ParseType(data); ok {
			lx.emit(Type(k))

			return
		}

		lx.emit(Token{Kind: KindWord, Data: data})
	}
}

// simpleIndex returns the length of a bracketed index made only of word
// characters, such as [0] or [i], at the current position, or zero.
func (lx *lexer) simpleIndex() int {
	n := 1
	for isWordByte(lx.peek(n)) {
		n++
	}

	if n == 1 || lx.peek(n) != ']' {
		return 0
	}

	return n + 1
}

func (lx *lexer) quote() {
	q := lx.src[lx.pos]
	lx.pos++
	start := lx.pos

	var (
		buf    []byte
		closed bool
	)

	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		c := lx.src[lx.pos]
		lx.pos++

		if c == q {
			if backslashes(lx.src[start:lx.pos-1])%2 == 1 {
				buf[len(buf)-1] = c

				continue
			}

			closed = true

			break
		}

		buf = append(buf, c)
	}

	if !closed {
		lx.emit(None())

		return
	}

	var t Token

	switch q {
	case '\'':
		r, ok := decodeChar(string(buf))
		if !ok {
			lx.emit(None())

			return
		}

		t = Token{Kind: KindChar, Data: string(r)}
	case '"':
		t = Token{Kind: KindString, Data: string(buf)}
	default:
		t = Token{Kind: KindRawString, Data: string(buf)}
	}

	if n := len(lx.cur.Tokens); n > 0 {
		if prev := lx.cur.Tokens[n-1]; prev.Kind == KindWord && prev.Data == "f" {
			t.Kind = t.Kind.formatted()
			lx.cur.Tokens[n-1] = t

			return
		}
	}

	lx.emit(t)
}

// backslashes counts the consecutive backslashes that end b.
func backslashes(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\\'; i-- {
		n++
	}

	return n
}

var charEscapes = map[string]rune{
	`\n`:  '\n',
	`\t`:  '\t',
	`\r`:  '\r',
	`\0`:  0,
	`\\`:  '\\',
	`\"`:  '"',
	"\\`": '`',
}

func decodeChar(s string) (rune, bool) {
	if r, ok := charEscapes[s]; ok {
		return r, true
	}

	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s)

	return r, r != utf8.RuneError
}

// operators maps an operator byte to the kind it produces alone and the kinds
// produced when it is followed by a second byte.
var operators = map[byte]struct {
	single Kind
	double map[byte]Kind
}{
	'+': {KindPlus, map[byte]Kind{'=': KindPlusEquals, '+': KindUnaryPlus}},
	'-': {KindMinus, map[byte]Kind{
		'=': KindMinusEquals, '-': KindUnaryMinus, '>': KindPointer,
	}},
	'*': {KindMultiply, map[byte]Kind{'=': KindMultiplyEquals, '*': KindUnaryMultiply}},
	'/': {KindDivide, map[byte]Kind{'=': KindDivideEquals, '/': KindUnaryDivide}},
	'%': {KindModulo, map[byte]Kind{'=': KindModuloEquals, '%': KindUnaryModulo}},
	'^': {KindDisjoint, map[byte]Kind{'=': KindExponentEquals, '^': KindUnaryExponent}},
	'>': {KindGreaterThan, map[byte]Kind{'=': KindGreaterThanOrEquals}},
	'<': {KindLessThan, map[byte]Kind{'=': KindLessThanOrEquals}},
	'!': {KindExclusion, map[byte]Kind{'=': KindNotEquals}},
	'~': {KindTilde, map[byte]Kind{'~': KindDoubleTilde}},
	'=': {KindEquals, map[byte]Kind{'=': KindEquals}},
	'&': {KindJoint, nil},
	'|': {KindInclusion, nil},
	'(': {KindCircleBegin, nil},
	')': {KindCircleEnd, nil},
	'[': {KindSquareBegin, nil},
	']': {KindSquareEnd, nil},
	'{': {KindFigureBegin, nil},
	'}': {KindFigureEnd, nil},
	':': {KindColon, nil},
	',': {KindComma, nil},
	'.': {KindDot, nil},
	'?': {KindQuestion, nil},
}

func (lx *lexer) operator() {
	op, ok := operators[lx.src[lx.pos]]
	if !ok {
		// Unrecognized bytes are skipped, a multi-byte rune all at once.
		_, size := utf8.DecodeRune(lx.src[lx.pos:])
		lx.pos += size

		return
	}

	if k, ok := op.double[lx.peek(1)]; ok {
		lx.pos += 2
		lx.emit(Token{Kind: k})

		return
	}

	lx.pos++
	lx.emit(Token{Kind: op.single})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }
