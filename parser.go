package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse converts source text into a Program, consuming all input. On
// malformed input it returns a *ParseError carrying the position of the
// failure and the trace of grammar rules active there.
func Parse(text string) (Program, error) {
	p := &parser{src: text}
	defer p.popRule(p.pushRule("Program"))
	stmts, err := p.statements()
	if err != nil {
		return Program{}, err
	}
	if !p.eof() {
		return Program{}, p.failf("unexpected input %s", p.excerpt())
	}
	return Program{stmts: stmts}, nil
}

// ParseError describes why and where parsing failed. Trace holds the names
// of the grammar rules active at the failure point, innermost first, so a
// caller can render an "expected X while parsing Y while parsing Z" chain.
// Incomplete marks input that ended inside an open construct (a quotation,
// list, string, or definition), which an interactive reader can treat as
// "not yet enough input" rather than a hard rejection.
type ParseError struct {
	Offset     int
	Line       int
	Col        int
	Trace      []string
	Message    string
	Incomplete bool
}

func (err *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v:%v: %v", err.Line, err.Col, err.Message)
	for _, rule := range err.Trace {
		fmt.Fprintf(&sb, " while parsing %v", rule)
	}
	return sb.String()
}

// errNoMatch is the soft, backtrackable failure used inside rule
// alternation. It never escapes Parse: rules either recover from it by
// trying another alternative or convert it into a committed *ParseError.
var errNoMatch = errors.New("no match")

type parser struct {
	src   string
	pos   int
	rules []string
}

//// Grammar rules.

// statements parses zero or more whitespace-separated statements, spanning
// newlines and end-of-line comments, stopping before input it cannot claim
// (a closing delimiter, or junk that triggers the caller's error).
func (p *parser) statements() ([]statement, error) {
	stmts := []statement{}
	for {
		p.skipSpace()
		if p.eof() {
			return stmts, nil
		}
		mark := p.pos
		stmt, err := p.statement()
		if err == errNoMatch {
			p.pos = mark
			return stmts, nil
		}
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// statement parses one statement, trying alternatives in order: a def
// definition, a builtin token, a bare identifier (word reference), then an
// expression.
func (p *parser) statement() (statement, error) {
	defer p.popRule(p.pushRule("Statement"))

	if stmt, err := p.definition(); err != errNoMatch {
		return stmt, err
	}
	if op, err := p.builtin(); err == nil {
		return builtinStatement{op: op}, nil
	}
	if name, err := p.identifier(); err == nil {
		return wordStatement{name: name}, nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	return exprStatement{expr: expr}, nil
}

// definition parses `def <identifier> { ... }`. The statement form is
// claimed only when the name is followed by an opening brace (or by end
// of input, reported as incomplete so an interactive reader can prompt
// for the body); anything else backtracks so that `def` keeps its builtin
// reading, which takes the name from the stack, as in `"x" 5 def x`.
// Once the brace is in sight the parse is committed: a malformed body is
// a hard failure rather than a fallback to another alternative.
func (p *parser) definition() (statement, error) {
	mark := p.pos
	if !p.eat("def") || p.skipSpace() == 0 || !p.atIdentifier() {
		p.pos = mark
		return nil, errNoMatch
	}
	name, err := p.identifier()
	if err != nil {
		p.pos = mark
		return nil, errNoMatch
	}
	p.skipSpace()
	if !p.eof() && p.src[p.pos] != '{' {
		p.pos = mark
		return nil, errNoMatch
	}
	defer p.popRule(p.pushRule("Definition"))

	if p.eof() {
		return nil, p.failIncomplete("expected procedure body for %q", name)
	}
	body, err := p.procedure()
	if err != nil {
		return nil, err
	}
	return defineStatement{name: name, body: Procedure{body: body}}, nil
}

// builtin matches one of the builtin tokens. The alternatives are tried in
// the explicit longest-prefix-first order of builtinTokens so that `<=`
// can never misparse as `<` with leftover input, and a token boundary is
// required after the match so that `-5` stays a signed number literal and
// `dropped` stays an identifier.
func (p *parser) builtin() (builtin, error) {
	rest := p.src[p.pos:]
	for _, op := range builtinTokens {
		name := builtinNames[op]
		if strings.HasPrefix(rest, name) && p.boundaryAt(p.pos+len(name)) {
			p.pos += len(name)
			return op, nil
		}
	}
	return 0, errNoMatch
}

// identifier matches (letter | '_') alnum* '?'? up to a token boundary.
// The boolean literals and the non-finite number spellings are reserved
// words and never parse as identifiers.
func (p *parser) identifier() (string, error) {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if r != '_' && !unicode.IsLetter(r) {
		return "", errNoMatch
	}
	end := p.pos + size
	for end < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[end:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		end += size
	}
	if end < len(p.src) && p.src[end] == '?' {
		end++
	}
	if !p.boundaryAt(end) {
		return "", errNoMatch
	}
	name := p.src[p.pos:end]
	if name == "true" || name == "false" || name == "Inf" || name == "NaN" {
		return "", errNoMatch
	}
	p.pos = end
	return name, nil
}

// atIdentifier reports whether the input at the current position starts
// like an identifier.
func (p *parser) atIdentifier() bool {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r == '_' || unicode.IsLetter(r)
}

// isIdentifier reports whether s is exactly one identifier token. The def
// builtin uses it to validate definition targets taken from the stack.
func isIdentifier(s string) bool {
	p := &parser{src: s}
	name, err := p.identifier()
	return err == nil && name == s
}

// expression parses a literal, a procedure, or a list.
func (p *parser) expression() (expression, error) {
	defer p.popRule(p.pushRule("Expression"))

	if v, err := p.literal(); err == nil {
		return literalExpr{v: v}, nil
	} else if err != errNoMatch {
		return nil, err
	}
	if body, err := p.procedure(); err == nil {
		return procedureExpr{body: body}, nil
	} else if err != errNoMatch {
		return nil, err
	}
	if elems, err := p.list(); err == nil {
		return listExpr{elems: elems}, nil
	} else if err != errNoMatch {
		return nil, err
	}
	return nil, errNoMatch
}

// literal parses a number, string, or boolean literal.
func (p *parser) literal() (Value, error) {
	if v, err := p.number(); err != errNoMatch {
		return v, err
	}
	if v, err := p.stringLit(); err != errNoMatch {
		return v, err
	}
	return p.boolean()
}

// number matches standard floating-point syntax: optional sign, digits,
// optional fraction, optional exponent. The non-finite spellings Inf and
// NaN are also accepted so that every rendered number reads back.
func (p *parser) number() (Value, error) {
	end := p.pos
	if end < len(p.src) && (p.src[end] == '+' || p.src[end] == '-') {
		end++
	}
	for _, lit := range [...]string{"Inf", "NaN"} {
		if strings.HasPrefix(p.src[end:], lit) && p.boundaryAt(end+len(lit)) {
			f, err := strconv.ParseFloat(p.src[p.pos:end+len(lit)], 64)
			if err != nil {
				return nil, errNoMatch
			}
			p.pos = end + len(lit)
			return Number(f), nil
		}
	}
	digits := func() bool {
		start := end
		for end < len(p.src) && p.src[end] >= '0' && p.src[end] <= '9' {
			end++
		}
		return end > start
	}
	if !digits() {
		if end >= len(p.src) || p.src[end] != '.' {
			return nil, errNoMatch
		}
		end++
		if !digits() {
			return nil, errNoMatch
		}
	} else if end < len(p.src) && p.src[end] == '.' {
		end++
		digits()
	}
	if end < len(p.src) && (p.src[end] == 'e' || p.src[end] == 'E') {
		mark := end
		end++
		if end < len(p.src) && (p.src[end] == '+' || p.src[end] == '-') {
			end++
		}
		if !digits() {
			end = mark
		}
	}
	if !p.boundaryAt(end) {
		return nil, errNoMatch
	}
	f, err := strconv.ParseFloat(p.src[p.pos:end], 64)
	if err != nil {
		return nil, errNoMatch
	}
	p.pos = end
	return Number(f), nil
}

// stringLit parses a double-quoted string literal. Once the opening quote
// has been seen the parse is committed: a bad escape is a hard failure and
// a missing closing quote is a hard, incomplete failure.
func (p *parser) stringLit() (Value, error) {
	if p.eof() || p.src[p.pos] != '"' {
		return nil, errNoMatch
	}
	defer p.popRule(p.pushRule("String"))
	p.pos++

	var sb strings.Builder
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		switch r {
		case '"':
			p.pos++
			return String(sb.String()), nil
		case '\n':
			return nil, p.failf("unterminated string")
		case '\\':
			p.pos++
			if p.eof() {
				return nil, p.failIncomplete("unterminated string")
			}
			switch c := p.src[p.pos]; c {
			case '"', '\\':
				sb.WriteByte(c)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return nil, p.failf("unknown escape %q", string(c))
			}
			p.pos++
		default:
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return nil, p.failIncomplete("unterminated string")
}

// boolean matches exactly `true` or `false` up to a token boundary.
func (p *parser) boolean() (Value, error) {
	for _, lit := range [...]string{"true", "false"} {
		if strings.HasPrefix(p.src[p.pos:], lit) && p.boundaryAt(p.pos+len(lit)) {
			p.pos += len(lit)
			return Bool(lit == "true"), nil
		}
	}
	return nil, errNoMatch
}

// procedure parses `{ statement* }`, braces possibly empty. Once inside
// the braces a missing closing delimiter is a hard failure, incomplete at
// end of input.
func (p *parser) procedure() ([]statement, error) {
	if p.eof() || p.src[p.pos] != '{' {
		return nil, errNoMatch
	}
	defer p.popRule(p.pushRule("Procedure"))
	p.pos++

	stmts, err := p.statements()
	if err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, p.failIncomplete("expected }")
	}
	if p.src[p.pos] != '}' {
		return nil, p.failf("expected }, found %s", p.excerpt())
	}
	p.pos++
	return stmts, nil
}

// list parses `[ expression* ]`, space separated, brackets possibly empty
// or holding surrounding whitespace. Once inside the brackets a missing
// closing delimiter is a hard failure, incomplete at end of input.
func (p *parser) list() ([]expression, error) {
	if p.eof() || p.src[p.pos] != '[' {
		return nil, errNoMatch
	}
	defer p.popRule(p.pushRule("List"))
	p.pos++

	elems := []expression{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.failIncomplete("expected ]")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return elems, nil
		}
		e, err := p.expression()
		if err == errNoMatch {
			return nil, p.failf("expected expression or ], found %s", p.excerpt())
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
}

//// Input primitives.

func (p *parser) eof() bool { return p.pos >= len(p.src) }

// eat consumes s if the input starts with it.
func (p *parser) eat(s string) bool {
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// skipSpace consumes whitespace, newlines, and end-of-line comments,
// returning the number of bytes consumed.
func (p *parser) skipSpace() int {
	start := p.pos
	for !p.eof() {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return p.pos - start
		}
	}
	return p.pos - start
}

// boundaryAt reports whether offset sits on a token boundary: whitespace,
// a comment, a closing delimiter, or the end of input.
func (p *parser) boundaryAt(offset int) bool {
	if offset >= len(p.src) {
		return true
	}
	switch p.src[offset] {
	case ' ', '\t', '\n', '\r', '#', '}', ']':
		return true
	}
	return false
}

// excerpt quotes the input at the current position for error messages.
func (p *parser) excerpt() string {
	const max = 12
	rest := p.src[p.pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	if len(rest) > max {
		rest = rest[:max] + "..."
	}
	return strconv.Quote(rest)
}

//// Failure plumbing.

func (p *parser) pushRule(name string) int {
	p.rules = append(p.rules, name)
	return len(p.rules) - 1
}

func (p *parser) popRule(depth int) { p.rules = p.rules[:depth] }

func (p *parser) fail(incomplete bool, format string, args ...interface{}) *ParseError {
	trace := make([]string, 0, len(p.rules))
	for i := len(p.rules) - 1; i >= 0; i-- {
		trace = append(trace, p.rules[i])
	}
	line, col := textPosition(p.src, p.pos)
	return &ParseError{
		Offset:     p.pos,
		Line:       line,
		Col:        col,
		Trace:      trace,
		Message:    fmt.Sprintf(format, args...),
		Incomplete: incomplete,
	}
}

func (p *parser) failf(format string, args ...interface{}) *ParseError {
	return p.fail(false, format, args...)
}

func (p *parser) failIncomplete(format string, args ...interface{}) *ParseError {
	return p.fail(true, format, args...)
}

// textPosition converts a byte offset to a 1-based line and column.
func textPosition(src string, offset int) (line, col int) {
	line, col = 1, 1
	for _, r := range src[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
