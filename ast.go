package main

import (
	"fmt"
	"strings"
)

// Program is the parsed, immutable form of a source text: an ordered
// sequence of statements executed left to right against the value stack.
type Program struct {
	stmts []statement
}

func (p Program) String() string { return renderStatements(p.stmts) }

// A statement is one executable unit: an expression to evaluate and push,
// a builtin operation, a name definition, or a word reference.
type statement interface {
	fmt.Stringer
	stmtNode()
}

// exprStatement evaluates an expression into a value and pushes it.
type exprStatement struct {
	expr expression
}

// builtinStatement invokes a primitive operation.
type builtinStatement struct {
	op builtin
}

// defineStatement binds a word to a procedure body at the point of
// execution.
type defineStatement struct {
	name string
	body Procedure
}

// wordStatement references a definition by name; executing it splices the
// bound body onto the front of the pending queue.
type wordStatement struct {
	name string
}

// pushStatement re-pushes an already-evaluated value. It has no source
// form; keep splices one behind a quotation body to restore its preserved
// operand.
type pushStatement struct {
	v Value
}

func (exprStatement) stmtNode()    {}
func (builtinStatement) stmtNode() {}
func (defineStatement) stmtNode()  {}
func (wordStatement) stmtNode()    {}
func (pushStatement) stmtNode()    {}

func (s exprStatement) String() string    { return s.expr.String() }
func (s builtinStatement) String() string { return builtinNames[s.op] }
func (s defineStatement) String() string  { return fmt.Sprintf("def %v %v", s.name, s.body) }
func (s wordStatement) String() string    { return s.name }
func (s pushStatement) String() string    { return s.v.String() }

func statementsEqual(a, b statement) bool {
	switch av := a.(type) {
	case exprStatement:
		bv, ok := b.(exprStatement)
		return ok && valuesEqual(av.expr.value(), bv.expr.value())
	case builtinStatement:
		bv, ok := b.(builtinStatement)
		return ok && av.op == bv.op
	case defineStatement:
		bv, ok := b.(defineStatement)
		return ok && av.name == bv.name && valuesEqual(av.body, bv.body)
	case wordStatement:
		bv, ok := b.(wordStatement)
		return ok && av.name == bv.name
	case pushStatement:
		bv, ok := b.(pushStatement)
		return ok && valuesEqual(av.v, bv.v)
	}
	return false
}

// An expression is a literal, quotation, or list literal. Evaluating one
// always succeeds and never touches the stack; quotations evaluate to
// their Procedure value without running.
type expression interface {
	fmt.Stringer
	value() Value
}

type literalExpr struct {
	v Value
}

type procedureExpr struct {
	body []statement
}

type listExpr struct {
	elems []expression
}

func (e literalExpr) value() Value { return e.v }

func (e procedureExpr) value() Value { return Procedure{body: e.body} }

func (e listExpr) value() Value {
	l := make(List, len(e.elems))
	for i, el := range e.elems {
		l[i] = el.value()
	}
	return l
}

func (e literalExpr) String() string   { return e.v.String() }
func (e procedureExpr) String() string { return Procedure{body: e.body}.String() }
func (e listExpr) String() string      { return e.value().String() }

func renderStatements(stmts []statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
