package main

import (
	"strconv"
	"strings"
)

// Value is the runtime representation of every piece of data a program can
// manipulate. It is a closed union: Bool, Number, String, Procedure, or
// List. Values are immutable once constructed; duplicating a stack slot
// copies the value logically, so no two live references share mutable
// state.
type Value interface {
	kind() valueKind
	String() string
}

// valueKind ranks the variants for cross-kind ordering: values of
// different kinds order by kind before any per-kind comparison applies.
type valueKind int

const (
	boolKind valueKind = iota
	numberKind
	stringKind
	procedureKind
	listKind
)

// Bool is a boolean value.
type Bool bool

// Number is a numerical value represented as a float64.
type Number float64

// String is a textual value, displayed with its literal quoting.
type String string

// Procedure is a quotation's body: statements pushed as data and run only
// when spliced onto the pending queue by eval, if, keep, or a word
// reference.
type Procedure struct {
	body []statement
}

// List is an ordered sequence of values.
type List []Value

func (Bool) kind() valueKind      { return boolKind }
func (Number) kind() valueKind    { return numberKind }
func (String) kind() valueKind    { return stringKind }
func (Procedure) kind() valueKind { return procedureKind }
func (List) kind() valueKind      { return listKind }

func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (s String) String() string { return strconv.Quote(string(s)) }

func (p Procedure) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for _, stmt := range p.body {
		sb.WriteByte(' ')
		sb.WriteString(stmt.String())
	}
	if len(p.body) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteByte('}')
	return sb.String()
}

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for _, v := range l {
		sb.WriteByte(' ')
		sb.WriteString(v.String())
	}
	if len(l) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteByte(']')
	return sb.String()
}

// valuesEqual reports structural equality, defined recursively across all
// variants. Values of different kinds are never equal. Number follows IEEE
// comparison, so NaN is not equal to itself.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Procedure:
		bv, ok := b.(Procedure)
		if !ok || len(av.body) != len(bv.body) {
			return false
		}
		for i := range av.body {
			if !statementsEqual(av.body[i], bv.body[i]) {
				return false
			}
		}
		return true
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// valuesLess reports a < b under the structural ordering: kind rank first
// (Bool < Number < String < Procedure < List), then per-kind comparison.
// Number uses IEEE semantics, so any comparison involving NaN is false.
// Lists compare lexicographically; procedures compare by rendered form.
func valuesLess(a, b Value) bool {
	if ak, bk := a.kind(), b.kind(); ak != bk {
		return ak < bk
	}
	switch av := a.(type) {
	case Bool:
		return !bool(av) && bool(b.(Bool))
	case Number:
		return av < b.(Number)
	case String:
		return av < b.(String)
	case Procedure:
		return av.String() < b.(Procedure).String()
	case List:
		bv := b.(List)
		n := len(av)
		if len(bv) < n {
			n = len(bv)
		}
		for i := 0; i < n; i++ {
			if valuesLess(av[i], bv[i]) {
				return true
			}
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return len(av) < len(bv)
	}
	return false
}

// valuesLessEq reports a <= b; with NaN on either side both the less-than
// and equality legs are false, matching IEEE.
func valuesLessEq(a, b Value) bool {
	return valuesLess(a, b) || valuesEqual(a, b)
}

// The arithmetic operators are defined for Numbers only; any other operand
// is a type mismatch. Division follows IEEE float division, so dividing by
// zero yields an infinity rather than an error.

func addValues(a, b Value) (Value, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x + y, nil
		}
	}
	return nil, operandError{op: "+", format: "can't add %v and %v", args: []Value{a, b}}
}

func subValues(a, b Value) (Value, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x - y, nil
		}
	}
	return nil, operandError{op: "-", format: "can't subtract %v from %v", args: []Value{b, a}}
}

func mulValues(a, b Value) (Value, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x * y, nil
		}
	}
	return nil, operandError{op: "*", format: "can't multiply %v and %v", args: []Value{a, b}}
}

func divValues(a, b Value) (Value, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return x / y, nil
		}
	}
	return nil, operandError{op: "/", format: "can't divide %v by %v", args: []Value{a, b}}
}

// notValue negates a Bool; anything else is a type mismatch.
func notValue(v Value) (Value, error) {
	if b, ok := v.(Bool); ok {
		return !b, nil
	}
	return nil, operandError{op: "!", format: "can't negate %v", args: []Value{v}}
}
