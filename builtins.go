package main

import (
	"fmt"
	"strings"
)

// builtin identifies a primitive operation. Each builtin has a fixed
// surface token and arity; the engine validates the stack depth against
// the arity before dispatching, so an implementation may assume its
// operands are present.
type builtin int

const (
	builtinAdd builtin = iota // +       pop b,a; push a+b
	builtinSub                // -       pop b,a; push a-b
	builtinMul                // *       pop b,a; push a*b
	builtinDiv                // /       pop b,a; push a/b
	builtinEq                 // =       pop b,a; push structural equality
	builtinLt                 // <       pop b,a; push a < b
	builtinLe                 // <=      pop b,a; push a <= b
	builtinGt                 // >       pop b,a; push a > b
	builtinGe                 // >=      pop b,a; push a >= b
	builtinNot                // !       pop a; push logical negation
	builtinDup                // dup     duplicate the top value
	builtinDup2               // 2dup    duplicate the top two, preserving order
	builtinSwap               // swap    exchange the top two
	builtinDrop               // drop    discard the top value
	builtinDrop2              // 2drop   discard the top two
	builtinDrop3              // 3drop   discard the top three
	builtinOver               // over    push a copy of the second-from-top
	builtinDupd               // dupd    duplicate the second-from-top in place
	builtinRotl               // rotl    a b c -- b c a
	builtinRotr               // rotr    a b c -- c a b
	builtinKeep               // keep    run a quotation, then restore its operand
	builtinEval               // eval    splice a procedure's body onto the queue
	builtinIf                 // if      cond then else -- splice one branch
	builtinNth                // nth     index list -- item
	builtinPrintln            // println pop and print, newline terminated
	builtinDef                // def     name value -- bind name in the environment

	builtinMax
)

var builtinTable [builtinMax]func(eng *Engine) error
var builtinNames [builtinMax]string
var builtinArity [builtinMax]int

func init() {
	builtinTable = [...]func(eng *Engine) error{
		(*Engine).add,
		(*Engine).sub,
		(*Engine).mul,
		(*Engine).div,
		(*Engine).eq,
		(*Engine).lt,
		(*Engine).le,
		(*Engine).gt,
		(*Engine).ge,
		(*Engine).not,
		(*Engine).dup,
		(*Engine).dup2,
		(*Engine).swap,
		(*Engine).drop,
		(*Engine).drop2,
		(*Engine).drop3,
		(*Engine).over,
		(*Engine).dupd,
		(*Engine).rotl,
		(*Engine).rotr,
		(*Engine).keep,
		(*Engine).eval,
		(*Engine).branch,
		(*Engine).nth,
		(*Engine).println,
		(*Engine).def,
	}

	builtinNames = [...]string{
		"+",
		"-",
		"*",
		"/",
		"=",
		"<",
		"<=",
		">",
		">=",
		"!",
		"dup",
		"2dup",
		"swap",
		"drop",
		"2drop",
		"3drop",
		"over",
		"dupd",
		"rotl",
		"rotr",
		"keep",
		"eval",
		"if",
		"nth",
		"println",
		"def",
	}

	builtinArity = [...]int{
		2, // +
		2, // -
		2, // *
		2, // /
		2, // =
		2, // <
		2, // <=
		2, // >
		2, // >=
		1, // !
		1, // dup
		2, // 2dup
		2, // swap
		1, // drop
		2, // 2drop
		3, // 3drop
		2, // over
		2, // dupd
		3, // rotl
		3, // rotr
		2, // keep
		1, // eval
		3, // if
		2, // nth
		1, // println
		2, // def
	}
}

// builtinTokens lists every builtin in the order the parser tries them.
// Wherever one token is a prefix of another the longer one must come
// first (`<=` before `<`, `dupd` before `dup`); otherwise the shorter
// token silently claims the front of the longer one and leaves unparsable
// input behind. The init check below refuses to start with a bad order.
var builtinTokens = []builtin{
	builtinDrop2,
	builtinDrop3,
	builtinDup2,
	builtinDupd,
	builtinDrop,
	builtinDup,
	builtinSwap,
	builtinOver,
	builtinRotl,
	builtinRotr,
	builtinKeep,
	builtinEval,
	builtinPrintln,
	builtinNth,
	builtinDef,
	builtinIf,
	builtinLe,
	builtinLt,
	builtinGe,
	builtinGt,
	builtinEq,
	builtinNot,
	builtinAdd,
	builtinSub,
	builtinMul,
	builtinDiv,
}

func init() {
	if len(builtinTokens) != int(builtinMax) {
		panic(fmt.Sprintf("builtinTokens lists %v of %v builtins", len(builtinTokens), int(builtinMax)))
	}
	for i, op := range builtinTokens {
		for _, later := range builtinTokens[i+1:] {
			if strings.HasPrefix(builtinNames[later], builtinNames[op]) {
				panic(fmt.Sprintf("builtin token %q is shadowed by earlier %q",
					builtinNames[later], builtinNames[op]))
			}
		}
	}
}

//// Arithmetic, comparison, and negation. Operands are chased through the
//// definition environment first, so a value bound to a name behaves the
//// same as a literal.

func (eng *Engine) add() error { return eng.binop(addValues) }
func (eng *Engine) sub() error { return eng.binop(subValues) }
func (eng *Engine) mul() error { return eng.binop(mulValues) }
func (eng *Engine) div() error { return eng.binop(divValues) }

func (eng *Engine) eq() error { return eng.compare(valuesEqual) }
func (eng *Engine) lt() error { return eng.compare(valuesLess) }
func (eng *Engine) le() error { return eng.compare(valuesLessEq) }
func (eng *Engine) gt() error {
	return eng.compare(func(a, b Value) bool { return valuesLess(b, a) })
}
func (eng *Engine) ge() error {
	return eng.compare(func(a, b Value) bool { return valuesLessEq(b, a) })
}

func (eng *Engine) binop(f func(a, b Value) (Value, error)) error {
	b, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	a, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	v, err := f(a, b)
	if err != nil {
		return err
	}
	eng.push(v)
	return nil
}

func (eng *Engine) compare(pred func(a, b Value) bool) error {
	b, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	a, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	eng.push(Bool(pred(a, b)))
	return nil
}

func (eng *Engine) not() error {
	a, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	v, err := notValue(a)
	if err != nil {
		return err
	}
	eng.push(v)
	return nil
}

//// Stack shuffling.

func (eng *Engine) dup() error {
	eng.push(eng.top())
	return nil
}

func (eng *Engine) dup2() error {
	n := len(eng.stack)
	a, b := eng.stack[n-2], eng.stack[n-1]
	eng.push(a)
	eng.push(b)
	return nil
}

func (eng *Engine) swap() error {
	n := len(eng.stack)
	eng.stack[n-1], eng.stack[n-2] = eng.stack[n-2], eng.stack[n-1]
	return nil
}

func (eng *Engine) drop() error  { return eng.dropn(1) }
func (eng *Engine) drop2() error { return eng.dropn(2) }
func (eng *Engine) drop3() error { return eng.dropn(3) }

func (eng *Engine) dropn(n int) error {
	for i := 0; i < n; i++ {
		eng.pop()
	}
	return nil
}

func (eng *Engine) over() error {
	eng.push(eng.stack[len(eng.stack)-2])
	return nil
}

// dupd duplicates the second-from-top in place, below the top:
// a b -- a a b.
func (eng *Engine) dupd() error {
	n := len(eng.stack)
	a, b := eng.stack[n-2], eng.stack[n-1]
	eng.stack[n-1] = a
	eng.push(b)
	return nil
}

// rotl rotates the top three left: a b c -- b c a.
func (eng *Engine) rotl() error {
	n := len(eng.stack)
	eng.stack[n-3], eng.stack[n-2], eng.stack[n-1] =
		eng.stack[n-2], eng.stack[n-1], eng.stack[n-3]
	return nil
}

// rotr rotates the top three right: a b c -- c a b.
func (eng *Engine) rotr() error {
	n := len(eng.stack)
	eng.stack[n-3], eng.stack[n-2], eng.stack[n-1] =
		eng.stack[n-1], eng.stack[n-3], eng.stack[n-2]
	return nil
}

//// Quotation control. These never call back into the drain loop; they
//// splice the quotation's statements onto the front of the pending queue
//// and let the loop carry on, so language-level recursion costs queue
//// memory rather than host stack.

// keep runs a quotation with its second operand still on the stack, then
// pushes that operand back after the quotation's statements finish:
// a quot -- (quot applied) a.
func (eng *Engine) keep() error {
	q, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	p, ok := q.(Procedure)
	if !ok {
		return operandError{op: "keep", format: "can't evaluate %v", args: []Value{q}}
	}
	eng.pending.splice([]statement{pushStatement{v: eng.top()}})
	eng.pending.splice(p.body)
	return nil
}

func (eng *Engine) eval() error {
	v, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	p, ok := v.(Procedure)
	if !ok {
		return operandError{op: "eval", format: "can't evaluate %v", args: []Value{v}}
	}
	eng.pending.splice(p.body)
	return nil
}

// branch implements if: it selects the then-procedure when the condition
// is Bool true and the else-procedure otherwise, splicing the selected
// body onto the pending queue. A non-Bool condition selects the else
// branch; a selected non-procedure is an error.
func (eng *Engine) branch() error {
	alt, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	then, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	cond, err := eng.chase(eng.pop())
	if err != nil {
		return err
	}
	selected := alt
	if b, ok := cond.(Bool); ok && bool(b) {
		selected = then
	}
	p, ok := selected.(Procedure)
	if !ok {
		return operandError{op: "if", format: "can't evaluate %v", args: []Value{selected}}
	}
	eng.pending.splice(p.body)
	return nil
}

//// Lists, output, and definitions.

// nth indexes a list: index list -- item. The index must be a
// non-negative integral Number within the list's bounds.
func (eng *Engine) nth() error {
	list := eng.pop()
	idx := eng.pop()
	n, okn := idx.(Number)
	l, okl := list.(List)
	if !okn || !okl {
		return operandError{op: "nth", format: "can't index %v by %v", args: []Value{list, idx}}
	}
	// Range first: the int conversion below is only defined for values
	// that fit in an int.
	if n < 0 || float64(n) >= float64(len(l)) {
		return indexError{index: float64(n), length: len(l)}
	}
	if float64(n) != float64(int(n)) {
		return operandError{op: "nth", format: "can't index %v by %v", args: []Value{list, idx}}
	}
	eng.push(l[int(n)])
	return nil
}

// println pops and prints the top value: Strings print their raw text,
// everything else its display form.
func (eng *Engine) println() error {
	v := eng.pop()
	text := v.String()
	if s, ok := v.(String); ok {
		text = string(s)
	}
	_, err := fmt.Fprintln(eng.out, text)
	return err
}

// def pops a value and a name and binds the name in the definition
// environment, overwriting any previous binding. The name operand must be
// a String holding exactly one identifier token.
func (eng *Engine) def() error {
	v := eng.pop()
	name := eng.pop()
	s, ok := name.(String)
	if !ok || !isIdentifier(string(s)) {
		return defTargetError{got: name}
	}
	eng.define(string(s), v)
	return nil
}
