package main

import (
	"context"
	"strings"
)

// Engine evaluates programs against a value stack and a definition
// environment. Control flow never recurses into the host stack: every
// construct that runs code (eval, if, keep, a defined word) splices its
// statements onto the front of the pending queue and lets run's drain
// loop pick them up.
type Engine struct {
	out   writeFlusher
	logfn func(mess string, args ...interface{})

	stack   []Value
	pending workQueue
	defs    map[string]Value
}

func (eng *Engine) logf(mess string, args ...interface{}) {
	if eng.logfn != nil {
		eng.logfn(mess, args...)
	}
}

// run drains the pending queue, executing one statement per iteration. It
// stops at the first statement error or when the context is done;
// whatever statements remain queued are cleared so a following run starts
// clean.
func (eng *Engine) run(ctx context.Context) error {
	for {
		stmt, ok := eng.pending.popFront()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			eng.pending.clear()
			return err
		}
		eng.logf("exec %v", stmt)
		if err := eng.step(stmt); err != nil {
			eng.pending.clear()
			return err
		}
		eng.logf("stack [%v]", eng.renderStack())
	}
}

// load appends a program's statements to the back of the pending queue.
func (eng *Engine) load(prog Program) {
	eng.pending.pushBack(prog.stmts...)
}

func (eng *Engine) step(stmt statement) error {
	switch st := stmt.(type) {
	case pushStatement:
		eng.push(st.v)
	case exprStatement:
		eng.push(st.expr.value())
	case defineStatement:
		eng.define(st.name, st.body)
	case builtinStatement:
		if n := builtinArity[st.op]; len(eng.stack) < n {
			return arityError{op: builtinNames[st.op], want: n, got: len(eng.stack)}
		}
		return builtinTable[st.op](eng)
	case wordStatement:
		return eng.word(st.name)
	}
	return nil
}

// word resolves an identifier against the definition environment. A
// procedure binding splices its body onto the queue; any other value is
// pushed, after chasing string-valued bindings that name further
// bindings.
func (eng *Engine) word(name string) error {
	v, ok := eng.defs[name]
	if !ok {
		return unresolvedError(name)
	}
	v, err := eng.chase(v)
	if err != nil {
		return err
	}
	if p, ok := v.(Procedure); ok {
		eng.pending.splice(p.body)
		return nil
	}
	eng.push(v)
	return nil
}

// chase follows a String value through the definition environment for as
// long as the string names an existing binding, so that `"x" 5 def x 1 +`
// and `"y" "x" def "x" 5 def y 1 +` both add to 5. A visited set guards
// against binding cycles.
func (eng *Engine) chase(v Value) (Value, error) {
	var visited map[string]struct{}
	for {
		s, ok := v.(String)
		if !ok {
			return v, nil
		}
		next, ok := eng.defs[string(s)]
		if !ok {
			return v, nil
		}
		if visited == nil {
			visited = make(map[string]struct{})
		}
		if _, seen := visited[string(s)]; seen {
			return nil, cycleError(string(s))
		}
		visited[string(s)] = struct{}{}
		v = next
	}
}

func (eng *Engine) define(name string, v Value) {
	eng.logf("def %q = %v", name, v)
	eng.defs[name] = v
}

func (eng *Engine) push(v Value) {
	eng.stack = append(eng.stack, v)
}

// pop removes and returns the top of the stack. Callers rely on the
// arity check in step having verified depth.
func (eng *Engine) pop() Value {
	n := len(eng.stack) - 1
	v := eng.stack[n]
	eng.stack[n] = nil
	eng.stack = eng.stack[:n]
	return v
}

func (eng *Engine) top() Value {
	return eng.stack[len(eng.stack)-1]
}

func (eng *Engine) renderStack() string {
	var sb strings.Builder
	for i, v := range eng.stack {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}
