package main

import "fmt"

// arityError reports a builtin invoked on a stack shallower than its
// arity. The stack is checked before any operand is popped, so a failing
// operation leaves the stack untouched.
type arityError struct {
	op   string
	want int
	got  int
}

func (err arityError) Error() string {
	return fmt.Sprintf("operation %q expected %v argument(s), got %v", err.op, err.want, err.got)
}

// operandError reports operands that do not support the requested
// operation. The format is applied to the offending values only when the
// error is rendered.
type operandError struct {
	op     string
	format string
	args   []Value
}

func (err operandError) Error() string {
	args := make([]interface{}, len(err.args))
	for i, v := range err.args {
		args[i] = v
	}
	return fmt.Sprintf(err.format, args...)
}

// unresolvedError reports a word with no definition in scope.
type unresolvedError string

func (name unresolvedError) Error() string {
	return fmt.Sprintf("couldn't resolve identifier %q", string(name))
}

// cycleError reports a chain of bindings that refers back to itself, such
// as a name defined in terms of its own value.
type cycleError string

func (name cycleError) Error() string {
	return fmt.Sprintf("binding cycle while resolving %q", string(name))
}

// indexError reports a list access outside the list's bounds.
type indexError struct {
	index  float64
	length int
}

func (err indexError) Error() string {
	return fmt.Sprintf("index %v out of bounds for list of %v", err.index, err.length)
}

// defTargetError reports a def whose name operand is not an identifier.
type defTargetError struct {
	got Value
}

func (err defTargetError) Error() string {
	return fmt.Sprintf("can't define %v: not an identifier", err.got)
}
