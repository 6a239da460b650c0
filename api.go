package main

import (
	"context"

	"github.com/raketexyz/stack/internal/panicerr"
)

// New builds an Engine from the given options; the zero option list
// yields an engine with an empty stack, an empty definition environment,
// and discarded output.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{defs: make(map[string]Value)}
	if err := eng.apply(opts...); err != nil {
		return nil, err
	}
	return eng, nil
}

// Run evaluates a parsed program against the engine's current stack and
// definitions, returning the top of the stack afterwards (nil when
// empty). The stack and definitions persist across calls, so a sequence
// of Runs behaves like one longer program. On error the stack retains
// whatever the failing statement left; queued statements are discarded.
func (eng *Engine) Run(ctx context.Context, prog Program) (Value, error) {
	err := panicerr.Recover("engine", func() error {
		eng.load(prog)
		return eng.run(ctx)
	})
	if ferr := eng.out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return nil, err
	}
	if len(eng.stack) == 0 {
		return nil, nil
	}
	return eng.top(), nil
}

// RunSource parses and runs source text in one step.
func (eng *Engine) RunSource(ctx context.Context, src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return eng.Run(ctx, prog)
}

// Stack returns a copy of the value stack, bottom first.
func (eng *Engine) Stack() []Value {
	vs := make([]Value, len(eng.stack))
	copy(vs, eng.stack)
	return vs
}
