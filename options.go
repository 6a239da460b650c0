package main

import (
	"context"
	"io"
)

// Option configures an Engine at construction time.
type Option interface{ apply(eng *Engine) error }

var defaults = []Option{
	WithOutput(io.Discard),
}

func (eng *Engine) apply(opts ...Option) error {
	for _, opt := range defaults {
		if opt != nil {
			if err := opt.apply(eng); err != nil {
				return err
			}
		}
	}
	for _, opt := range opts {
		if opt != nil {
			if err := opt.apply(eng); err != nil {
				return err
			}
		}
	}
	return nil
}

type withLogfn func(mess string, args ...interface{})
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type preludeOption struct{ src string }

// WithLogf arranges for the engine to trace each executed statement and
// the stack after it through the given printf-like function.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithOutput sets the writer that println writes to; it is buffered if
// necessary and flushed at the end of every Run.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee duplicates println output to an additional writer.
func WithTee(w io.Writer) Option { return teeOption{w} }

// WithPrelude runs the given source before the engine is handed back,
// typically to load word definitions. Errors in the source fail New.
func WithPrelude(src string) Option { return preludeOption{src} }

func (logfn withLogfn) apply(eng *Engine) error {
	eng.logfn = logfn
	return nil
}

func (o outputOption) apply(eng *Engine) error {
	if eng.out != nil {
		eng.out.Flush()
	}
	eng.out = newWriteFlusher(o.Writer)
	return nil
}

func (o teeOption) apply(eng *Engine) error {
	eng.out = multiWriteFlusher(eng.out, newWriteFlusher(o.Writer))
	return nil
}

func (o preludeOption) apply(eng *Engine) error {
	prog, err := Parse(o.src)
	if err != nil {
		return err
	}
	eng.load(prog)
	return eng.run(context.Background())
}
