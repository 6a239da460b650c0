package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineTestCases []engineTestCase

func (ets engineTestCases) run(t *testing.T) {
	for _, et := range ets {
		t.Run(et.name, et.run)
	}
}

func engineTest(name string) (et engineTestCase) {
	et.name = name
	return et
}

type engineTestCase struct {
	name    string
	opts    []Option
	stack   []Value
	sources []string
	expect  []func(t *testing.T, eng *Engine)
	wantErr string
	errAs   func(t *testing.T, err error)
	timeout time.Duration
}

func (et engineTestCase) withOptions(opts ...Option) engineTestCase {
	et.opts = append(et.opts, opts...)
	return et
}

func (et engineTestCase) withPrelude() engineTestCase {
	return et.withOptions(WithPrelude(PreludeSource))
}

func (et engineTestCase) withStack(values ...Value) engineTestCase {
	et.stack = append(et.stack, values...)
	return et
}

func (et engineTestCase) do(sources ...string) engineTestCase {
	et.sources = append(et.sources, sources...)
	return et
}

func (et engineTestCase) withTimeout(timeout time.Duration) engineTestCase {
	et.timeout = timeout
	return et
}

func (et engineTestCase) expectStack(values ...Value) engineTestCase {
	et.expect = append(et.expect, func(t *testing.T, eng *Engine) {
		if values == nil {
			values = []Value{}
		}
		assert.Equal(t, values, eng.Stack(), "expected stack values")
	})
	return et
}

// expectStackString asserts the rendered stack, bottom first; handy when
// the expected values include procedures.
func (et engineTestCase) expectStackString(s string) engineTestCase {
	et.expect = append(et.expect, func(t *testing.T, eng *Engine) {
		assert.Equal(t, s, eng.renderStack(), "expected stack render")
	})
	return et
}

func (et engineTestCase) expectOutput(output string) engineTestCase {
	var out strings.Builder
	et.opts = append(et.opts, WithOutput(&out))
	et.expect = append(et.expect, func(t *testing.T, eng *Engine) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return et
}

func (et engineTestCase) expectError(mess string) engineTestCase {
	et.wantErr = mess
	return et
}

func (et engineTestCase) expectArityError(op string, want, got int) engineTestCase {
	et.errAs = func(t *testing.T, err error) {
		var ae arityError
		if assert.True(t, errors.As(err, &ae), "expected arity error, got %+v", err) {
			assert.Equal(t, op, ae.op, "expected failing operation")
			assert.Equal(t, want, ae.want, "expected wanted arity")
			assert.Equal(t, got, ae.got, "expected actual depth")
		}
	}
	return et
}

func (et engineTestCase) run(t *testing.T) {
	eng, err := New(et.opts...)
	require.NoError(t, err, "unexpected setup error")
	eng.stack = append(eng.stack, et.stack...)
	defer func() {
		if t.Failed() {
			var sb strings.Builder
			engineDumper{eng: eng, out: &sb}.dump()
			t.Logf("%s", sb.String())
		}
	}()

	timeout := et.timeout
	if timeout == 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var runErr error
	for _, src := range et.sources {
		if _, runErr = eng.RunSource(ctx, src); runErr != nil {
			break
		}
	}
	if et.wantErr != "" || et.errAs != nil {
		require.Error(t, runErr, "expected a run error")
		if et.wantErr != "" {
			assert.EqualError(t, runErr, et.wantErr)
		}
		if et.errAs != nil {
			et.errAs(t, runErr)
		}
	} else {
		require.NoError(t, runErr, "unexpected run error")
	}
	for _, expect := range et.expect {
		expect(t, eng)
	}
}

func TestEngine_arithmetic(t *testing.T) {
	engineTestCases{
		engineTest("add").do("1 2 +").expectStack(Number(3)),
		engineTest("sub").do("5 3 -").expectStack(Number(2)),
		engineTest("mul").do("4 2.5 *").expectStack(Number(10)),
		engineTest("div").do("10 4 /").expectStack(Number(2.5)),
		engineTest("div by zero").do("1 0 /").expectStack(Number(math.Inf(1))),
		engineTest("add type mismatch").do("1 true +").
			expectError("can't add 1 and true").
			expectStack(),
		engineTest("sub type mismatch").do(`"a" 1 -`).
			expectError(`can't subtract 1 from "a"`),
		engineTest("negate non bool").do("5 !").
			expectError("can't negate 5"),
		engineTest("not").do("true !").expectStack(Bool(false)),
	}.run(t)
}

func TestEngine_comparison(t *testing.T) {
	engineTestCases{
		engineTest("eq numbers").do("1 1 =").expectStack(Bool(true)),
		engineTest("eq cross kind").do(`1 "1" =`).expectStack(Bool(false)),
		engineTest("lt").do("1 2 <").expectStack(Bool(true)),
		engineTest("le equal").do("2 2 <=").expectStack(Bool(true)),
		engineTest("gt").do("3 2 >").expectStack(Bool(true)),
		engineTest("ge").do("2 3 >=").expectStack(Bool(false)),
		engineTest("kind ranking").do("true 1 <").expectStack(Bool(true)),
		engineTest("list lexicographic").do("[ 1 2 ] [ 1 3 ] <").expectStack(Bool(true)),
		engineTest("nan incomparable").do("0 0 / 0 * dup <=").expectStack(Bool(false)),
	}.run(t)
}

func TestEngine_shuffles(t *testing.T) {
	engineTestCases{
		engineTest("dup").withStack(Number(1)).do("dup").expectStack(Number(1), Number(1)),
		engineTest("dup drop is a no-op").do("42 dup drop").expectStack(Number(42)),
		engineTest("swap").do("1 2 swap").expectStack(Number(2), Number(1)),
		engineTest("swap swap is a no-op").do("1 2 swap swap").expectStack(Number(1), Number(2)),
		engineTest("2dup").do("1 2 2dup").
			expectStack(Number(1), Number(2), Number(1), Number(2)),
		engineTest("over").do("1 2 over").expectStack(Number(1), Number(2), Number(1)),
		engineTest("dupd").do("1 2 dupd").expectStack(Number(1), Number(1), Number(2)),
		engineTest("rotl").do("1 2 3 rotl").expectStack(Number(2), Number(3), Number(1)),
		engineTest("rotr").do("1 2 3 rotr").expectStack(Number(3), Number(1), Number(2)),
		engineTest("2drop").do("1 2 3 2drop").expectStack(Number(1)),
		engineTest("3drop").do("1 2 3 3drop").expectStack(),
	}.run(t)
}

func TestEngine_arity(t *testing.T) {
	engineTestCases{
		engineTest("add on one").withStack(Number(1)).do("+").
			expectArityError("+", 2, 1).
			expectStack(Number(1)),
		engineTest("add on none").do("+").
			expectArityError("+", 2, 0).
			expectStack(),
		engineTest("3drop on two").do("1 2 3drop").
			expectArityError("3drop", 3, 2).
			expectStack(Number(1), Number(2)),
		engineTest("if on two").do("true { } if").
			expectArityError("if", 3, 2),
		engineTest("error discards queued statements").do("1 0 + + 9").
			expectArityError("+", 2, 1).
			expectStack(Number(1)),
	}.run(t)
}

func TestEngine_quotations(t *testing.T) {
	engineTestCases{
		engineTest("procedure pushes without running").do("{ 1 + }").
			expectStackString("{ 1 + }"),
		engineTest("eval").do("5 { 1 + } eval").expectStack(Number(6)),
		engineTest("eval non procedure").do("5 eval").
			expectError("can't evaluate 5"),
		engineTest("nested eval").do("5 { { 1 + } eval 2 * } eval").expectStack(Number(12)),
		engineTest("if true").do("true { 1 } { 2 } if").expectStack(Number(1)),
		engineTest("if false").do("false { 1 } { 2 } if").expectStack(Number(2)),
		engineTest("if non bool condition").do("5 { 1 } { 2 } if").expectStack(Number(2)),
		engineTest("if non procedure branch").do("true 1 { 2 } if").
			expectError("can't evaluate 1"),
		engineTest("keep").do("5 { 1 + } keep").
			expectStack(Number(6), Number(5)),
		engineTest("keep non procedure").do("5 6 keep").
			expectError("can't evaluate 6"),
	}.run(t)
}

func TestEngine_definitions(t *testing.T) {
	engineTestCases{
		engineTest("def statement").do("def inc2 { 2 + } 5 inc2").expectStack(Number(7)),
		engineTest("def operation").do(`"inc2" { 2 + } def 5 inc2`).expectStack(Number(7)),
		engineTest("def value").do(`"x" 5 def x x +`).expectStack(Number(10)),
		engineTest("def value across lines").do("\"x\" 5 def\nx x +").
			expectStack(Number(10)),
		engineTest("def value inside quotation").do(`{ "x" 5 def x } eval`).
			expectStack(Number(5)),
		engineTest("later definition wins").do("def f { 1 } def f { 2 } f").
			expectStack(Number(2)),
		engineTest("def bad target").do("5 6 def").
			expectError("can't define 5: not an identifier"),
		engineTest("def reserved target").do(`"true" 1 def`).
			expectError(`can't define "true": not an identifier`),
		engineTest("unresolved word").do("nosuch").
			expectError(`couldn't resolve identifier "nosuch"`),
		engineTest("bindings chase through names").do(`"y" "x" def "x" 5 def y 1 +`).
			expectStack(Number(6)),
		engineTest("binding cycle").do(`"a" "b" def "b" "a" def a`).
			expectError(`binding cycle while resolving "b"`),
		engineTest("unbound string stays a string").do(`"x" 1 +`).
			expectError(`can't add "x" and 1`),
	}.run(t)
}

func TestEngine_lists(t *testing.T) {
	engineTestCases{
		engineTest("nth").do("0 [ 1 2 3 ] nth").expectStack(Number(1)),
		engineTest("nth last").do("2 [ 1 2 3 ] nth").expectStack(Number(3)),
		engineTest("nth nested").do("1 [ 1 [ 2 3 ] ] nth").
			expectStack(List{Number(2), Number(3)}),
		engineTest("nth out of range").do("5 [ 1 ] nth").
			expectError("index 5 out of bounds for list of 1"),
		engineTest("nth far out of range").do("1e18 [ 1 ] nth").
			expectError("index 1e+18 out of bounds for list of 1"),
		engineTest("nth negative").do("-1 [ 1 ] nth").
			expectError("index -1 out of bounds for list of 1"),
		engineTest("nth fractional index").do("0.5 [ 1 ] nth").
			expectError("can't index [ 1 ] by 0.5"),
		engineTest("nth non list").do("0 1 nth").
			expectError("can't index 1 by 0"),
	}.run(t)
}

func TestEngine_println(t *testing.T) {
	engineTestCases{
		engineTest("string prints raw").do(`"hello" println`).
			expectOutput("hello\n").
			expectStack(),
		engineTest("number").do("5 println").expectOutput("5\n"),
		engineTest("bool").do("false println").expectOutput("false\n"),
		engineTest("list").do("[ 1 2 ] println").expectOutput("[ 1 2 ]\n"),
		engineTest("procedure").do("{ 1 + } println").expectOutput("{ 1 + }\n"),
		engineTest("escapes print decoded").do(`"a\tb\n" println`).
			expectOutput("a\tb\n\n"),
	}.run(t)
}

func TestEngine_persistence(t *testing.T) {
	engineTestCases{
		engineTest("stack persists across runs").do("1 2", "+").expectStack(Number(3)),
		engineTest("definitions persist across runs").do("def inc2 { 2 + }", "5 inc2").
			expectStack(Number(7)),
	}.run(t)
}

func TestEngine_run_result(t *testing.T) {
	ctx := context.Background()

	eng, err := New()
	require.NoError(t, err)

	v, err := eng.RunSource(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, v, "expected no result on an empty stack")

	v, err = eng.RunSource(ctx, "1 2 +")
	require.NoError(t, err)
	assert.Equal(t, Number(3), v, "expected top of stack result")
}

func TestEngine_run_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New()
	require.NoError(t, err)

	_, err = eng.RunSource(ctx, "1 2 +")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTee(t *testing.T) {
	var a, b strings.Builder
	eng, err := New(WithOutput(&a), WithTee(&b))
	require.NoError(t, err)

	_, err = eng.RunSource(context.Background(), `"hi" println`)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", a.String())
	assert.Equal(t, "hi\n", b.String())
}

func TestEngineDump(t *testing.T) {
	eng, err := New(WithPrelude(`def inc { 1 + }`))
	require.NoError(t, err)
	_, err = eng.RunSource(context.Background(), "1 2")
	require.NoError(t, err)

	var sb strings.Builder
	engineDumper{eng: eng, out: &sb}.dump()
	assert.Contains(t, sb.String(), "stack: [1 2]")
	assert.Contains(t, sb.String(), "def inc = { 1 + }")
}

func TestEngine_trace(t *testing.T) {
	var lines []string
	eng, err := New(WithLogf(func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}))
	require.NoError(t, err)

	_, err = eng.RunSource(context.Background(), "1 2 +")
	require.NoError(t, err)
	assert.NotEmpty(t, lines, "expected trace lines")
}
