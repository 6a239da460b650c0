package main

import (
	"testing"
	"time"
)

func TestPrelude(t *testing.T) {
	engineTestCases{
		engineTest("inc").withPrelude().do("5 inc").expectStack(Number(6)),
		engineTest("dec").withPrelude().do("5 dec").expectStack(Number(4)),
		engineTest("neg").withPrelude().do("5 neg").expectStack(Number(-5)),
		engineTest("abs negative").withPrelude().do("-5 abs").expectStack(Number(5)),
		engineTest("abs positive").withPrelude().do("5 abs").expectStack(Number(5)),
		engineTest("zero?").withPrelude().do("0 zero?").expectStack(Bool(true)),
		engineTest("pos?").withPrelude().do("-1 pos?").expectStack(Bool(false)),
		engineTest("neg?").withPrelude().do("-1 neg?").expectStack(Bool(true)),
		engineTest("nip").withPrelude().do("1 2 nip").expectStack(Number(2)),
		engineTest("tuck").withPrelude().do("1 2 tuck").
			expectStack(Number(2), Number(1), Number(2)),
		engineTest("when true").withPrelude().do("5 true { inc } when").expectStack(Number(6)),
		engineTest("when false").withPrelude().do("5 false { inc } when").expectStack(Number(5)),
		engineTest("unless").withPrelude().do("5 false { inc } unless").expectStack(Number(6)),
		engineTest("first").withPrelude().do("[ 7 8 9 ] first").expectStack(Number(7)),
		engineTest("second").withPrelude().do("[ 7 8 9 ] second").expectStack(Number(8)),
		engineTest("max").withPrelude().do("3 9 max").expectStack(Number(9)),
		engineTest("min").withPrelude().do("3 9 min").expectStack(Number(3)),
		engineTest("fact base case").withPrelude().do("0 fact").expectStack(Number(1)),
		engineTest("fact").withPrelude().do("5 fact").expectStack(Number(120)),
		// recursion depth costs queue memory, not interpreter stack
		engineTest("fact deep").withPrelude().withTimeout(5*time.Second).
			do("170 fact dup dup / nip").expectStack(Number(1)),
		engineTest("prelude words can be shadowed").withPrelude().
			do("def inc { 10 + } 5 inc").expectStack(Number(15)),
	}.run(t)
}
