package main

// PreludeSource defines the standard words shipped with the interpreter,
// written in the language itself. The command loads it unless told not
// to; library users opt in with WithPrelude(PreludeSource).
const PreludeSource = `
# arithmetic
def inc { 1 + }
def dec { 1 - }
def neg { 0 swap - }
def abs { dup 0 < { neg } { } if }

# predicates
def zero? { 0 = }
def pos? { 0 > }
def neg? { 0 < }

# shuffling
def nip { swap drop }
def tuck { swap over }

# conditionals
def when { { } if }
def unless { { } swap if }

# lists
def first { 0 swap nth }
def second { 1 swap nth }

# numbers
def max { 2dup < { swap } { } if drop }
def min { 2dup > { swap } { } if drop }
def fact { dup 1 <= { drop 1 } { dup 1 - fact * } if }
`
