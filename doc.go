/* Command stack interprets a small concatenative stack language.

A program is a sequence of statements separated by whitespace. Reading a
literal pushes it onto the value stack; reading an operation pops its
operands from the stack and pushes its results. There are five kinds of
value: booleans, double precision numbers, strings, procedures (quoted
statement sequences, written { ... }), and lists (written [ ... ]).

	>>> 1 2 +
	3
	>>> { 2 * } eval
	6

Words are defined either with the def statement form:

	def twice { 2 * }

or at run time with the def operation, which takes the name as a string:

	"twice" { 2 * } def

A defined word expands in place when read: a procedure binding has its
body spliced into the statement queue at the point of use, any other
value is pushed. Evaluation never recurses into the interpreter's own
call stack. Procedures run by eval, if, keep, and word expansion all
splice their statements onto the front of a pending queue and the single
drain loop carries on, so deeply recursive programs in the language cost
queue memory rather than interpreter stack.

The interpreter reads a file named on the command line, text given with
-e, or starts an interactive session. The session keeps one engine
alive across inputs, so the stack and definitions accumulate; an input
that opens a procedure, list, or string continues onto the next line.

A standard prelude written in the language itself defines convenience
words (inc, nip, tuck, when, unless, first, max, and so on); -no-prelude
starts bare.
*/
package main
