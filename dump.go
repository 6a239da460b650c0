package main

import (
	"fmt"
	"io"
	"sort"
)

// engineDumper renders a point-in-time picture of an engine: the value
// stack, any statements still pending, and the definition environment
// sorted by name. The test harness dumps failing engines through it.
type engineDumper struct {
	eng *Engine
	out io.Writer
}

func (dump engineDumper) dump() {
	fmt.Fprintf(dump.out, "# Engine Dump\n")
	fmt.Fprintf(dump.out, "  stack: [%v]\n", dump.eng.renderStack())
	if pending := dump.eng.pending.snapshot(); len(pending) > 0 {
		fmt.Fprintf(dump.out, "  pending: %v\n", renderStatements(pending))
	}
	names := make([]string, 0, len(dump.eng.defs))
	for name := range dump.eng.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(dump.out, "  def %v = %v\n", name, dump.eng.defs[name])
	}
}
