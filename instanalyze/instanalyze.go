// Package instanalyze is a read-only reporting pass: per function and per
// module it counts instructions, inline-assembly calls and instructions
// touching vector-typed operands, and writes a stable textual report.
package instanalyze

import (
	"fmt"
	"io"

	"github.com/simdswift/simdswift/ir"
)

// Options enables the per-function instruction listings.
type Options struct {
	PrintVec bool
	PrintAsm bool
}

type funcStats struct {
	fn    *ir.Function
	insts int
	asms  int
	vecs  int

	asmInsts []*ir.Instruction
	vecInsts []*ir.Instruction
}

// Analyzer accumulates statistics over the functions it runs on. Function
// order is insertion order, so reports are stable.
type Analyzer struct {
	opts  Options
	stats []funcStats
}

// New returns an empty analyzer.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// Run analyzes every defined function of m.
func (a *Analyzer) Run(m *ir.Module) {
	for _, f := range m.Functions() {
		if f.IsDecl() {
			continue
		}
		a.RunOnFunction(f)
	}
}

// RunOnFunction counts f's instructions.
func (a *Analyzer) RunOnFunction(f *ir.Function) {
	s := funcStats{fn: f}
	for _, b := range f.Blocks() {
		for _, i := range b.Instructions() {
			s.insts++

			if i.Op() == ir.OpCall && i.IsInlineAsmCall() {
				s.asms++
				s.asmInsts = append(s.asmInsts, i)
			}

			for _, op := range i.AllOperands() {
				if op.Type().IsVector() {
					s.vecs++
					s.vecInsts = append(s.vecInsts, i)
					break
				}
			}
		}
	}
	a.stats = append(a.stats, s)
}

// Report writes the module totals, the per-function rows and the optional
// instruction enumerations.
func (a *Analyzer) Report(w io.Writer) {
	var totalInsts, totalAsms, totalVecs int
	for _, s := range a.stats {
		totalInsts += s.insts
		totalAsms += s.asms
		totalVecs += s.vecs
	}

	fmt.Fprintf(w, "----- MODULE STATISTICS -----\n")
	fmt.Fprintf(w, "  Total number of instructions:        %d\n", totalInsts)
	fmt.Fprintf(w, "  Total number of assembly calls:      %d\n", totalAsms)
	fmt.Fprintf(w, "  Total number of vector instructions: %d\n", totalVecs)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "\n----- FUNCTION STATISTICS -----\n\n")
	for _, s := range a.stats {
		fmt.Fprintf(w, "%s\n", s.fn.Name())
		fmt.Fprintf(w, "  Number of instructions:        %d\n", s.insts)
		fmt.Fprintf(w, "  Number of assembly calls:      %d\n", s.asms)
		fmt.Fprintf(w, "  Number of vector instructions: %d\n", s.vecs)
		fmt.Fprintf(w, "\n")
	}

	if a.opts.PrintVec {
		fmt.Fprintf(w, "\n----- VECTOR INSTRUCTIONS STATISTICS -----\n\n")
		for _, s := range a.stats {
			if len(s.vecInsts) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\n", s.fn.Name())
			for k, i := range s.vecInsts {
				fmt.Fprintf(w, "[%d] %s\n", k, i)
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if a.opts.PrintAsm {
		fmt.Fprintf(w, "\n----- ASSEMBLY CALLS STATISTICS -----\n\n")
		for _, s := range a.stats {
			if len(s.asmInsts) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\n", s.fn.Name())
			for k, i := range s.asmInsts {
				fmt.Fprintf(w, "[%d] %s\n", k, i)
			}
			fmt.Fprintf(w, "\n")
		}
	}
}
