// Command simdswift applies the SIMD-Swift hardening passes to the bundled
// benchmark kernels, executes them under the IR interpreter, and prints
// instruction statistics.
package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/simdswift/simdswift/buildoptions"
	"github.com/simdswift/simdswift/fixtures"
	"github.com/simdswift/simdswift/instanalyze"
	"github.com/simdswift/simdswift/internal/cpuinfo"
	"github.com/simdswift/simdswift/interp"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swift"
	"github.com/simdswift/simdswift/swiftrt"
)

type fixture struct {
	build func() *ir.Module
	entry string
	args  []interp.Val
}

var fixtureTable = map[string]fixture{
	"arrayint":   {fixtures.ArrayInt, "sum_scale", []interp.Val{interp.ScalarVal(3)}},
	"arrayfloat": {fixtures.ArrayFloat, "axpb", []interp.Val{f32(2), f32(0.5)}},
	"floats":     {fixtures.Floats, "sumsq", []interp.Val{f64(10)}},
	"bubblesort": {fixtures.BubbleSort, "bubblesort", nil},
	"truncation": {fixtures.Truncation, "truncate", []interp.Val{interp.ScalarVal(0x1122334455667788)}},
	"fftdouble":  {fixtures.FFT8, "fft8", nil},
}

func f32(v float32) interp.Val { return interp.ScalarVal(uint64(math.Float32bits(v))) }
func f64(v float64) interp.Val { return interp.ScalarVal(math.Float64bits(v)) }

var (
	passID string
	checks swift.CheckOptions

	printVec bool
	printAsm bool
)

func lookupFixture(name string) (fixture, error) {
	fx, ok := fixtureTable[name]
	if !ok {
		return fixture{}, fmt.Errorf("unknown fixture %q (see 'simdswift list')", name)
	}
	return fx, nil
}

func applyPass(m *ir.Module) error {
	if passID == "none" {
		return nil
	}
	p, err := swift.New(passID, swift.Options{Checks: checks})
	if err != nil {
		return err
	}
	return p.Run(m)
}

func main() {
	root := &cobra.Command{
		Use:           "simdswift",
		Short:         "SIMD-Swift hardening passes over the bundled benchmark kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&passID, "pass", buildoptions.DefaultPass,
		"pass to apply: avxswift, avxfloatswift, slownative or none")
	pf.BoolVar(&checks.NoAll, "no-check-all", false, "disable absolutely all checks")
	pf.BoolVar(&checks.NoBranch, "no-check-branch", false, "disable checks on branches")
	pf.BoolVar(&checks.NoLoad, "no-check-load", false, "disable checks on loads")
	pf.BoolVar(&checks.NoStore, "no-check-store", false, "disable checks on stores")
	pf.BoolVar(&checks.NoAtomic, "no-check-atomic", false, "disable checks on atomics (cmpxchg, atomicrmw)")
	pf.BoolVar(&checks.NoCall, "no-check-call", false, "disable checks on function calls")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the bundled benchmark kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(fixtureTable))
			for name := range fixtureTable {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	dump := &cobra.Command{
		Use:   "dump <fixture>",
		Short: "Print a kernel's IR, after the selected pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := lookupFixture(args[0])
			if err != nil {
				return err
			}
			m := fx.build()
			if err := applyPass(m); err != nil {
				return err
			}
			fmt.Print(m.String())
			return nil
		},
	}

	run := &cobra.Command{
		Use:   "run <fixture>",
		Short: "Harden a kernel and execute it under the interpreter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := lookupFixture(args[0])
			if err != nil {
				return err
			}
			if !cpuinfo.HasAVX2() {
				fmt.Fprintln(os.Stderr,
					"note: host lacks AVX2; the interpreter models the 256-bit shadows in software")
			}
			m := fx.build()
			if err := applyPass(m); err != nil {
				return err
			}
			it, err := swiftrt.NewInterpreter(m)
			if err != nil {
				return err
			}
			ret, err := it.Call(fx.entry, fx.args...)
			if err != nil {
				return err
			}
			stores := interp.Stores(it.Trace())
			helpers := 0
			for _, e := range it.Trace() {
				if _, ok := e.(interp.HelperEvent); ok {
					helpers++
				}
			}
			fmt.Printf("result bits: %#x\n", ret.Scalar)
			fmt.Printf("stores:      %d\n", len(stores))
			fmt.Printf("helper calls: %d\n", helpers)
			return nil
		},
	}

	analyze := &cobra.Command{
		Use:   "analyze <fixture>",
		Short: "Print instruction statistics, after the selected pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := lookupFixture(args[0])
			if err != nil {
				return err
			}
			m := fx.build()
			if err := applyPass(m); err != nil {
				return err
			}
			a := instanalyze.New(instanalyze.Options{PrintVec: printVec, PrintAsm: printAsm})
			a.Run(m)
			a.Report(os.Stdout)
			return nil
		},
	}
	analyze.Flags().BoolVar(&printVec, "instanalyze-print-vec", false,
		"enable printing of (all) vector instructions")
	analyze.Flags().BoolVar(&printAsm, "instanalyze-print-asm", false,
		"enable printing of (all) inline-assembly instructions")

	cpu := &cobra.Command{
		Use:   "cpuinfo",
		Short: "Print host SIMD capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(cpuinfo.Summary())
			return nil
		},
	}

	root.AddCommand(list, dump, run, analyze, cpu)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "simdswift:", err)
		os.Exit(1)
	}
}
