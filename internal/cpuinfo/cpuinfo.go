// Package cpuinfo probes the host CPU for the 256-bit SIMD capability the
// hardened code models. The passes themselves are target-independent; this
// only feeds CLI diagnostics.
package cpuinfo

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// HasAVX2 reports whether the host can natively execute 256-bit integer
// SIMD, i.e. whether hardened output of a real backend would run here.
func HasAVX2() bool {
	return runtime.GOARCH == "amd64" && cpu.X86.HasAVX2
}

// Summary returns a short human-readable capability report.
func Summary() string {
	s := fmt.Sprintf("GOOS: %s\nGOARCH: %s\n", runtime.GOOS, runtime.GOARCH)
	if runtime.GOARCH == "amd64" {
		s += fmt.Sprintf("  HasAVX:    %v\n", cpu.X86.HasAVX)
		s += fmt.Sprintf("  HasAVX2:   %v\n", cpu.X86.HasAVX2)
		s += fmt.Sprintf("  HasSSE42:  %v\n", cpu.X86.HasSSE42)
	}
	return s
}
