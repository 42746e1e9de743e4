// Package buildoptions holds process-wide build and debug knobs, read once
// from the environment at startup.
package buildoptions

import "github.com/xyproto/env/v2"

var (
	// IsDebugMode enables per-instruction tracing in the passes.
	// Set SIMDSWIFT_DEBUG=1.
	IsDebugMode = env.Bool("SIMDSWIFT_DEBUG")

	// DefaultPass is the pass the CLI runs when none is given.
	// Override with SIMDSWIFT_PASS.
	DefaultPass = env.Str("SIMDSWIFT_PASS", "avxswift")
)
