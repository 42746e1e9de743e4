package swift

import (
	"strings"

	"github.com/simdswift/simdswift/ir"
)

const (
	// helperPrefix marks the hardener's own runtime helpers.
	helperPrefix = "SIMDSWIFT"
	// intrinsicPrefix marks host-compiler intrinsics.
	intrinsicPrefix = "ir."

	lifetimeStartPrefix = "ir.lifetime.start"
	lifetimeEndPrefix   = "ir.lifetime.end"
	bswapPrefix         = "ir.bswap"
)

// Transactional-memory entry points plus the __dummy__ sentinel; these are
// never shadowed and their call sites pass through untouched.
var ignoredFuncNames = map[string]bool{
	"tx_cond_start":           true,
	"tx_start":                true,
	"tx_end":                  true,
	"tx_abort":                true,
	"tx_increment":            true,
	"tx_pthread_mutex_lock":   true,
	"tx_pthread_mutex_unlock": true,

	"__dummy__": true,
}

// isIgnoredFunc reports whether calls to f (and f itself, as a function
// being hardened) are left alone. Function pointers are never ignored.
// Lifetime intrinsics are not ignored: they reference program values and
// must be rewired onto the scalar extracts.
func isIgnoredFunc(f *ir.Function) bool {
	if f == nil {
		return false
	}
	name := f.Name()
	if strings.HasPrefix(name, lifetimeStartPrefix) || strings.HasPrefix(name, lifetimeEndPrefix) {
		return false
	}
	return strings.HasPrefix(name, intrinsicPrefix) ||
		strings.HasPrefix(name, helperPrefix) ||
		ignoredFuncNames[name]
}

// isIgnoredNativeFunc is the native-cost variant's gate. It carries no
// lifetime exception: the marker pass rewrites no operands, so lifetime
// intrinsics need no special treatment.
func isIgnoredNativeFunc(f *ir.Function) bool {
	name := f.Name()
	return strings.HasPrefix(name, intrinsicPrefix) ||
		strings.HasPrefix(name, helperPrefix) ||
		ignoredFuncNames[name]
}
