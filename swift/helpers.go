package swift

import (
	"fmt"

	"github.com/simdswift/simdswift/ir"
)

// Runtime helper names. The runtime library implementing them is linked
// externally; the passes only call them by name.
const (
	HelperExit        = "SIMDSWIFT_exit"
	HelperMaskI64     = "SIMDSWIFT_mask_i64"
	HelperCheckDouble = "SIMDSWIFT_check_double"
	HelperCheckFloat  = "SIMDSWIFT_check_float"
	HelperCheckI64    = "SIMDSWIFT_check_i64"
	HelperCheckI32    = "SIMDSWIFT_check_i32"
	HelperCheckI16    = "SIMDSWIFT_check_i16"
	HelperCheckI8     = "SIMDSWIFT_check_i8"

	HelperDummyExtract   = "SIMDSWIFT_dummy_extract"
	HelperDummyBroadcast = "SIMDSWIFT_dummy_broadcast"
	HelperDummyPTest     = "SIMDSWIFT_dummy_ptest"
)

// helpers caches the resolved runtime helper declarations for one pass run.
type helpers struct {
	exit    *ir.Function
	maskI64 *ir.Function

	checkDouble *ir.Function
	checkFloat  *ir.Function
	checkI64    *ir.Function
	checkI32    *ir.Function
	checkI16    *ir.Function
	checkI8     *ir.Function

	dummyExtract   *ir.Function
	dummyBroadcast *ir.Function
	dummyPTest     *ir.Function
}

func lookupHelper(m *ir.Module, name string) (*ir.Function, error) {
	f := m.Func(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingHelper, name)
	}
	return f, nil
}

// resolveHardenHelpers looks up the helpers the hardening variants call.
// The float-only variant needs only the float and double correctors.
func resolveHardenHelpers(m *ir.Module, v Variant) (*helpers, error) {
	h := &helpers{}
	required := []struct {
		name string
		dst  **ir.Function
	}{
		{HelperExit, &h.exit},
		{HelperMaskI64, &h.maskI64},
		{HelperCheckDouble, &h.checkDouble},
		{HelperCheckFloat, &h.checkFloat},
	}
	if v == VariantFull {
		required = append(required, []struct {
			name string
			dst  **ir.Function
		}{
			{HelperCheckI64, &h.checkI64},
			{HelperCheckI32, &h.checkI32},
			{HelperCheckI16, &h.checkI16},
			{HelperCheckI8, &h.checkI8},
		}...)
	}
	for _, r := range required {
		f, err := lookupHelper(m, r.name)
		if err != nil {
			return nil, err
		}
		*r.dst = f
	}
	return h, nil
}

// resolveNativeHelpers looks up the opaque markers of the native-cost pass.
func resolveNativeHelpers(m *ir.Module) (*helpers, error) {
	h := &helpers{}
	var err error
	if h.dummyExtract, err = lookupHelper(m, HelperDummyExtract); err != nil {
		return nil, err
	}
	if h.dummyBroadcast, err = lookupHelper(m, HelperDummyBroadcast); err != nil {
		return nil, err
	}
	if h.dummyPTest, err = lookupHelper(m, HelperDummyPTest); err != nil {
		return nil, err
	}
	return h, nil
}
