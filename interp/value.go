package interp

import "math"

// Val is a runtime value. Scalars are stored as raw bit patterns in Scalar
// (floats via their IEEE encoding, f32 in the low 32 bits). Vectors and
// integers wider than 64 bits live in Lanes, one element bit pattern per
// entry (64-bit words for wide integers). Struct values use Fields.
type Val struct {
	Scalar uint64
	Lanes  []uint64
	Fields []Val
}

// ScalarVal wraps a raw bit pattern.
func ScalarVal(bits uint64) Val { return Val{Scalar: bits} }

// VectorVal wraps lane bit patterns.
func VectorVal(lanes []uint64) Val { return Val{Lanes: lanes} }

// IsVector reports whether v holds lanes.
func (v Val) IsVector() bool { return v.Lanes != nil }

// F64 decodes the scalar as a double.
func (v Val) F64() float64 { return math.Float64frombits(v.Scalar) }

// F32 decodes the scalar as a float.
func (v Val) F32() float32 { return math.Float32frombits(uint32(v.Scalar)) }

func f64Val(f float64) Val { return Val{Scalar: math.Float64bits(f)} }

func f32Val(f float32) Val { return Val{Scalar: uint64(math.Float32bits(f))} }

// clone returns a deep copy so lane mutation (fault injection) cannot alias.
func (v Val) clone() Val {
	c := v
	if v.Lanes != nil {
		c.Lanes = append([]uint64(nil), v.Lanes...)
	}
	if v.Fields != nil {
		c.Fields = make([]Val, len(v.Fields))
		for i, f := range v.Fields {
			c.Fields[i] = f.clone()
		}
	}
	return c
}

// maskBits truncates a bit pattern to the given width.
func maskBits(v uint64, bits int) uint64 {
	if bits >= 64 {
		return v
	}
	return v & (1<<uint(bits) - 1)
}

// signExtend interprets the low bits of v as signed and extends to 64 bits.
func signExtend(v uint64, bits int) int64 {
	if bits >= 64 {
		return int64(v)
	}
	shift := uint(64 - bits)
	return int64(v<<shift) >> shift
}
