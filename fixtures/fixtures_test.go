package fixtures_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simdswift/simdswift/fixtures"
	"github.com/simdswift/simdswift/interp"
	"github.com/simdswift/simdswift/ir"
	"github.com/simdswift/simdswift/swiftrt"
)

func global(m *ir.Module, name string) *ir.Global {
	for _, g := range m.Globals() {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

func TestArrayInt(t *testing.T) {
	m := fixtures.ArrayInt()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	ret, err := it.Call("sum_scale", interp.ScalarVal(3))
	require.NoError(t, err)
	require.Equal(t, uint64(93), ret.Scalar) // 3 * (3+1+4+1+5+9+2+6)

	dst := global(m, "dst")
	require.NotNil(t, dst)
	require.Equal(t, uint64(9), it.ReadGlobal(dst, 0))
	require.Equal(t, uint64(18), it.ReadGlobal(dst, 7))
	require.Len(t, interp.Stores(it.Trace()), fixtures.ArrayIntLen)
}

func TestArrayFloat(t *testing.T) {
	m := fixtures.ArrayFloat()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	a := interp.ScalarVal(uint64(math.Float32bits(2)))
	b := interp.ScalarVal(uint64(math.Float32bits(0.5)))
	ret, err := it.Call("axpb", a, b)
	require.NoError(t, err)
	require.Equal(t, float32(19), ret.F32())

	dst := global(m, "fdst")
	require.Equal(t, math.Float32bits(1.5), uint32(it.ReadGlobal(dst, 0)))
}

func TestFloats(t *testing.T) {
	m := fixtures.Floats()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	ret, err := it.Call("sumsq", interp.ScalarVal(math.Float64bits(10)))
	require.NoError(t, err)
	// Squares sum to 16.5625, above the threshold, so the result halves.
	require.Equal(t, 8.28125, ret.F64())

	out := global(m, "fout")
	require.Equal(t, math.Float64bits(8.28125), it.ReadGlobal(out, 0))
	require.Equal(t, math.Float64bits(8.28125), it.ReadGlobal(out, 1))

	// Below the threshold, no halving and no store to slot 0.
	it2, err := swiftrt.NewInterpreter(fixtures.Floats())
	require.NoError(t, err)
	ret, err = it2.Call("sumsq", interp.ScalarVal(math.Float64bits(100)))
	require.NoError(t, err)
	require.Equal(t, 16.5625, ret.F64())
}

func TestBubbleSort(t *testing.T) {
	m := fixtures.BubbleSort()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	_, err = it.Call("bubblesort")
	require.NoError(t, err)

	data := global(m, "data")
	want := []uint64{1, 2, 3, 5, 7, 9}
	for k, w := range want {
		require.Equal(t, w, it.ReadGlobal(data, k), "element %d", k)
	}
}

func TestTruncation(t *testing.T) {
	m := fixtures.Truncation()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	ret, err := it.Call("truncate", interp.ScalarVal(0x1122334455667788))
	require.NoError(t, err)

	const (
		z64  = int64(0x88)        // zext(trunc i8)
		sw64 = int64(-2005440939) // sext(bswap32(0x55667788) = 0x88776655)
		r64  = int64(-240)        // fptosi(2 * sitofp(sext i8 0x88))
	)
	require.Equal(t, z64+sw64+r64, int64(ret.Scalar))

	out := global(m, "tout")
	require.Equal(t, z64, int64(it.ReadGlobal(out, 0)))
	require.Equal(t, sw64, int64(it.ReadGlobal(out, 1)))
	require.Equal(t, r64, int64(it.ReadGlobal(out, 2)))
	require.Equal(t, z64+sw64+r64, int64(it.ReadGlobal(out, 3)))
}

// fftRef mirrors the kernel's exact operation order, so results match
// bit for bit.
func fftRef() ([]float64, []float64) {
	re := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	im := make([]float64, 8)
	re[1], re[4] = re[4], re[1]
	re[3], re[6] = re[6], re[3]
	im[1], im[4] = im[4], im[1]
	im[3], im[6] = im[6], im[3]

	wre := make([]float64, 4)
	wim := make([]float64, 4)
	for k := range wre {
		ang := -2 * math.Pi * float64(k) / 8
		wre[k] = math.Cos(ang)
		wim[k] = math.Sin(ang)
	}

	for length := 2; length <= 8; length <<= 1 {
		half := length >> 1
		step := 8 / length
		for base := 0; base < 8; base += length {
			for j := 0; j < half; j++ {
				wr, wi := wre[j*step], wim[j*step]
				i1, i2 := base+j, base+j+half
				a1re, a1im := re[i1], im[i1]
				a2re, a2im := re[i2], im[i2]
				tre := wr*a2re - wi*a2im
				tim := wr*a2im + wi*a2re
				re[i2] = a1re - tre
				im[i2] = a1im - tim
				re[i1] = a1re + tre
				im[i1] = a1im + tim
			}
		}
	}
	return re, im
}

func TestFFT8(t *testing.T) {
	m := fixtures.FFT8()
	it, err := swiftrt.NewInterpreter(m)
	require.NoError(t, err)

	_, err = it.Call("fft8")
	require.NoError(t, err)

	wantRe, wantIm := fftRef()
	re := global(m, "re")
	im := global(m, "im")
	for k := 0; k < fixtures.FFTLen; k++ {
		require.Equal(t, math.Float64bits(wantRe[k]), it.ReadGlobal(re, k), "re[%d]", k)
		require.Equal(t, math.Float64bits(wantIm[k]), it.ReadGlobal(im, k), "im[%d]", k)
	}
}
