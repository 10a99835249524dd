package compute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clframe/clframe/ndarray"
)

const vectorAddSource = `
__kernel void vector_add(__global const float *a,
                         __global const float *b,
                         __global float *c)
{
    int i = get_global_id(0);
    c[i] = a[i] + b[i];
}
`

// runVectorAdd drives the canonical a+b=c scenario through dispatch, which
// is either a Kernel.Invoke or a Task.Execute closure.
func runVectorAdd(t *testing.T, ctx *Context, dispatch func(global []int, args []interface{}) error) {
	t.Helper()

	a := ndarray.FromFloat32([]float32{0, 1, 2, 3}, 4)
	b := ndarray.FromFloat32([]float32{0, 2, 4, 6}, 4)

	bufA, err := FromArray(ctx, a)
	if err != nil {
		t.Fatalf("FromArray(a) failed: %v", err)
	}
	defer bufA.Release()
	bufB, err := FromArray(ctx, b)
	if err != nil {
		t.Fatalf("FromArray(b) failed: %v", err)
	}
	defer bufB.Release()
	bufC, err := EmptyLike(ctx, a)
	if err != nil {
		t.Fatalf("EmptyLike failed: %v", err)
	}
	defer bufC.Release()

	if err := dispatch([]int{4}, []interface{}{bufA, bufB, bufC}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	got, err := bufC.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	require.Equal(t, []float32{0, 3, 6, 9}, got.Float32s())
}

func TestVectorAdd_EndToEnd(t *testing.T) {
	ctx, _ := newTestContext(t, false)
	defer ctx.Release()

	program, err := ctx.Compile(vectorAddSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer program.Release()

	kernel, err := program.Kernel("vector_add")
	if err != nil {
		t.Fatalf("Kernel failed: %v", err)
	}
	runVectorAdd(t, ctx, func(global []int, args []interface{}) error {
		return kernel.Invoke(global, args, nil)
	})
}

func TestCompile_PropagatesBuildLog(t *testing.T) {
	ctx, _ := newTestContext(t, false)
	defer ctx.Release()

	_, err := ctx.Compile("__kernel void broken(__global float *p) { this is not C }")
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if ce.Log == "" {
		t.Error("expected a non-empty build log")
	}
}

func TestProgram_KernelNotFound(t *testing.T) {
	ctx, _ := newTestContext(t, false)
	defer ctx.Release()

	program, err := ctx.Compile(vectorAddSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer program.Release()

	_, err = program.Kernel("no_such_kernel")
	var knf *KernelNotFoundError
	if !errors.As(err, &knf) {
		t.Fatalf("expected KernelNotFoundError, got %v", err)
	}
	if knf.Name != "no_such_kernel" {
		t.Errorf("expected requested name in error, got %q", knf.Name)
	}

	// The failed lookup must not poison later resolutions.
	if _, err := program.Kernel("vector_add"); err != nil {
		t.Errorf("resolving a valid kernel after a miss failed: %v", err)
	}
}

func TestProgram_KernelCachesHandle(t *testing.T) {
	ctx, _ := newTestContext(t, false)
	defer ctx.Release()

	program, err := ctx.Compile(vectorAddSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer program.Release()

	k1, err := program.Kernel("vector_add")
	if err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	k2, err := program.Kernel("vector_add")
	if err != nil {
		t.Fatalf("second resolution failed: %v", err)
	}
	if k1 != k2 {
		t.Error("expected the same cached handle on repeated resolution")
	}
}

const scalarEchoSource = `
__kernel void scalar_echo(__global int *iout,
                          __global float *fout,
                          const int iv,
                          const float fv)
{
    iout[0] = iv;
    fout[0] = fv;
}
`

func TestArgumentCoercion_ReachesKernel(t *testing.T) {
	// A plain Go int and float64 must arrive device-side as the 32-bit
	// values the kernel signature declares.
	ctx, _ := newTestContext(t, false)
	defer ctx.Release()

	program, err := ctx.Compile(scalarEchoSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer program.Release()

	kernel, err := program.Kernel("scalar_echo")
	if err != nil {
		t.Fatalf("Kernel failed: %v", err)
	}

	iBuf, err := EmptyLike(ctx, ndarray.New(ndarray.Int32, 1))
	if err != nil {
		t.Fatalf("EmptyLike(int) failed: %v", err)
	}
	defer iBuf.Release()
	fBuf, err := EmptyLike(ctx, ndarray.New(ndarray.Float32, 1))
	if err != nil {
		t.Fatalf("EmptyLike(float) failed: %v", err)
	}
	defer fBuf.Release()

	err = kernel.Invoke([]int{1}, []interface{}{iBuf, fBuf, 123456, 0.5}, nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	iGot, err := iBuf.Read()
	if err != nil {
		t.Fatalf("Read(int) failed: %v", err)
	}
	fGot, err := fBuf.Read()
	if err != nil {
		t.Fatalf("Read(float) failed: %v", err)
	}
	require.Equal(t, int32(123456), iGot.Int32s()[0])
	require.Equal(t, float32(0.5), fGot.Float32s()[0])
}

const fillImageSource = `
__kernel void fill_red(__write_only image2d_t dst)
{
    int2 pos = {get_global_id(0), get_global_id(1)};
    write_imagef(dst, pos, (float4)(1.0f, 0.0f, 0.0f, 1.0f));
}
`

func TestImageFill_EndToEnd(t *testing.T) {
	ctx, _ := newTestContext(t, true)
	defer ctx.Release()

	program, err := ctx.Compile(fillImageSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer program.Release()

	kernel, err := program.Kernel("fill_red")
	if err != nil {
		t.Fatalf("Kernel failed: %v", err)
	}

	img, err := EmptyImage(ctx, 4, 4)
	if err != nil {
		t.Fatalf("EmptyImage failed: %v", err)
	}
	defer img.Release()

	if err := kernel.Invoke([]int{4, 4}, []interface{}{img}, nil); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	got, err := img.ReadImage()
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	shape := got.Shape()
	if shape[0] != 4 || shape[1] != 4 || shape[2] != 4 {
		t.Fatalf("expected (4, 4, 4) result, got %v", shape)
	}

	// Opaque red in BGRA byte order.
	pix := got.Uint8s()
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 || pix[i+1] != 0 || pix[i+2] != 255 || pix[i+3] != 255 {
			t.Fatalf("pixel %d: expected BGRA (0, 0, 255, 255), got %v", i/4, pix[i:i+4])
		}
	}
}
