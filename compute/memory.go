package compute

import (
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/clframe/clframe/ndarray"
)

// Kind discriminates the two device memory access models. It is fixed at
// creation: linear buffers answer Read/Write, image objects answer
// ReadImage, and cross-kind calls fail with *WrongKindError rather than
// reinterpreting the underlying layout.
type Kind int

const (
	LinearBuffer Kind = iota
	Image2D
)

func (k Kind) String() string {
	if k == Image2D {
		return "Image2D"
	}
	return "LinearBuffer"
}

// Memory owns one device-resident allocation together with the logical
// shape and element type recorded at creation. The shape and type are the
// contract for every later transfer; there is no implicit reshaping or
// casting.
type Memory struct {
	ctx   *Context
	mem   *cl.MemObject
	shape []int
	dtype ndarray.DType
	kind  Kind
	bytes int
}

// FromArray allocates a read-write linear buffer sized to a and copies a's
// contents in at creation time.
func FromArray(ctx *Context, a *ndarray.Array) (*Memory, error) {
	mem, err := ctx.ctx.CreateBuffer(cl.MemReadWrite|cl.MemCopyHostPtr, a.Bytes())
	if err != nil {
		return nil, err
	}
	return &Memory{
		ctx:   ctx,
		mem:   mem,
		shape: a.Shape(),
		dtype: a.DType(),
		kind:  LinearBuffer,
		bytes: a.NumBytes(),
	}, nil
}

// EmptyLike allocates an uninitialized read-write linear buffer with the
// same shape and element type as a. No host data is copied; a serves only
// as the shape/type descriptor.
func EmptyLike(ctx *Context, a *ndarray.Array) (*Memory, error) {
	mem, err := ctx.ctx.CreateEmptyBuffer(cl.MemReadWrite, a.NumBytes())
	if err != nil {
		return nil, err
	}
	return &Memory{
		ctx:   ctx,
		mem:   mem,
		shape: a.Shape(),
		dtype: a.DType(),
		kind:  LinearBuffer,
		bytes: a.NumBytes(),
	}, nil
}

// imageLayout maps a host array onto one of the two supported pixel
// layouts: (h, w, 4) uint8 → BGRA, (h, w) uint8 → single-channel R.
func imageLayout(a *ndarray.Array) (order cl.ChannelOrder, w, h int, err error) {
	shape := a.Shape()
	switch {
	case a.DType() != ndarray.Uint8:
		return 0, 0, 0, &ImageShapeError{Shape: shape, DType: a.DType()}
	case a.Rank() == 3 && shape[2] == 4:
		return cl.ChannelOrderBGRA, shape[1], shape[0], nil
	case a.Rank() == 2:
		return cl.ChannelOrderR, shape[1], shape[0], nil
	default:
		return 0, 0, 0, &ImageShapeError{Shape: shape, DType: a.DType()}
	}
}

// FromImage allocates a read-only 2-D image object and copies a's pixels in.
// a must be a (h, w, 4) uint8 array (BGRA byte order) or a (h, w) uint8
// array (single-channel grayscale); any other layout fails with
// *ImageShapeError.
func FromImage(ctx *Context, a *ndarray.Array) (*Memory, error) {
	order, w, h, err := imageLayout(a)
	if err != nil {
		return nil, err
	}
	format := cl.ImageFormat{ChannelOrder: order, ChannelDataType: cl.ChannelDataTypeUNormInt8}
	desc := cl.ImageDescription{Type: cl.MemObjectTypeImage2D, Width: w, Height: h}
	mem, err := ctx.ctx.CreateImage(cl.MemReadOnly|cl.MemCopyHostPtr, format, desc, a.Bytes())
	if err != nil {
		return nil, err
	}
	return &Memory{
		ctx:   ctx,
		mem:   mem,
		shape: a.Shape(),
		dtype: ndarray.Uint8,
		kind:  Image2D,
		bytes: a.NumBytes(),
	}, nil
}

// EmptyImage allocates an uninitialized write-only 4-channel BGRA image of
// widthPx by heightPx pixels. The logical shape is recorded row-major as
// (heightPx, widthPx, 4).
func EmptyImage(ctx *Context, widthPx, heightPx int) (*Memory, error) {
	format := cl.ImageFormat{ChannelOrder: cl.ChannelOrderBGRA, ChannelDataType: cl.ChannelDataTypeUNormInt8}
	desc := cl.ImageDescription{Type: cl.MemObjectTypeImage2D, Width: widthPx, Height: heightPx}
	mem, err := ctx.ctx.CreateImage(cl.MemWriteOnly, format, desc, nil)
	if err != nil {
		return nil, err
	}
	return &Memory{
		ctx:   ctx,
		mem:   mem,
		shape: []int{heightPx, widthPx, 4},
		dtype: ndarray.Uint8,
		kind:  Image2D,
		bytes: heightPx * widthPx * 4,
	}, nil
}

// Shape returns a copy of the logical shape recorded at creation.
func (m *Memory) Shape() []int { return append([]int(nil), m.shape...) }

// DType returns the recorded element type.
func (m *Memory) DType() ndarray.DType { return m.dtype }

// Kind returns the object kind discriminator.
func (m *Memory) Kind() Kind { return m.kind }

// Size returns the allocation size in bytes.
func (m *Memory) Size() int { return m.bytes }

// Read copies the buffer's contents back into a freshly allocated host
// array shaped and typed exactly as recorded at creation. The call blocks
// until the device-to-host copy completes, which also orders it after any
// previously enqueued kernel on the owning queue.
func (m *Memory) Read() (*ndarray.Array, error) {
	if m.kind != LinearBuffer {
		return nil, &WrongKindError{Op: "Read", Kind: m.kind}
	}
	out := ndarray.New(m.dtype, m.shape...)
	ptr := unsafe.Pointer(&out.Bytes()[0])
	if _, err := m.ctx.queue.EnqueueReadBuffer(m.mem, true, 0, m.bytes, ptr, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadImage copies the image's pixels back into a freshly allocated host
// array using a blocking region read sized to the recorded pixel
// dimensions.
func (m *Memory) ReadImage() (*ndarray.Array, error) {
	if m.kind != Image2D {
		return nil, &WrongKindError{Op: "ReadImage", Kind: m.kind}
	}
	h, w := m.shape[0], m.shape[1]
	out := ndarray.New(ndarray.Uint8, m.shape...)
	origin := [3]int{0, 0, 0}
	region := [3]int{w, h, 1}
	if _, err := m.ctx.queue.EnqueueReadImage(m.mem, true, origin, region, 0, 0, out.Bytes(), nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Write overwrites the buffer's contents with a's, blocking until the
// host-to-device copy completes. a's shape and element type must exactly
// match those recorded at creation; on mismatch the write is rejected with
// *ShapeMismatchError and the prior contents are left unchanged.
func (m *Memory) Write(a *ndarray.Array) error {
	if m.kind != LinearBuffer {
		return &WrongKindError{Op: "Write", Kind: m.kind}
	}
	if !m.matches(a) {
		return &ShapeMismatchError{
			WantShape: m.Shape(),
			WantType:  m.dtype,
			GotShape:  a.Shape(),
			GotType:   a.DType(),
		}
	}
	ptr := unsafe.Pointer(&a.Bytes()[0])
	_, err := m.ctx.queue.EnqueueWriteBuffer(m.mem, true, 0, m.bytes, ptr, nil)
	return err
}

func (m *Memory) matches(a *ndarray.Array) bool {
	if a.DType() != m.dtype || a.Rank() != len(m.shape) {
		return false
	}
	shape := a.Shape()
	for i := range shape {
		if shape[i] != m.shape[i] {
			return false
		}
	}
	return true
}

// Release frees the native memory object.
func (m *Memory) Release() {
	if m.mem != nil {
		m.mem.Release()
		m.mem = nil
	}
}
