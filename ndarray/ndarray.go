// Package ndarray provides host-resident rectangular numeric arrays with an
// explicit element type and shape. It is the host side of every transfer to
// and from device memory: the device layer never infers type or shape beyond
// what the array carries.
package ndarray

import (
	"fmt"
	"unsafe"
)

// DType identifies the element type of an Array.
type DType int

const (
	Uint8 DType = iota
	Int32
	Int64
	Uint32
	Uint64
	Float32
	Float64
)

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case Uint8:
		return 1
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	panic(fmt.Sprintf("ndarray: unknown dtype %d", int(d)))
}

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// Array is a dense, contiguous, row-major rectangular array.
type Array struct {
	shape []int
	dtype DType
	data  []byte
}

// New allocates a zero-filled array of the given dtype and shape.
// Every dimension must be positive.
func New(dtype DType, shape ...int) *Array {
	n := checkShape(shape)
	return &Array{
		shape: append([]int(nil), shape...),
		dtype: dtype,
		data:  make([]byte, n*dtype.Size()),
	}
}

func checkShape(shape []int) int {
	if len(shape) == 0 {
		panic("ndarray: empty shape")
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			panic(fmt.Sprintf("ndarray: non-positive dimension %d in shape %v", d, shape))
		}
		n *= d
	}
	return n
}

func fromSlice[T any](dtype DType, data []T, shape []int) *Array {
	n := checkShape(shape)
	if n != len(data) {
		panic(fmt.Sprintf("ndarray: %d elements do not fill shape %v (%d)", len(data), shape, n))
	}
	a := New(dtype, shape...)
	copy(a.data, unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size()))
	return a
}

// FromFloat32 copies data into a new Float32 array of the given shape.
// len(data) must equal the shape's element count.
func FromFloat32(data []float32, shape ...int) *Array {
	return fromSlice(Float32, data, shape)
}

// FromFloat64 copies data into a new Float64 array of the given shape.
func FromFloat64(data []float64, shape ...int) *Array {
	return fromSlice(Float64, data, shape)
}

// FromInt32 copies data into a new Int32 array of the given shape.
func FromInt32(data []int32, shape ...int) *Array {
	return fromSlice(Int32, data, shape)
}

// FromInt64 copies data into a new Int64 array of the given shape.
func FromInt64(data []int64, shape ...int) *Array {
	return fromSlice(Int64, data, shape)
}

// FromUint8 copies data into a new Uint8 array of the given shape.
func FromUint8(data []byte, shape ...int) *Array {
	n := checkShape(shape)
	if n != len(data) {
		panic(fmt.Sprintf("ndarray: %d elements do not fill shape %v (%d)", len(data), shape, n))
	}
	a := New(Uint8, shape...)
	copy(a.data, data)
	return a
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.data) / a.dtype.Size() }

// NumBytes returns the size of the backing storage in bytes.
func (a *Array) NumBytes() int { return len(a.data) }

// Bytes returns the backing storage. The slice aliases the array's data;
// writes through it are visible to every typed view.
func (a *Array) Bytes() []byte { return a.data }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	c := &Array{
		shape: append([]int(nil), a.shape...),
		dtype: a.dtype,
		data:  make([]byte, len(a.data)),
	}
	copy(c.data, a.data)
	return c
}

// SameLayout reports whether b has identical shape and dtype.
func (a *Array) SameLayout(b *Array) bool {
	if a.dtype != b.dtype || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// EqualTo reports whether b has the same layout and bit-identical contents.
func (a *Array) EqualTo(b *Array) bool {
	if !a.SameLayout(b) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func (a *Array) view(want DType) unsafe.Pointer {
	if a.dtype != want {
		panic(fmt.Sprintf("ndarray: %s view of %s array", want, a.dtype))
	}
	return unsafe.Pointer(&a.data[0])
}

// Float32s returns the contents as a []float32 view over the backing bytes.
// Panics if the array is not Float32.
func (a *Array) Float32s() []float32 {
	return unsafe.Slice((*float32)(a.view(Float32)), a.Len())
}

// Float64s returns a []float64 view. Panics if the array is not Float64.
func (a *Array) Float64s() []float64 {
	return unsafe.Slice((*float64)(a.view(Float64)), a.Len())
}

// Int32s returns an []int32 view. Panics if the array is not Int32.
func (a *Array) Int32s() []int32 {
	return unsafe.Slice((*int32)(a.view(Int32)), a.Len())
}

// Int64s returns an []int64 view. Panics if the array is not Int64.
func (a *Array) Int64s() []int64 {
	return unsafe.Slice((*int64)(a.view(Int64)), a.Len())
}

// Uint8s returns a []byte view. Panics if the array is not Uint8.
func (a *Array) Uint8s() []byte {
	if a.dtype != Uint8 {
		panic(fmt.Sprintf("ndarray: uint8 view of %s array", a.dtype))
	}
	return a.data
}

func (a *Array) String() string {
	return fmt.Sprintf("ndarray.Array{shape: %v, dtype: %s}", a.shape, a.dtype)
}
