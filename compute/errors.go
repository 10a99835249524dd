package compute

import (
	"errors"
	"fmt"

	"github.com/clframe/clframe/ndarray"
)

// ErrNoEntryPoint is returned by NewTask when the kernel source contains no
// recognizable __kernel entry-point declaration.
var ErrNoEntryPoint = errors.New("compute: no kernel entry point found in source")

// NoDeviceError reports that the platform search found no qualifying device.
type NoDeviceError struct {
	Kind       DeviceKind
	WithImages bool
}

func (e *NoDeviceError) Error() string {
	if e.WithImages {
		return fmt.Sprintf("compute: no OpenCL device of type %s with image support found", e.Kind)
	}
	return fmt.Sprintf("compute: no OpenCL device of type %s found", e.Kind)
}

// CompileError reports a kernel source build failure. Log carries the
// device compiler's build log.
type CompileError struct {
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compute: kernel build failed:\n%s", e.Log)
}

// KernelNotFoundError reports a by-name entry-point lookup that matched no
// kernel in the compiled program.
type KernelNotFoundError struct {
	Name string
}

func (e *KernelNotFoundError) Error() string {
	return fmt.Sprintf("compute: kernel %q not found in compiled program", e.Name)
}

// WrongKindError reports a buffer operation invoked on an image object or
// vice versa.
type WrongKindError struct {
	Op   string
	Kind Kind
}

func (e *WrongKindError) Error() string {
	return fmt.Sprintf("compute: %s is not valid on a %s memory object", e.Op, e.Kind)
}

// ShapeMismatchError reports a Write whose source array does not match the
// destination's recorded shape or element type. The destination is left
// untouched.
type ShapeMismatchError struct {
	WantShape []int
	WantType  ndarray.DType
	GotShape  []int
	GotType   ndarray.DType
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("compute: write source shape %v %s does not match buffer shape %v %s",
		e.GotShape, e.GotType, e.WantShape, e.WantType)
}

// ImageShapeError reports an image creation attempt with an unsupported
// rank, channel count, or element type. Only (h, w) and (h, w, 4) uint8
// layouts are supported.
type ImageShapeError struct {
	Shape []int
	DType ndarray.DType
}

func (e *ImageShapeError) Error() string {
	return fmt.Sprintf("compute: unsupported image layout: shape %v dtype %s (want (h, w) or (h, w, 4) uint8)",
		e.Shape, e.DType)
}
