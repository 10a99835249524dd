// Package compute is a thin host-side layer over OpenCL. It owns device and
// queue selection, device memory objects, program compilation, and kernel
// dispatch, so that callers deal in host arrays and kernel source strings
// rather than raw driver handles.
//
// Every device-facing call is synchronous: transfers block until the copy
// completes on the context's single in-order queue, and kernel invocation
// returns once the dispatch is enqueued. There is no internal concurrency,
// no multi-queue use, and no cancellation.
package compute

import (
	"sync"

	"github.com/jgillich/go-opencl/cl"
)

// DeviceKind selects which class of device the platform search looks for.
type DeviceKind int

const (
	// GPU selects discrete or integrated GPU devices. Zero value.
	GPU DeviceKind = iota
	// CPU selects CPU devices exposed by an OpenCL runtime.
	CPU
)

func (k DeviceKind) String() string {
	if k == CPU {
		return "CPU"
	}
	return "GPU"
}

func (k DeviceKind) clType() cl.DeviceType {
	if k == CPU {
		return cl.DeviceTypeCPU
	}
	return cl.DeviceTypeGPU
}

// Config controls device selection for NewContext and NewTask.
type Config struct {
	// Kind is the preferred device class. Defaults to GPU.
	Kind DeviceKind
	// RequireImageSupport skips devices that cannot host image objects.
	RequireImageSupport bool
}

// Platform enumeration happens once per process; the driver's ICD list does
// not change at runtime and every Context shares the same view of it.
var (
	platformsOnce sync.Once
	platformList  []*cl.Platform
	platformsErr  error
)

func platforms() ([]*cl.Platform, error) {
	platformsOnce.Do(func() {
		platformList, platformsErr = cl.GetPlatforms()
	})
	return platformList, platformsErr
}

// Context binds exactly one device, one OpenCL context, and one in-order
// command queue. Every Memory, Program, and Kernel created through it
// dispatches on that queue; sharing objects across Contexts is unsupported.
type Context struct {
	device *cl.Device
	ctx    *cl.Context
	queue  *cl.CommandQueue
}

// NewContext searches the available platforms for the first device matching
// cfg and binds a context and command queue to it. The search is first-match:
// platforms are scanned in enumeration order and no scoring is done across
// candidates. Returns *NoDeviceError when no platform yields a qualifying
// device.
func NewContext(cfg Config) (*Context, error) {
	plats, err := platforms()
	if err != nil {
		return nil, &NoDeviceError{Kind: cfg.Kind, WithImages: cfg.RequireImageSupport}
	}

	var device *cl.Device
	for _, p := range plats {
		devices, err := p.GetDevices(cfg.Kind.clType())
		if err != nil {
			// A platform with no devices of this type errors; keep searching.
			continue
		}
		for _, d := range devices {
			if cfg.RequireImageSupport && !d.ImageSupport() {
				continue
			}
			device = d
			break
		}
		if device != nil {
			break
		}
	}
	if device == nil {
		return nil, &NoDeviceError{Kind: cfg.Kind, WithImages: cfg.RequireImageSupport}
	}

	ctx, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, err
	}
	queue, err := ctx.CreateCommandQueue(device, 0)
	if err != nil {
		ctx.Release()
		return nil, err
	}

	return &Context{device: device, ctx: ctx, queue: queue}, nil
}

// DeviceName returns the driver-reported name of the bound device.
func (c *Context) DeviceName() string {
	return c.device.Name()
}

// Compile builds OpenCL C source against the bound device and returns the
// compiled program. Build diagnostics are returned as a *CompileError
// carrying the native build log. Entry points are not enumerated here;
// they resolve lazily through Program.Kernel.
func (c *Context) Compile(source string) (*Program, error) {
	prog, err := c.ctx.CreateProgramWithSource([]string{source})
	if err != nil {
		return nil, err
	}
	if err := prog.BuildProgram(nil, ""); err != nil {
		prog.Release()
		return nil, &CompileError{Log: err.Error()}
	}
	return &Program{ctx: c, prog: prog, kernels: make(map[string]*Kernel)}, nil
}

// Release frees the command queue and context. Memory objects and programs
// created through this context must be released before or alongside it.
func (c *Context) Release() {
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.ctx != nil {
		c.ctx.Release()
		c.ctx = nil
	}
}
