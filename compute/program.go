package compute

import (
	"fmt"

	"github.com/jgillich/go-opencl/cl"
)

// Program wraps a compiled device program and resolves named entry points
// into callable kernels. Resolution is by-name and lazy: nothing is
// enumerated at compile time, and an absent name only surfaces when it is
// requested.
type Program struct {
	ctx     *Context
	prog    *cl.Program
	kernels map[string]*Kernel
}

// Kernel resolves an entry point by name, caching the handle on first
// resolution. Returns *KernelNotFoundError if the compiled program has no
// kernel of that name.
func (p *Program) Kernel(name string) (*Kernel, error) {
	if k, ok := p.kernels[name]; ok {
		return k, nil
	}
	ck, err := p.prog.CreateKernel(name)
	if err != nil {
		return nil, &KernelNotFoundError{Name: name}
	}
	k := &Kernel{ctx: p.ctx, kernel: ck, name: name}
	p.kernels[name] = k
	return k, nil
}

// Release frees every resolved kernel and the program itself.
func (p *Program) Release() {
	for _, k := range p.kernels {
		k.Release()
	}
	p.kernels = make(map[string]*Kernel)
	if p.prog != nil {
		p.prog.Release()
		p.prog = nil
	}
}

// Kernel is a callable entry point of a compiled program, bound to its
// owning context's command queue.
type Kernel struct {
	ctx    *Context
	kernel *cl.Kernel
	name   string
}

// Name returns the entry-point name the kernel was resolved under.
func (k *Kernel) Name() string { return k.name }

// marshalArg maps one caller-supplied argument onto the dispatch calling
// convention. Kernel signatures in this layer are fixed-width by
// convention: a plain Go int becomes an int32 and a plain float64 becomes a
// float32, because passing the host's wider width through unchanged would
// mismatch the kernel's declared parameter size and silently corrupt
// results. Pre-typed values (int32, uint32, float32, raw cl handles) pass
// through untouched.
func marshalArg(arg interface{}) interface{} {
	switch v := arg.(type) {
	case *Memory:
		return v.mem
	case int:
		return int32(v)
	case float64:
		return float32(v)
	default:
		return arg
	}
}

func marshalArgs(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = marshalArg(a)
	}
	return out
}

func checkWorkSize(globalSize, localSize []int) error {
	if len(globalSize) < 1 || len(globalSize) > 3 {
		return fmt.Errorf("compute: global work size must have 1-3 dimensions, got %d", len(globalSize))
	}
	for _, d := range globalSize {
		if d <= 0 {
			return fmt.Errorf("compute: non-positive global work size dimension in %v", globalSize)
		}
	}
	if localSize != nil {
		if len(localSize) != len(globalSize) {
			return fmt.Errorf("compute: local work size rank %d does not match global rank %d",
				len(localSize), len(globalSize))
		}
		for _, d := range localSize {
			if d <= 0 {
				return fmt.Errorf("compute: non-positive local work size dimension in %v", localSize)
			}
		}
	}
	return nil
}

// Invoke sets the kernel's arguments in declaration order and enqueues one
// dispatch over globalSize on the owning context's queue. localSize may be
// nil, in which case the driver picks the work-group tiling. Arguments must
// appear in the kernel's declared parameter order; there is no name-based
// binding.
//
// Invoke returns once the dispatch is enqueued, not when device execution
// finishes. A following blocking transfer (Memory.Read, Memory.ReadImage)
// provides the completion synchronization, since the queue is in-order.
func (k *Kernel) Invoke(globalSize []int, args []interface{}, localSize []int) error {
	if err := checkWorkSize(globalSize, localSize); err != nil {
		return err
	}
	if err := k.kernel.SetArgs(marshalArgs(args)...); err != nil {
		return fmt.Errorf("compute: setting arguments for kernel %q: %w", k.name, err)
	}
	if _, err := k.ctx.queue.EnqueueNDRangeKernel(k.kernel, nil, globalSize, localSize, nil); err != nil {
		return fmt.Errorf("compute: enqueueing kernel %q: %w", k.name, err)
	}
	return nil
}

// Release frees the native kernel handle.
func (k *Kernel) Release() {
	if k.kernel != nil {
		k.kernel.Release()
		k.kernel = nil
	}
}
