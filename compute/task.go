package compute

import "regexp"

// The entry-point pattern is textual, not a parse of the kernel language:
// declaration keyword, void return type, identifier, open paren.
var kernelNamePattern = regexp.MustCompile(`__kernel\s+void\s+(\w+)\s*\(`)

// entryPointName extracts the first kernel entry-point name declared in
// source, or ErrNoEntryPoint when the pattern matches nothing.
func entryPointName(source string) (string, error) {
	m := kernelNamePattern.FindStringSubmatch(source)
	if m == nil {
		return "", ErrNoEntryPoint
	}
	return m[1], nil
}

// Task is the high-level facade for the common one-kernel case: it discovers
// the entry-point name in the source text, builds a Context, compiles the
// source, and exposes a single Execute call.
//
// One entry point per Task: when the source declares several kernels, the
// first declaration is the one Execute runs. Additional entry points stay
// reachable through Program().Kernel(name).
type Task struct {
	ctx        *Context
	program    *Program
	kernelName string
	kernel     *Kernel
}

// NewTask extracts the kernel entry-point name from source, builds a device
// context per cfg, and compiles the source against it. Fails with
// ErrNoEntryPoint when no kernel declaration is found, *NoDeviceError when
// device selection fails, and *CompileError when the build fails.
func NewTask(source string, cfg Config) (*Task, error) {
	name, err := entryPointName(source)
	if err != nil {
		return nil, err
	}
	ctx, err := NewContext(cfg)
	if err != nil {
		return nil, err
	}
	program, err := ctx.Compile(source)
	if err != nil {
		ctx.Release()
		return nil, err
	}
	return &Task{ctx: ctx, program: program, kernelName: name}, nil
}

// KernelName returns the entry-point name discovered in the source.
func (t *Task) KernelName() string { return t.kernelName }

// Context returns the task's device context, for creating Memory objects.
func (t *Task) Context() *Context { return t.ctx }

// Program returns the compiled program, for resolving further entry points
// from multi-kernel source.
func (t *Task) Program() *Program { return t.program }

// Execute resolves the discovered entry point (once, cached) and invokes it
// with the given work sizes and arguments. Results are read back through
// the Memory objects named as outputs; Execute itself returns nothing but
// the dispatch error.
func (t *Task) Execute(globalSize []int, args []interface{}, localSize []int) error {
	if t.kernel == nil {
		k, err := t.program.Kernel(t.kernelName)
		if err != nil {
			return err
		}
		t.kernel = k
	}
	return t.kernel.Invoke(globalSize, args, localSize)
}

// Release frees the compiled program and the owned context.
func (t *Task) Release() {
	if t.program != nil {
		t.program.Release()
		t.program = nil
	}
	if t.ctx != nil {
		t.ctx.Release()
		t.ctx = nil
	}
}
