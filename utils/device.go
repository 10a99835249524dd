// Package utils holds device-discovery helpers shared by the example
// programs.
package utils

import (
	"fmt"

	"github.com/clframe/clframe/compute"
)

// FindContext acquires a compute context, preferring a GPU and falling back
// to a CPU OpenCL runtime when no GPU qualifies. Examples use this so they
// run on machines with CPU-only drivers.
func FindContext(requireImageSupport bool) (*compute.Context, error) {
	kinds := []compute.DeviceKind{compute.GPU, compute.CPU}

	for _, kind := range kinds {
		ctx, err := compute.NewContext(compute.Config{
			Kind:                kind,
			RequireImageSupport: requireImageSupport,
		})
		if err == nil {
			fmt.Printf("Using %s device: %s\n", kind, ctx.DeviceName())
			return ctx, nil
		}
	}

	return nil, fmt.Errorf("utils: no usable OpenCL device (image support required: %v)", requireImageSupport)
}
