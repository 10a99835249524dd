package compute

import "testing"

// newTestContext acquires a context for device-dependent tests, preferring
// GPU and falling back to CPU, and reports which kind it bound so tests
// that build their own Config target a device that actually exists. Tests
// skip when the machine has no OpenCL runtime at all.
func newTestContext(t *testing.T, requireImages bool) (*Context, DeviceKind) {
	t.Helper()
	for _, kind := range []DeviceKind{GPU, CPU} {
		ctx, err := NewContext(Config{Kind: kind, RequireImageSupport: requireImages})
		if err == nil {
			return ctx, kind
		}
	}
	if requireImages {
		t.Skip("no OpenCL device with image support available")
	}
	t.Skip("no OpenCL device available")
	return nil, GPU
}
