package validate

import "github.com/tinywasm/core/wasm"

// maxMemoryPages is the MVP's limit on memory size, in 64KiB pages.
const maxMemoryPages = 65536

func validateMemoryLimits(lim wasm.Limits) error {
	if lim.HasMax && lim.Min > lim.Max {
		return wasm.InvalidMemoryLimitsError(lim)
	}
	if lim.Min > maxMemoryPages || (lim.HasMax && lim.Max > maxMemoryPages) {
		return wasm.InvalidMemoryLimitsError(lim)
	}
	return nil
}

// validateTableLimits checks min <= max; the 2^32-1 bound is already
// implied by Limits' u32 fields.
func validateTableLimits(lim wasm.Limits) error {
	if lim.HasMax && lim.Min > lim.Max {
		return wasm.InvalidTableLimitsError(lim)
	}
	return nil
}
