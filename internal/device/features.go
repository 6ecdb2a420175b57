package device

import (
	"runtime"
	"sort"

	"golang.org/x/sys/cpu"
)

// Features reports the host CPU extensions relevant to the packed binary
// kernels: population count and the vector units that can run it wide.
func (d *Device) Features() map[string]bool {
	return hostFeatures()
}

func hostFeatures() map[string]bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return map[string]bool{
			"POPCNT":          cpu.X86.HasPOPCNT,
			"AVX2":            cpu.X86.HasAVX2,
			"AVX512F":         cpu.X86.HasAVX512F,
			"AVX512BITALG":    cpu.X86.HasAVX512BITALG,
			"AVX512VPOPCNTDQ": cpu.X86.HasAVX512VPOPCNTDQ,
		}
	case "arm64":
		return map[string]bool{
			"ASIMD": cpu.ARM64.HasASIMD,
			"SVE":   cpu.ARM64.HasSVE,
		}
	default:
		return map[string]bool{}
	}
}

// FeatureList returns the enabled feature names in sorted order.
func (d *Device) FeatureList() []string {
	var out []string
	for name, ok := range d.Features() {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
