package device

import (
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Kind identifies the execution target the model is bound to.
type Kind string

const (
	KindCUDA  Kind = "cuda"
	KindMetal Kind = "metal"
	KindCPU   Kind = "cpu"
)

// Precision is the numeric precision used for model weights/compute.
type Precision string

const (
	PrecisionF16 Precision = "f16"
	PrecisionF32 Precision = "f32"
)

// Device is the resolved execution target. Accelerators run reduced
// precision; the CPU fallback runs full precision.
type Device struct {
	Kind      Kind
	Precision Precision
	// Variant carries the CPU vector extension level (avx2, avx or empty).
	Variant string
}

// Accelerated reports whether the device is a hardware accelerator.
func (d Device) Accelerated() bool { return d.Kind != KindCPU }

// Probes abstract hardware detection so selection is testable without the
// hardware present.
type Probes struct {
	CUDA  func() bool
	Metal func() bool
}

// Detect picks the best available device: cuda > metal > cpu.
func Detect() Device {
	return DetectWith(Probes{CUDA: cudaAvailable, Metal: metalAvailable})
}

// DetectWith runs selection against the given probes. A nil probe counts as
// "not available". Falling back to CPU is not an error.
func DetectWith(p Probes) Device {
	if p.CUDA != nil && p.CUDA() {
		return Device{Kind: KindCUDA, Precision: PrecisionF16}
	}
	if p.Metal != nil && p.Metal() {
		return Device{Kind: KindMetal, Precision: PrecisionF16}
	}
	return Device{Kind: KindCPU, Precision: PrecisionF32, Variant: cpuVariant()}
}

// cudaLibGlobs are common locations of the CUDA runtime on Linux.
var cudaLibGlobs = []string{
	"/usr/local/cuda/lib64/libcudart.so*",
	"/usr/lib/x86_64-linux-gnu/libcudart.so*",
	"/usr/lib/wsl/lib/libcudart.so*",
	"/opt/cuda/lib64/libcudart.so*",
	"/usr/lib/aarch64-linux-gnu/libcudart.so*",
}

// cudaAvailable probes for an NVIDIA driver plus a CUDA runtime library.
func cudaAvailable() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		return false
	}
	if runtime.GOOS == "linux" {
		if _, err := os.Stat("/proc/driver/nvidia/version"); err != nil {
			return false
		}
	}
	for _, g := range cudaLibGlobs {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			return true
		}
	}
	return runtime.GOOS == "linux"
}

// metalAvailable reports whether the Apple unified-memory accelerator can be
// used. Intel Macs report false; Metal there is not worth the copy overhead.
func metalAvailable() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

func cpuVariant() string {
	if cpu.X86.HasAVX2 {
		return "avx2"
	}
	if cpu.X86.HasAVX {
		return "avx"
	}
	return ""
}
