package device

import (
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/klauspost/cpuid/v2"
	"github.com/rs/zerolog/log"
)

var (
	gpuCache     []*gpu.GraphicsCard
	gpuCacheOnce sync.Once
	gpuCacheErr  error
)

func graphicsCards() ([]*gpu.GraphicsCard, error) {
	gpuCacheOnce.Do(func() {
		info, err := ghw.GPU()
		if err != nil {
			gpuCacheErr = err
			return
		}
		gpuCache = info.GraphicsCards
	})

	return gpuCache, gpuCacheErr
}

// SystemProber queries the real host hardware. Probe results are cached for
// the process lifetime.
type SystemProber struct{}

// HasMetal reports whether the Metal backend is usable, which in practice
// means an Apple Silicon host.
func (SystemProber) HasMetal() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

// HasCUDA reports whether an NVIDIA GPU is present, either via PCI
// enumeration or by a working nvidia-smi on the path.
func (SystemProber) HasCUDA() bool {
	cards, err := graphicsCards()
	if err != nil {
		log.Debug().Err(err).Msg("GPU enumeration failed")
	}
	for _, card := range cards {
		if card != nil && strings.Contains(strings.ToLower(card.String()), "nvidia") {
			return true
		}
	}

	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return true
	}

	return false
}

// CPUName returns a printable identifier of the host CPU.
func CPUName() string {
	if cpuid.CPU.BrandName != "" {
		return cpuid.CPU.BrandName
	}
	return runtime.GOARCH
}

// CPUPhysicalCores returns the physical core count, never less than 1.
func CPUPhysicalCores() int {
	if cpuid.CPU.PhysicalCores <= 0 {
		return 1
	}
	return cpuid.CPU.PhysicalCores
}
