// Package device resolves a caller's compute device preference against the
// accelerators actually present on the host.
package device

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Auto  = "auto"
	Metal = "metal"
	CUDA  = "cuda"
	CPU   = "cpu"
)

var ErrInvalidDevice = errors.New("invalid device preference")

// Selection records how a device preference was resolved for one call.
// Selected is never Auto.
type Selection struct {
	Requested    string
	Selected     string
	UsedFallback bool
}

// Prober reports accelerator availability. It exists so selection logic can be
// tested without real hardware present.
type Prober interface {
	HasMetal() bool
	HasCUDA() bool
}

// Selector maps device preferences to available devices.
type Selector struct {
	prober Prober
}

func NewSelector(p Prober) *Selector {
	if p == nil {
		p = SystemProber{}
	}
	return &Selector{prober: p}
}

// Pick resolves preference to an available device.
//
// "auto" probes Metal first, then CUDA, then falls back to CPU; the first
// available wins and UsedFallback stays false since no specific device was
// asked for. A specific accelerator that is unavailable silently downgrades to
// CPU with UsedFallback set - callers needing strict enforcement must inspect
// it. "cpu" is always honored.
func (s *Selector) Pick(preference string) (Selection, error) {
	preferred := strings.ToLower(strings.TrimSpace(preference))
	if preferred == "" {
		preferred = Auto
	}

	switch preferred {
	case Auto:
		return Selection{Requested: Auto, Selected: s.autoDevice()}, nil
	case Metal:
		if !s.prober.HasMetal() {
			return Selection{Requested: Metal, Selected: CPU, UsedFallback: true}, nil
		}
	case CUDA:
		if !s.prober.HasCUDA() {
			return Selection{Requested: CUDA, Selected: CPU, UsedFallback: true}, nil
		}
	case CPU:
	default:
		return Selection{}, fmt.Errorf("%w: %q, use auto|metal|cuda|cpu", ErrInvalidDevice, preference)
	}

	return Selection{Requested: preferred, Selected: preferred}, nil
}

// autoDevice probes Apple Metal first, then NVIDIA CUDA, then CPU.
func (s *Selector) autoDevice() string {
	if s.prober.HasMetal() {
		return Metal
	}
	if s.prober.HasCUDA() {
		return CUDA
	}
	return CPU
}
