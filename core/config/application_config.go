package config

import (
	"context"

	"github.com/openclaw/kokoro-tts/pkg/device"
	"github.com/openclaw/kokoro-tts/pkg/pipeline"
)

// ApplicationConfig carries the instance-level defaults and the wiring points
// for everything the synthesizer needs. Nothing here is persisted.
type ApplicationConfig struct {
	Context context.Context

	DefaultLangCode string
	DefaultVoice    string
	DefaultDevice   string
	DefaultSpeed    float64

	// RunnerCommand is the external Kokoro runner executable. Empty picks
	// the packaged default.
	RunnerCommand string
	// ModelRepo overrides the pretrained weights repository id.
	ModelRepo string

	// Address is the HTTP API bind address.
	Address string

	// DeviceProber overrides hardware availability probing, nil means the
	// real system prober.
	DeviceProber device.Prober
	// PipelineConstructor overrides pipeline construction, nil means the
	// Kokoro runner process.
	PipelineConstructor pipeline.Constructor
}

type AppOption func(*ApplicationConfig)

func NewApplicationConfig(o ...AppOption) *ApplicationConfig {
	opt := &ApplicationConfig{
		Context:         context.Background(),
		DefaultLangCode: "a",
		DefaultVoice:    "af_heart",
		DefaultDevice:   device.Auto,
		DefaultSpeed:    1.0,
		Address:         ":8765",
	}
	for _, oo := range o {
		oo(opt)
	}
	return opt
}

func WithContext(ctx context.Context) AppOption {
	return func(o *ApplicationConfig) {
		o.Context = ctx
	}
}

func WithDefaultLangCode(code string) AppOption {
	return func(o *ApplicationConfig) {
		if code != "" {
			o.DefaultLangCode = code
		}
	}
}

func WithDefaultVoice(voice string) AppOption {
	return func(o *ApplicationConfig) {
		if voice != "" {
			o.DefaultVoice = voice
		}
	}
}

func WithDefaultDevice(preference string) AppOption {
	return func(o *ApplicationConfig) {
		if preference != "" {
			o.DefaultDevice = preference
		}
	}
}

func WithRunnerCommand(command string) AppOption {
	return func(o *ApplicationConfig) {
		o.RunnerCommand = command
	}
}

func WithModelRepo(repo string) AppOption {
	return func(o *ApplicationConfig) {
		o.ModelRepo = repo
	}
}

func WithAddress(addr string) AppOption {
	return func(o *ApplicationConfig) {
		if addr != "" {
			o.Address = addr
		}
	}
}

func WithDeviceProber(p device.Prober) AppOption {
	return func(o *ApplicationConfig) {
		o.DeviceProber = p
	}
}

func WithPipelineConstructor(c pipeline.Constructor) AppOption {
	return func(o *ApplicationConfig) {
		o.PipelineConstructor = c
	}
}
