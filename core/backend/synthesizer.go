package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/openclaw/kokoro-tts/core/config"
	"github.com/openclaw/kokoro-tts/core/schema"
	"github.com/openclaw/kokoro-tts/internal"
	"github.com/openclaw/kokoro-tts/pkg/audio"
	"github.com/openclaw/kokoro-tts/pkg/device"
	"github.com/openclaw/kokoro-tts/pkg/kokoro"
	"github.com/openclaw/kokoro-tts/pkg/pipeline"
)

// Synthesizer is the text-to-speech service. It validates requests, resolves
// the compute device, obtains a cached pipeline, runs inference and encodes
// the result. One instance owns one pipeline cache.
type Synthesizer struct {
	cfg      *config.ApplicationConfig
	selector *device.Selector
	loader   *pipeline.Loader
}

func New(cfg *config.ApplicationConfig) *Synthesizer {
	construct := cfg.PipelineConstructor
	if construct == nil {
		runnerCfg := kokoro.Config{Command: cfg.RunnerCommand, RepoID: cfg.ModelRepo}
		construct = func(_ context.Context, langCode, dev string) (pipeline.Pipeline, error) {
			// The runner outlives the request that constructs it, so its
			// process is bound to the application context.
			return kokoro.New(cfg.Context, runnerCfg, langCode, dev)
		}
	}

	return &Synthesizer{
		cfg:      cfg,
		selector: device.NewSelector(cfg.DeviceProber),
		loader:   pipeline.NewLoader(construct),
	}
}

// Metadata returns the static capability descriptor of the plugin.
func (s *Synthesizer) Metadata() schema.PluginMetadata {
	return schema.PluginMetadata{
		Name:        "kokoro-tts",
		Provider:    "kokoro",
		Version:     internal.PrintableVersion(),
		Description: "Local Kokoro text-to-speech plugin with Metal/CUDA and CPU fallback.",
		Languages:   schema.Languages,
		Voices:      schema.Voices,
		Supports:    []string{"wav", "wav_base64"},
	}
}

// Synthesize runs one end-to-end synthesis call. Omitted request fields fall
// back to the instance defaults.
func (s *Synthesizer) Synthesize(ctx context.Context, req schema.TTSRequest) (*schema.TTSResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	langCode := strings.TrimSpace(req.LangCode)
	if langCode == "" {
		langCode = s.cfg.DefaultLangCode
	}
	devicePref := req.Device
	if devicePref == "" {
		devicePref = s.cfg.DefaultDevice
	}
	voice := req.Voice
	if voice == "" {
		voice = s.cfg.DefaultVoice
	}
	speed := req.Speed
	if speed == 0 {
		speed = s.cfg.DefaultSpeed
	}

	pipe, selection, err := s.pipelineFor(ctx, langCode, devicePref)
	if err != nil {
		return nil, err
	}

	segments, err := pipe.Run(ctx, text, voice, speed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if len(segments) == 0 {
		return nil, ErrNoAudio
	}

	samples := concat(segments)
	log.Debug().Int("segments", len(segments)).Int("samples", len(samples)).
		Str("device", selection.Selected).Msg("synthesis complete")

	format := req.Format
	if format == "" {
		format = "wav"
	}

	result := &schema.TTSResult{
		SampleRate:      kokoro.SampleRate,
		DeviceRequested: selection.Requested,
		DeviceUsed:      selection.Selected,
		UsedFallback:    selection.UsedFallback,
		LangCode:        langCode,
		Voice:           voice,
		Speed:           speed,
		Format:          format,
	}

	switch format {
	case "wav_base64":
		encoded, err := audio.EncodeWAVBase64(samples, kokoro.SampleRate)
		if err != nil {
			return nil, err
		}
		result.AudioBase64 = encoded
	case "wav":
		if strings.TrimSpace(req.OutputPath) == "" {
			return nil, ErrMissingOutputPath
		}
		written, err := audio.WriteWAVFile(req.OutputPath, samples, kokoro.SampleRate)
		if err != nil {
			return nil, err
		}
		result.OutputPath = written
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidResponseFormat, format)
	}

	return result, nil
}

// pipelineFor validates the language, resolves the device preference and
// returns the cached (or newly constructed) pipeline for the pair.
//
// On a cache hit the returned Selection reflects the current call's
// preference, not the one the cached pipeline was built under. A non-cpu
// construction failure is retried once with the device forced to cpu; the
// result is cached under the cpu key.
func (s *Synthesizer) pipelineFor(ctx context.Context, langCode, devicePref string) (pipeline.Pipeline, device.Selection, error) {
	if _, ok := schema.Languages[langCode]; !ok {
		return nil, device.Selection{}, fmt.Errorf("%w %q, supported: %s",
			ErrUnsupportedLanguage, langCode, strings.Join(schema.LanguageCodes(), ", "))
	}

	selection, err := s.selector.Pick(devicePref)
	if err != nil {
		return nil, device.Selection{}, err
	}

	pipe, err := s.loader.Load(ctx, langCode, selection.Selected)
	if err == nil {
		return pipe, selection, nil
	}

	if selection.Selected != device.CPU {
		log.Warn().Err(err).Str("device", selection.Selected).Msg("pipeline init failed, retrying on cpu")
		pipe, cpuErr := s.loader.Load(ctx, langCode, device.CPU)
		if cpuErr == nil {
			return pipe, device.Selection{
				Requested:    selection.Requested,
				Selected:     device.CPU,
				UsedFallback: true,
			}, nil
		}
		err = cpuErr
	}

	return nil, selection, fmt.Errorf("%w: %w", ErrPipelineInit, err)
}

// Shutdown closes every cached pipeline.
func (s *Synthesizer) Shutdown() error {
	return s.loader.Shutdown()
}

func concat(segments [][]float32) []float32 {
	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	samples := make([]float32, 0, total)
	for _, seg := range segments {
		samples = append(samples, seg...)
	}
	return samples
}
