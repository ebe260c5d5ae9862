package backend_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/openclaw/kokoro-tts/core/backend"
	"github.com/openclaw/kokoro-tts/core/config"
	"github.com/openclaw/kokoro-tts/core/schema"
	"github.com/openclaw/kokoro-tts/pkg/device"
	"github.com/openclaw/kokoro-tts/pkg/pipeline"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeProber struct {
	metal bool
	cuda  bool
}

func (f fakeProber) HasMetal() bool { return f.metal }
func (f fakeProber) HasCUDA() bool  { return f.cuda }

type fakePipeline struct {
	device   string
	segments [][]float32
	runErr   error
}

func (f *fakePipeline) Run(ctx context.Context, text, voice string, speed float64) ([][]float32, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.segments, nil
}

func (f *fakePipeline) Close() error { return nil }

// recordingConstructor counts constructions per (lang, device) and hands out
// fakes, optionally failing for selected devices.
type recordingConstructor struct {
	mu       sync.Mutex
	calls    map[string]int
	failOn   map[string]error
	segments [][]float32
	runErr   error
	built    []*fakePipeline
}

func newRecordingConstructor() *recordingConstructor {
	return &recordingConstructor{
		calls:    map[string]int{},
		failOn:   map[string]error{},
		segments: [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5}},
	}
}

func (r *recordingConstructor) construct(ctx context.Context, langCode, dev string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[langCode+"/"+dev]++
	if err, ok := r.failOn[dev]; ok {
		return nil, err
	}
	p := &fakePipeline{device: dev, segments: r.segments, runErr: r.runErr}
	r.built = append(r.built, p)
	return p, nil
}

func (r *recordingConstructor) count(langCode, dev string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[langCode+"/"+dev]
}

func (r *recordingConstructor) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

var _ = Describe("Synthesizer", func() {
	var (
		ctor *recordingConstructor
		sy   *backend.Synthesizer
	)

	newSynthesizer := func(opts ...config.AppOption) *backend.Synthesizer {
		base := []config.AppOption{
			config.WithDeviceProber(fakeProber{}),
			config.WithPipelineConstructor(ctor.construct),
		}
		return backend.New(config.NewApplicationConfig(append(base, opts...)...))
	}

	BeforeEach(func() {
		ctor = newRecordingConstructor()
		sy = newSynthesizer()
	})

	AfterEach(func() {
		sy.Shutdown()
	})

	Context("input validation", func() {
		It("rejects empty text before touching any pipeline", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{Text: ""})
			Expect(err).To(MatchError(backend.ErrEmptyInput))
			Expect(ctor.total()).To(BeZero())
		})

		It("rejects whitespace-only text before touching any pipeline", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{Text: "  \n\t "})
			Expect(err).To(MatchError(backend.ErrEmptyInput))
			Expect(ctor.total()).To(BeZero())
		})

		It("rejects an unsupported language code, naming the valid ones", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{Text: "Hello", LangCode: "z"})
			Expect(err).To(MatchError(backend.ErrUnsupportedLanguage))
			Expect(err.Error()).To(ContainSubstring(`"z"`))
			Expect(err.Error()).To(ContainSubstring("a, b"))
			Expect(ctor.total()).To(BeZero())
		})

		It("rejects an invalid device preference", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{Text: "Hello", Device: "tpu"})
			Expect(err).To(MatchError(device.ErrInvalidDevice))
		})

		It("rejects an unknown response format", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Format: "mp3",
			})
			Expect(err).To(MatchError(backend.ErrInvalidResponseFormat))
		})
	})

	Context("wav_base64 synthesis", func() {
		It("returns the full result bundle for an explicit cpu request", func() {
			result, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text:     "Hello",
				Voice:    "af_heart",
				LangCode: "a",
				Device:   "cpu",
				Format:   "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(result.SampleRate).To(Equal(24000))
			Expect(result.DeviceRequested).To(Equal("cpu"))
			Expect(result.DeviceUsed).To(Equal("cpu"))
			Expect(result.UsedFallback).To(BeFalse())
			Expect(result.LangCode).To(Equal("a"))
			Expect(result.Voice).To(Equal("af_heart"))
			Expect(result.Speed).To(Equal(1.0))
			Expect(result.Format).To(Equal("wav_base64"))
			Expect(result.AudioBase64).ToNot(BeEmpty())
			Expect(result.OutputPath).To(BeEmpty())
		})

		It("applies instance defaults for omitted fields", func() {
			result, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text:   "Hello",
				Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.LangCode).To(Equal("a"))
			Expect(result.Voice).To(Equal("af_heart"))
			Expect(result.Speed).To(Equal(1.0))
			Expect(result.DeviceRequested).To(Equal("auto"))
			Expect(result.DeviceUsed).To(Equal("cpu"))
			Expect(result.UsedFallback).To(BeFalse())
		})
	})

	Context("pipeline caching", func() {
		It("constructs at most once per (language, device) pair", func() {
			req := schema.TTSRequest{Text: "Hello", Device: "cpu", Format: "wav_base64"}

			_, err := sy.Synthesize(context.Background(), req)
			Expect(err).ToNot(HaveOccurred())
			_, err = sy.Synthesize(context.Background(), req)
			Expect(err).ToNot(HaveOccurred())

			Expect(ctor.count("a", "cpu")).To(Equal(1))
			Expect(ctor.total()).To(Equal(1))
		})

		It("constructs separately per language", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", LangCode: "a", Device: "cpu", Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", LangCode: "b", Device: "cpu", Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(ctor.count("a", "cpu")).To(Equal(1))
			Expect(ctor.count("b", "cpu")).To(Equal(1))
		})
	})

	Context("device fallback during construction", func() {
		It("retries once on cpu when accelerator init fails", func() {
			ctor.failOn["cuda"] = errors.New("CUDA driver mismatch")
			sy = newSynthesizer(config.WithDeviceProber(fakeProber{cuda: true}))

			result, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Device: "cuda", Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.DeviceRequested).To(Equal("cuda"))
			Expect(result.DeviceUsed).To(Equal("cpu"))
			Expect(result.UsedFallback).To(BeTrue())

			Expect(ctor.count("a", "cuda")).To(Equal(1))
			Expect(ctor.count("a", "cpu")).To(Equal(1))
		})

		It("caches the fallback pipeline under the cpu key", func() {
			ctor.failOn["cuda"] = errors.New("CUDA driver mismatch")
			sy = newSynthesizer(config.WithDeviceProber(fakeProber{cuda: true}))

			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Device: "cuda", Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Device: "cpu", Format: "wav_base64",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(ctor.count("a", "cpu")).To(Equal(1))
		})

		It("propagates PipelineInitFailed when the cpu retry also fails", func() {
			cause := errors.New("weights not found")
			ctor.failOn["cuda"] = errors.New("CUDA driver mismatch")
			ctor.failOn["cpu"] = cause
			sy = newSynthesizer(config.WithDeviceProber(fakeProber{cuda: true}))

			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Device: "cuda", Format: "wav_base64",
			})
			Expect(err).To(MatchError(backend.ErrPipelineInit))
			Expect(err).To(MatchError(cause))
		})

		It("propagates PipelineInitFailed with no retry when cpu init fails", func() {
			cause := errors.New("weights not found")
			ctor.failOn["cpu"] = cause

			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Device: "cpu", Format: "wav_base64",
			})
			Expect(err).To(MatchError(backend.ErrPipelineInit))
			Expect(err).To(MatchError(cause))
			Expect(ctor.count("a", "cpu")).To(Equal(1))
		})
	})

	Context("inference failures", func() {
		It("wraps a raising pipeline as SynthesisFailed", func() {
			ctor.runErr = errors.New("graph execution aborted")
			sy = newSynthesizer()

			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Format: "wav_base64",
			})
			Expect(err).To(MatchError(backend.ErrSynthesis))
		})

		It("treats zero segments as NoAudioProduced, not an empty success", func() {
			ctor.segments = nil
			sy = newSynthesizer()

			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Format: "wav_base64",
			})
			Expect(err).To(MatchError(backend.ErrNoAudio))
		})
	})

	Context("wav file output", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "kokoro-backend-test")
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("fails with MissingOutputPath when no destination is given", func() {
			_, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Format: "wav",
			})
			Expect(err).To(MatchError(backend.ErrMissingOutputPath))
		})

		It("writes the file and returns its absolute path", func() {
			out := filepath.Join(dir, "speech", "out.wav")
			result, err := sy.Synthesize(context.Background(), schema.TTSRequest{
				Text: "Hello", Format: "wav", OutputPath: out,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.OutputPath).To(BeAnExistingFile())
			Expect(filepath.IsAbs(result.OutputPath)).To(BeTrue())
			Expect(result.AudioBase64).To(BeEmpty())
		})
	})

	Context("Metadata", func() {
		It("lists the supported languages, voices and formats", func() {
			md := sy.Metadata()
			Expect(md.Name).To(Equal("kokoro-tts"))
			Expect(md.Provider).To(Equal("kokoro"))
			Expect(md.Languages).To(HaveKey("a"))
			Expect(md.Languages).To(HaveKey("b"))
			Expect(md.Voices["a"]).To(ContainElement("af_heart"))
			Expect(md.Voices["b"]).To(ContainElement("bm_george"))
			Expect(md.Supports).To(ConsistOf("wav", "wav_base64"))
		})
	})
})
