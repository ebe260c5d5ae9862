package cli

import (
	"encoding/json"
	"os"

	"github.com/openclaw/kokoro-tts/core/backend"
	cliContext "github.com/openclaw/kokoro-tts/core/cli/context"
	"github.com/openclaw/kokoro-tts/core/config"
	"github.com/openclaw/kokoro-tts/core/schema"
)

type SynthesizeCMD struct {
	Text string `required:"" help:"Text to synthesize"`

	Voice  string  `default:"af_heart" help:"Kokoro voice id"`
	Lang   string  `env:"KOKORO_LANG" default:"a" help:"Kokoro language code (a/b)"`
	Speed  float64 `default:"1.0" help:"Speed multiplier, 1.0 is normal"`
	Device string  `env:"KOKORO_DEVICE" default:"auto" enum:"auto,metal,cuda,cpu" help:"Preferred compute device [${enum}]"`
	Format string  `name:"format" default:"wav" enum:"wav,wav_base64" help:"Plugin response format [${enum}]"`
	Output string  `default:"./output.wav" type:"path" help:"Output WAV path (used with --format wav)"`

	RunnerCommand string `env:"KOKORO_RUNNER" help:"Kokoro runner executable" group:"runner"`
	ModelRepo     string `env:"KOKORO_MODEL_REPO" help:"Pretrained weights repository id" group:"runner"`
}

// Run performs one synthesis call and emits a single JSON line on stdout:
// {"ok":true,"result":{...}} on success, {"ok":false,"error":"..."} on
// failure. The returned error only drives the process exit status.
func (t *SynthesizeCMD) Run(ctx *cliContext.Context) error {
	cfg := config.NewApplicationConfig(
		config.WithDefaultLangCode(t.Lang),
		config.WithDefaultDevice(t.Device),
		config.WithRunnerCommand(t.RunnerCommand),
		config.WithModelRepo(t.ModelRepo),
	)

	sy := backend.New(cfg)
	defer sy.Shutdown()

	req := schema.TTSRequest{
		Text:     t.Text,
		Voice:    t.Voice,
		Speed:    t.Speed,
		LangCode: t.Lang,
		Device:   t.Device,
		Format:   t.Format,
	}
	if t.Format == "wav" {
		req.OutputPath = t.Output
	}

	enc := json.NewEncoder(os.Stdout)

	result, err := sy.Synthesize(cfg.Context, req)
	if err != nil {
		enc.Encode(schema.Envelope{OK: false, Error: err.Error()})
		return err
	}
	return enc.Encode(schema.Envelope{OK: true, Result: result})
}
