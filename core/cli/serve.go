package cli

import (
	"github.com/rs/zerolog/log"

	"github.com/openclaw/kokoro-tts/core/backend"
	cliContext "github.com/openclaw/kokoro-tts/core/cli/context"
	"github.com/openclaw/kokoro-tts/core/config"
	"github.com/openclaw/kokoro-tts/core/http"
	"github.com/openclaw/kokoro-tts/pkg/device"
)

type ServeCMD struct {
	Address string `env:"KOKORO_ADDRESS" default:":8765" help:"Bind address for the API server"`

	Lang   string `env:"KOKORO_LANG" default:"a" help:"Default Kokoro language code (a/b)"`
	Voice  string `env:"KOKORO_VOICE" default:"af_heart" help:"Default Kokoro voice id"`
	Device string `env:"KOKORO_DEVICE" default:"auto" enum:"auto,metal,cuda,cpu" help:"Default compute device [${enum}]"`

	RunnerCommand string `env:"KOKORO_RUNNER" help:"Kokoro runner executable" group:"runner"`
	ModelRepo     string `env:"KOKORO_MODEL_REPO" help:"Pretrained weights repository id" group:"runner"`
}

func (s *ServeCMD) Run(ctx *cliContext.Context) error {
	cfg := config.NewApplicationConfig(
		config.WithDefaultLangCode(s.Lang),
		config.WithDefaultVoice(s.Voice),
		config.WithDefaultDevice(s.Device),
		config.WithRunnerCommand(s.RunnerCommand),
		config.WithModelRepo(s.ModelRepo),
		config.WithAddress(s.Address),
	)

	sy := backend.New(cfg)
	defer sy.Shutdown()

	e := http.App(sy)
	log.Info().
		Str("address", cfg.Address).
		Str("cpu", device.CPUName()).
		Int("cores", device.CPUPhysicalCores()).
		Msg("starting API server")
	return e.Start(cfg.Address)
}
