package cli

import (
	"encoding/json"
	"os"

	"github.com/openclaw/kokoro-tts/core/backend"
	cliContext "github.com/openclaw/kokoro-tts/core/cli/context"
	"github.com/openclaw/kokoro-tts/core/config"
)

type MetadataCMD struct{}

func (m *MetadataCMD) Run(ctx *cliContext.Context) error {
	sy := backend.New(config.NewApplicationConfig())
	defer sy.Shutdown()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sy.Metadata())
}
