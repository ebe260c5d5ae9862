package cli

import (
	cliContext "github.com/openclaw/kokoro-tts/core/cli/context"
)

var CLI struct {
	cliContext.Context `embed:""`

	Synthesize SynthesizeCMD `cmd:"" help:"Convert text to speech, this is the default command if no other command is specified" default:"withargs"`
	Metadata   MetadataCMD   `cmd:"" help:"Print the plugin capability descriptor (languages, voices, formats)"`
	Serve      ServeCMD      `cmd:"" help:"Expose the synthesizer over a local HTTP API"`
}
