package main

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openclaw/kokoro-tts/core/cli"
	"github.com/openclaw/kokoro-tts/internal"
)

func main() {
	// Log at INFO until the CLI options tell us otherwise. Logs go to
	// stderr so the stdout JSON envelope stays machine-readable.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// handle loading environment variables from .env files
	envFiles := []string{".env", "kokoro-tts.env"}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		envFiles = append(envFiles, filepath.Join(homeDir, ".config/kokoro-tts.env"))
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			log.Debug().Str("envFile", envFile).Msg("env file found, loading environment variables from file")
			if err := godotenv.Load(envFile); err != nil {
				log.Error().Err(err).Str("envFile", envFile).Msg("failed to load environment variables from file")
			}
		}
	}

	ctx := kong.Parse(&cli.CLI,
		kong.Description(
			`  kokoro-tts exposes the local Kokoro text-to-speech model as an OpenClaw plugin:
a one-shot CLI emitting a JSON envelope, and an optional local HTTP API.

Version: ${version}
`,
		),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.PrintableVersion(),
		},
	)

	// Preserve the --debug shorthand.
	logLevel := "info"
	if cli.CLI.Debug && cli.CLI.LogLevel == nil {
		logLevel = "debug"
	}
	if cli.CLI.LogLevel != nil {
		logLevel = *cli.CLI.LogLevel
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cli.CLI.LogFormat != nil && *cli.CLI.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// The synthesize command reports its own failure on stdout as
	// {"ok":false,...}; here the error only drives the exit status.
	if err := ctx.Run(&cli.CLI.Context); err != nil {
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
