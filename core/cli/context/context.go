package cliContext

type Context struct {
	Debug     bool    `env:"KOKORO_DEBUG,DEBUG" default:"false" hidden:"" help:"DEPRECATED, use --log-level=debug instead. Enable debug logging"`
	LogLevel  *string `env:"KOKORO_LOG_LEVEL" enum:"error,warn,info,debug,trace" help:"Set the level of logs to output [${enum}]"`
	LogFormat *string `env:"KOKORO_LOG_FORMAT" default:"console" enum:"console,json" help:"Set the format of logs to output [${enum}]"`
}
