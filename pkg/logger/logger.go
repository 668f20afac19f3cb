package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Service      string `split_words:"true" default:"deskive"`
}

var DefaultConfig = &Config{
	Service: "deskive",
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global logger. Every event carries the service name so
// degraded-mode warnings from the agents stay attributable downstream.
func Init(opts ...Config) {
	log.Logger = build(safe(opts...), os.Stdout)
}

func build(conf *Config, out io.Writer) zerolog.Logger {
	if conf.PrettyFormat {
		cw := zerolog.NewConsoleWriter()
		cw.Out = out
		out = cw
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}
	return ctx.Caller().Stack().Logger()
}
