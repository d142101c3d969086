// Package logx configures the process-wide zerolog logger.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `split_words:"true" default:"info"`
	// Pretty switches to the human console writer for local runs.
	Pretty bool `split_words:"true" default:"false"`
}

// Init replaces the global logger. Safe to call once at startup; the autoload
// package does this from the environment.
func Init(conf Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(conf.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if conf.Pretty {
		base = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		base = zerolog.New(os.Stdout)
	}

	log.Logger = base.Level(level).With().Timestamp().Caller().Logger()
}
