// Package log provides the structured logger shared by every
// component in this module, built on zerolog the way gnark-crypto's
// own tooling does.
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

func root() zerolog.Logger {
	once.Do(func() {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	})
	return base
}

// For returns a logger with a "component" field set, used by every
// package so log lines can be filtered by subsystem.
func For(component string) zerolog.Logger {
	return root().With().Str("component", component).Logger()
}
