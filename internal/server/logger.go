package server

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. Arguments
// are read as alternating key/value pairs.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger returns a console logger on stderr. Stdout stays free for
// the stdio transport.
func NewZerologLogger(debug bool) *ZerologLogger {
	return NewZerologLoggerWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, debug)
}

// NewZerologLoggerWithWriter returns a logger writing to w
func NewZerologLoggerWithWriter(w io.Writer, debug bool) *ZerologLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return &ZerologLogger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, args ...interface{}) {
	l.logger.Info().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, args ...interface{}) {
	l.logger.Error().Fields(args).Msg(msg)
}
