package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-level console logger. It is distinct from the
// activity log: this one is for operators tailing the service, the
// activity log is the durable per-merchant audit trail.
type Logger struct {
	zl zerolog.Logger
}

func New(level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msg(format(msg, args))
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Msg(format(msg, args))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msg(format(msg, args))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msg(format(msg, args))
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.zl.Fatal().Msg(format(msg, args))
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
