package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger interface {
	Logf(format string, v ...interface{})
}

// Console writes human readable lines through zerolog.
type Console struct {
	z zerolog.Logger
}

func NewConsole(w io.Writer, level string) (*Console, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("log level: %v", err)
		}
	}
	if w == nil {
		w = os.Stdout
	}

	cw := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(w),
		NoColor:    true,
		TimeFormat: "15:04:05",
	}
	z := zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
	return &Console{z: z}, nil
}

func (l *Console) Logf(format string, v ...interface{}) {
	l.z.Info().Msgf(format, v...)
}

func (l *Console) Debugf(format string, v ...interface{}) {
	l.z.Debug().Msgf(format, v...)
}

type nop struct{}

func (nop) Logf(format string, v ...interface{}) {}

func Nop() Logger {
	return nop{}
}
