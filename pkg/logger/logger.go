// Package logger is the structured logging facade used by the SDK.
//
// Arguments after the message are alternating key/value pairs, the same
// convention as log/slog. The default implementation writes JSON lines
// through zerolog.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// New starts building a zerolog-backed Logger writing to stderr at info level.
func New() *LogBuild {
	return &LogBuild{
		writer: os.Stderr,
		level:  zerolog.InfoLevel,
	}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// Level sets the minimum level by name ("debug", "info", "warn", "error").
// Unknown names keep the current level.
func (build *LogBuild) Level(name string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(name); err == nil && lvl != zerolog.NoLevel {
		build.level = lvl
	}
	return build
}

func (build *LogBuild) Make() (*ZeroLogger, error) {
	writer := build.writer
	if build.path != "" {
		f, err := os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(f)
	}
	zl := zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return &ZeroLogger{Logger: zl}, nil
}

// MustMake is Make for builders that cannot fail, i.e. without FromPath.
func (build *LogBuild) MustMake() *ZeroLogger {
	l, err := build.Make()
	if err != nil {
		panic(err)
	}
	return l
}

// ZeroLogger adapts a zerolog.Logger to Logger.
type ZeroLogger struct {
	Logger zerolog.Logger
}

func (l *ZeroLogger) Error(msg string, args ...any) {
	emit(l.Logger.Error(), msg, args)
}

func (l *ZeroLogger) Warn(msg string, args ...any) {
	emit(l.Logger.Warn(), msg, args)
}

func (l *ZeroLogger) Info(msg string, args ...any) {
	emit(l.Logger.Info(), msg, args)
}

func (l *ZeroLogger) Debug(msg string, args ...any) {
	emit(l.Logger.Debug(), msg, args)
}

func emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 == len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		if err, isErr := args[i+1].(error); isErr {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

func (nop) Error(string, ...any) {}
func (nop) Warn(string, ...any)  {}
func (nop) Info(string, ...any)  {}
func (nop) Debug(string, ...any) {}
