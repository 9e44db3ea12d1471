// Package trace implements CursedVM's embedder collaborator (b): "a
// byte sink for debug/trace output". It wraps go.uber.org/zap with a
// WriteSyncer that forwards to whatever io.Writer the embedder
// supplied, so sys-class state dumps and assembler/linker diagnostics
// never write to os.Stdout directly.
package trace

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink is a debug/trace destination bound to an embedder-supplied
// io.Writer. A nil *Sink is valid and discards everything.
type Sink struct {
	log *zap.Logger
}

type writerSyncer struct{ w io.Writer }

func (w writerSyncer) Write(p []byte) (int, error) { return w.w.Write(p) }
func (w writerSyncer) Sync() error                 { return nil }

// New builds a Sink writing plain, unadorned lines to w. debug enables
// per-instruction Debug-level tracing; when false only Info/Warn level
// output (state dumps, diagnostics) is emitted.
func New(w io.Writer, debug bool) *Sink {
	if w == nil {
		return nil
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), writerSyncer{w}, level)
	return &Sink{log: zap.New(core)}
}

// Discard returns a Sink that drops everything.
func Discard() *Sink { return nil }

func (s *Sink) Debugf(format string, args ...any) {
	if s == nil {
		return
	}
	s.log.Debug(sprintf(format, args...))
}

func (s *Sink) Infof(format string, args ...any) {
	if s == nil {
		return
	}
	s.log.Info(sprintf(format, args...))
}

func (s *Sink) Warnf(format string, args ...any) {
	if s == nil {
		return
	}
	s.log.Warn(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
