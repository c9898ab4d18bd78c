// Package logutil provides logging utilities.
package logutil

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	out = &sink{w: io.Discard}
	// All loggers share one core, so that changing the output affects loggers
	// that have already been created.
	core = zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		out,
		zap.NewAtomicLevelAt(zapcore.DebugLevel))
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// GetLogger gets a logger with a name like "[pkg] ". Loggers write nothing
// until SetOutput or SetOutputFile is called.
func GetLogger(name string) *zap.SugaredLogger {
	name = strings.Trim(name, "[] ")
	return zap.New(core, zap.AddCaller()).Named(name).Sugar()
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newOut io.Writer) {
	out.set(newOut)
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file. If the old output was a file opened by SetOutputFile, it
// is closed. An empty name discards logs.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	SetOutput(file)
	return nil
}

type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		f.Close()
	}
	s.w = w
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *sink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(*os.File); ok {
		return f.Sync()
	}
	return nil
}
