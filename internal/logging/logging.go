// Package logging builds the zap logger used by the CLI.
package logging

import (
	"io"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunIDKey is the field that tags every entry of one invocation.
const RunIDKey = "run_id"

// New returns a logger writing to w. Verbose selects a console encoder at
// debug level; otherwise entries are JSON at info level.
func New(w io.Writer, verbose bool) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	level := zapcore.InfoLevel
	if verbose {
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(enc)
		level = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(enc)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core).With(zap.String(RunIDKey, NewRunID()))
}

// NewRunID returns a sortable identifier for one invocation.
func NewRunID() string {
	return ulid.Make().String()
}
