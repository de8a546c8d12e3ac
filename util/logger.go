package util

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func GetStdLogger(parent *zap.Logger, sub string) *log.Logger {
	logger, err := zap.NewStdLogAt(parent.With(zap.String("subsystem", sub)), zapcore.WarnLevel)
	if err != nil {
		panic(fmt.Errorf("error getting logger: %w", err))
	}
	return logger
}

// NewHTTPErrorLogger wraps parent for use as an http.Server's ErrorLog: the
// net/http package only knows how to write plain lines, so the dht/v1
// listener's own connection-level errors (TLS handshake failures, broken
// pipes) get funneled through zap at the "http" subsystem tag instead of
// going to stderr unstructured.
func NewHTTPErrorLogger(parent *zap.Logger) *log.Logger {
	return GetStdLogger(parent, "http")
}
