package wasm

import "go.uber.org/zap"

var debugMode = false

var logger = newLogger()

func newLogger() *zap.SugaredLogger {
	if !debugMode {
		return zap.NewNop().Sugar()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetDebugMode switches the package logger between a no-op logger and a
// zap development logger, mirroring the teacher's PrintDebugInfo toggle.
// The decoder, parser and validator do not write to this logger.
func SetDebugMode(on bool) {
	debugMode = on
	logger = newLogger()
}
