package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger  = zap.NewNop()
	mu      sync.RWMutex
	isSetup bool
)

// SetupLogger initializes the structured logger writing to the specified log file.
// With debug enabled, debug-level entries are kept as well.
func SetupLogger(logFilePath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	// Check if logger is already set up
	if isSetup {
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{logFilePath}
	cfg.ErrorOutputPaths = []string{logFilePath}
	cfg.Sampling = nil
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logger = built.Named("imagedetective")
	logger.Info("debug log started", zap.String("at", time.Now().Format(time.RFC3339)))

	isSetup = true
	return nil
}

// CloseLogger flushes the logger and returns to the no-op logger
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		logger.Info("debug log closed", zap.String("at", time.Now().Format(time.RFC3339)))
		_ = logger.Sync()
		logger = zap.NewNop()
		isSetup = false
	}
}

// L returns the current logger. It is a no-op logger until SetupLogger succeeds.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithOperation enriches the logger with an operation name.
func WithOperation(operation string) *zap.Logger {
	return L().With(zap.String("operation", operation))
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	L().Info(fmt.Sprintf(format, args...))
}

// DebugLog logs a message at debug level
func DebugLog(format string, args ...interface{}) {
	L().Debug(fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	L().Error(fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	L().Warn(fmt.Sprintf(format, args...))
}

// LogImageProcessed logs when an image is processed
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		L().Debug("processed", zap.String("path", path))
		return
	}
	L().Warn("failed", zap.String("path", path), zap.String("error", errMsg))
}
