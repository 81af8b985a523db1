package logger

import (
	"sync"

	"github.com/mstgnz/paybridge/infra/config"
	"github.com/mstgnz/paybridge/infra/opensearch"
)

var (
	globalLogger *SystemLogger
	globalMu     sync.RWMutex
)

// InitGlobalLogger initializes the global system logger. A nil OpenSearch
// logger keeps output on the console only.
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	appConfig := config.GetAppConfig()

	cfg := SystemLoggerConfig{
		EnableConsole:    true,
		EnableOpenSearch: openSearchLogger != nil,
		MinLevel:         ParseLevel(appConfig.LoggingLevel),
		Service:          "paybridge",
		Version:          "1.0.0",
		Environment:      appConfig.Environment,
	}

	SetGlobalLogger(NewSystemLogger(openSearchLogger, cfg))
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(sl *SystemLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = sl
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	globalMu.RLock()
	sl := globalLogger
	globalMu.RUnlock()
	if sl != nil {
		return sl
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       "paybridge",
			Version:       "1.0.0",
			Environment:   "development",
		})
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().log(2, LevelDebug, message, nil, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().log(2, LevelInfo, message, nil, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().log(2, LevelWarn, message, nil, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().log(2, LevelError, message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithProvider creates a context logger with provider
func WithProvider(provider string) *ContextLogger {
	return WithContext(LogContext{Provider: provider})
}
