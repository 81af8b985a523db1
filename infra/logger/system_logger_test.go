package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mstgnz/paybridge/infra/config"
	"github.com/mstgnz/paybridge/infra/opensearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T, minLevel LogLevel) (*SystemLogger, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      minLevel,
		Service:       "test-service",
		Version:       "1.0.0",
		Environment:   "test",
	}, zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))

	return sl, logs
}

func TestNewSystemLogger(t *testing.T) {
	config := SystemLoggerConfig{
		EnableConsole:    true,
		EnableOpenSearch: true,
		MinLevel:         LevelWarn,
		Service:          "test-service",
		Version:          "1.0.0",
		Environment:      "test",
	}

	logger := NewSystemLogger(nil, config)

	require.NotNil(t, logger)
	assert.True(t, logger.enableConsole)
	assert.False(t, logger.enableOpenSearch, "opensearch needs a logger")
	assert.Equal(t, LevelWarn, logger.minLevel)
	assert.Equal(t, "test-service", logger.service)
	assert.Equal(t, "test", logger.environment)

	assert.Equal(t, LevelInfo, NewSystemLogger(nil, SystemLoggerConfig{}).minLevel)
}

func TestSystemLogger_LevelFiltering(t *testing.T) {
	logger, logs := newObservedLogger(t, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "error message", entries[1].Message)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestSystemLogger_ContextFields(t *testing.T) {
	logger, logs := newObservedLogger(t, LevelDebug)

	logger.Info("payment processed", LogContext{
		Provider:  "aci",
		RequestID: "req-123",
		Fields:    map[string]any{"phase": "capture", "status": 200},
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "aci", fields["provider"])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "capture", fields["phase"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Equal(t, "test-service", fields["service"])
	assert.Equal(t, "TestSystemLogger_ContextFields", fields["function"])
}

func TestContextLogger(t *testing.T) {
	logger, logs := newObservedLogger(t, LevelDebug)

	base := logger.WithContext(LogContext{Provider: "shift4"}).SetRequestID("req-1")
	child := base.AddField("phase", "charge")

	child.Debug("sending charge")
	child.Error("charge failed", errors.New("timeout"))
	logger.WithContext(LogContext{}).SetProvider("aci").Warn("no entity")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "shift4", entries[0].ContextMap()["provider"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "charge", entries[0].ContextMap()["phase"])
	assert.Equal(t, "timeout", entries[1].ContextMap()["error"])
	assert.Equal(t, "aci", entries[2].ContextMap()["provider"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestExtractComponent(t *testing.T) {
	tests := map[string]string{
		"/src/paybridge/provider/aci/aci.go": "provider/aci",
		"/src/paybridge/handler/payment.go":  "handler",
		"/tmp/build/infra/logger/global.go":  "logger",
		"main.go":                            "unknown",
	}
	for file, component := range tests {
		assert.Equal(t, component, extractComponent(file), file)
	}
}

func TestSystemLogger_ShipsToOpenSearch(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/_doc") {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(body))
			mu.Unlock()
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := opensearch.NewClient(&config.AppConfig{OpenSearchURL: server.URL, EnableLogging: true})
	require.NoError(t, err)

	logger := NewSystemLogger(opensearch.NewLogger(client), SystemLoggerConfig{
		EnableOpenSearch: true,
		MinLevel:         LevelInfo,
		Service:          "paybridge",
		Environment:      "test",
	})
	logger.Info("shipped entry", LogContext{Provider: "shift4"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) == 1 && strings.Contains(bodies[0], "shipped entry")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSystemLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      LevelInfo,
		Service:       "paybridge",
		Environment:   "production",
		Output:        &buf,
	})

	sl.Info("Payment completed", LogContext{Provider: "aci", RequestID: "req-7"})
	require.NoError(t, sl.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Payment completed", entry["msg"])
	assert.Equal(t, "aci", entry["provider"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Equal(t, "paybridge", entry["service"])
}
