package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	config1 := App()
	config2 := App()

	require.NotNil(t, config1)
	assert.Same(t, config1, config2, "App() should return singleton instance")
	assert.NotNil(t, config1.Validator, "Validator should be initialized")
}

func TestApp_Concurrent(t *testing.T) {
	const workers = 16
	got := make([]*Config, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = App()
		}()
	}
	wg.Wait()

	for _, c := range got {
		assert.Same(t, got[0], c)
	}
}

func TestGetAppConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *AppConfig
	}{
		{
			name:    "default_values",
			envVars: map[string]string{},
			expected: &AppConfig{
				Port:               "9999",
				Environment:        "development",
				OpenSearchURL:      "http://localhost:9200",
				EnableLogging:      false,
				LoggingLevel:       "info",
				ProviderTimeout:    30 * time.Second,
				ThrottleRequests:   100,
				RateLimitPerMinute: 60,
			},
		},
		{
			name: "custom_values",
			envVars: map[string]string{
				"APP_PORT":                  "8080",
				"ENVIRONMENT":               "production",
				"API_KEY":                   "secret",
				"OPENSEARCH_URL":            "https://search.example.com:9200",
				"OPENSEARCH_USER":           "testuser",
				"OPENSEARCH_PASSWORD":       "testpass",
				"ENABLE_OPENSEARCH_LOGGING": "true",
				"LOGGING_LEVEL":             "DEBUG",
				"PROVIDER_TIMEOUT_SECONDS":  "5",
				"THROTTLE_REQUESTS":         "10",
				"RATE_LIMIT_PER_MINUTE":     "5",
			},
			expected: &AppConfig{
				Port:               "8080",
				Environment:        "production",
				APIKey:             "secret",
				OpenSearchURL:      "https://search.example.com:9200",
				OpenSearchUser:     "testuser",
				OpenSearchPass:     "testpass",
				EnableLogging:      true,
				LoggingLevel:       "debug",
				ProviderTimeout:    5 * time.Second,
				ThrottleRequests:   10,
				RateLimitPerMinute: 5,
			},
		},
		{
			name: "invalid_numbers_fall_back",
			envVars: map[string]string{
				"PROVIDER_TIMEOUT_SECONDS":  "soon",
				"ENABLE_OPENSEARCH_LOGGING": "maybe",
			},
			expected: &AppConfig{
				Port:               "9999",
				Environment:        "development",
				OpenSearchURL:      "http://localhost:9200",
				EnableLogging:      false,
				LoggingLevel:       "info",
				ProviderTimeout:    30 * time.Second,
				ThrottleRequests:   100,
				RateLimitPerMinute: 60,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"APP_PORT", "ENVIRONMENT", "API_KEY", "OPENSEARCH_URL", "OPENSEARCH_USER",
				"OPENSEARCH_PASSWORD", "ENABLE_OPENSEARCH_LOGGING", "LOGGING_LEVEL",
				"PROVIDER_TIMEOUT_SECONDS", "THROTTLE_REQUESTS", "RATE_LIMIT_PER_MINUTE",
			} {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			appConfigInstance = nil
			defer func() { appConfigInstance = nil }()

			assert.Equal(t, tt.expected, GetAppConfig())
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PAYBRIDGE_TEST_STRING", "value")
	t.Setenv("PAYBRIDGE_TEST_BOOL", "true")
	t.Setenv("PAYBRIDGE_TEST_INT", "42")
	t.Setenv("PAYBRIDGE_TEST_BAD_INT", "forty-two")

	assert.Equal(t, "value", GetEnv("PAYBRIDGE_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnv("PAYBRIDGE_TEST_MISSING", "default"))
	assert.True(t, GetBoolEnv("PAYBRIDGE_TEST_BOOL", false))
	assert.False(t, GetBoolEnv("PAYBRIDGE_TEST_MISSING", false))
	assert.Equal(t, 42, GetIntEnv("PAYBRIDGE_TEST_INT", 0))
	assert.Equal(t, 7, GetIntEnv("PAYBRIDGE_TEST_BAD_INT", 7))
}
