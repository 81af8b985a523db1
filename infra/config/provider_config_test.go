package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("SHIFT4_API_URL", "https://api.shift4.test/charges")
	t.Setenv("SHIFT4_API_KEY", " sk_test_123 ")
	t.Setenv("ACI_API_URL", "https://eu-test.oppwa.test/v1/payments")
	t.Setenv("ACI_AUTH_KEY", "")
	t.Setenv("ACI_ENTITY_ID", "8a8294174b7ecb28014b9699220015ca")
	t.Setenv("ACI_CURRENCY", "")

	config := NewProviderConfig()
	config.LoadFromEnv()

	assert.Equal(t, []string{"aci", "shift4"}, config.GetAvailableProviders())

	shift4 := config.GetConfig("shift4")
	assert.Equal(t, "https://api.shift4.test/charges", shift4["apiUrl"])
	assert.Equal(t, "sk_test_123", shift4["apiKey"], "values should be trimmed")

	aci := config.GetConfig("ACI")
	assert.Equal(t, "", aci["authKey"], "missing variables are kept as empty values")
	assert.Equal(t, "EUR", aci["currency"], "currency falls back to EUR")
	assert.Contains(t, aci, "entityId")
}

func TestProviderConfig_SetAndGet(t *testing.T) {
	config := NewProviderConfig()

	err := config.SetConfig("", map[string]string{"apiKey": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider name cannot be empty")

	original := map[string]string{"apiKey": "x", "apiUrl": "https://example.test"}
	require.NoError(t, config.SetConfig("Shift4", original))

	got := config.GetConfig("shift4")
	assert.Equal(t, original, got)

	got["apiKey"] = "mutated"
	original["apiUrl"] = "mutated"
	assert.Equal(t, "x", config.GetConfig("shift4")["apiKey"], "returned map must be a copy")
	assert.Equal(t, "https://example.test", config.GetConfig("shift4")["apiUrl"], "stored map must be a copy")

	assert.Empty(t, config.GetConfig("unknown"))
}
