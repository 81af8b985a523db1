package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// envBinding maps an environment variable to a provider configuration key
type envBinding struct {
	env          string
	key          string
	defaultValue string
}

// providerEnv lists the environment variables read for each provider
var providerEnv = map[string][]envBinding{
	"shift4": {
		{env: "SHIFT4_API_URL", key: "apiUrl"},
		{env: "SHIFT4_API_KEY", key: "apiKey"},
	},
	"aci": {
		{env: "ACI_API_URL", key: "apiUrl"},
		{env: "ACI_AUTH_KEY", key: "authKey"},
		{env: "ACI_ENTITY_ID", key: "entityId"},
		{env: "ACI_CURRENCY", key: "currency", defaultValue: "EUR"},
	},
}

// ProviderConfig manages payment provider configurations
type ProviderConfig struct {
	configs map[string]map[string]string
	mu      sync.RWMutex
}

// NewProviderConfig creates a new provider configuration
func NewProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		configs: make(map[string]map[string]string),
	}
}

// LoadFromEnv reads every known provider's settings from the environment.
// Missing variables are stored as empty values so that the provider can
// report exactly which field is absent when a payment is attempted.
func (c *ProviderConfig) LoadFromEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for providerName, bindings := range providerEnv {
		conf := make(map[string]string, len(bindings))
		for _, b := range bindings {
			conf[b.key] = strings.TrimSpace(GetEnv(b.env, b.defaultValue))
		}
		c.configs[providerName] = conf
	}
}

// SetConfig replaces the configuration of a provider
func (c *ProviderConfig) SetConfig(providerName string, conf map[string]string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	copied := make(map[string]string, len(conf))
	for k, v := range conf {
		copied[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[strings.ToLower(providerName)] = copied
	return nil
}

// GetConfig returns a copy of the configuration for a provider. An unknown
// provider yields an empty map.
func (c *ProviderConfig) GetConfig(providerName string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	conf := c.configs[strings.ToLower(providerName)]
	configCopy := make(map[string]string, len(conf))
	for k, v := range conf {
		configCopy[k] = v
	}
	return configCopy
}

// GetAvailableProviders returns all providers that have configurations
func (c *ProviderConfig) GetAvailableProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := make([]string, 0, len(c.configs))
	for provider := range c.configs {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}
