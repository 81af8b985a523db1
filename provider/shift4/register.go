package shift4

import "github.com/mstgnz/paybridge/provider"

// Register Shift4 provider with the gateway registry
func init() {
	provider.Register(ProviderName, NewProvider)
}
