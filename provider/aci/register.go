package aci

import "github.com/mstgnz/paybridge/provider"

// Register ACI provider with the gateway registry
func init() {
	provider.Register(ProviderName, NewProvider)
}
