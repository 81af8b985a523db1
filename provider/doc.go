// Package provider routes card payments to upstream payment gateways behind
// a single interface.
//
// # Core Concepts
//
//   - PaymentProvider: implemented by every gateway client (see the shift4 and aci packages)
//   - ProviderRegistry: maps provider names to factories; packages register themselves in init
//   - PaymentService: holds the configured providers and dispatches payments to them
//   - PaymentRequest/PaymentResult: the provider independent request and result
//
// # Basic Usage
//
//	import (
//	    "github.com/mstgnz/paybridge/provider"
//	    _ "github.com/mstgnz/paybridge/provider/shift4"
//	)
//
//	service := provider.NewPaymentService()
//	if err := service.AddProvider("shift4", map[string]string{
//	    "apiUrl": "https://api.shift4.com/charges",
//	    "apiKey": "sk_test_...",
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := service.ProcessPayment(ctx, "shift4", provider.PaymentRequest{
//	    Amount:       "92.00",
//	    Currency:     "USD",
//	    CardNumber:   "4242424242424242",
//	    CardExpMonth: "11",
//	    CardExpYear:  "2030",
//	    CardCVV:      "123",
//	})
//	if err != nil {
//	    payload := provider.ErrorPayloadFor(err)
//	    // payload.Error, payload.Details
//	}
//
// # Errors
//
// CreatePayment reports failures with typed errors so callers can map them
// without inspecting messages:
//
//   - *UpstreamError: the gateway answered with a non-success status
//   - *TransportError: the gateway could not be reached or its response could not be read
//   - *ConfigError: a required provider setting is missing or malformed
//   - *DispatchError: no provider is configured under the requested name
//
// ErrorPayloadFor turns any of them into the payload shown to callers.
// Configuration faults are never described to callers beyond a support code.
//
// # Adding a Provider
//
// A provider package defines a factory and registers it:
//
//	func init() {
//	    provider.Register("myprovider", NewProvider)
//	}
//
// Factories must accept incomplete configuration; ValidateConfig and
// CreatePayment report it instead.
package provider
