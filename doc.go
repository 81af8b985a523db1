// Package paybridge is a payment gateway that charges cards through several
// upstream processors behind one request format and one error format.
//
// # Overview
//
// A caller submits an amount, a currency, card details and the name of a
// payment provider. PayBridge validates the input, dispatches it to the
// provider and answers with a normalized result or a diagnostic.
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│   CLI / HTTP    │◄──►│    PayBridge    │◄──►│     Shift4      │
//	│    callers      │    │   (dispatcher)  │    │  ACI (PA + CP)  │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// # Supported Providers
//
//   - shift4: single-phase charge, JSON body with Basic authentication
//   - aci: pre-authorization followed by a capture, form bodies with Bearer authentication
//
// # Packages
//
//   - provider: the PaymentProvider interface, registry, dispatcher, transport and error mapping
//   - provider/shift4, provider/aci: the upstream clients
//   - handler, router: the HTTP API
//   - infra/validate: card, currency and amount validation
//   - infra/config, infra/logger, infra/opensearch, infra/middle, infra/response: ambient services
//   - cmd: the HTTP server; cmd/payment: the command line client
//
// # HTTP API
//
//	POST /v1/payments/{provider}   charge a card (form or JSON body)
//	GET  /health                   provider configuration status
//	GET  /metrics                  Prometheus metrics
//
// # Command Line
//
//	payment shift4 92.00 USD 4242424242424242 2030 11 123
//
// # Configuration
//
// Provider credentials are read from the environment (or a .env file):
//
//	SHIFT4_API_URL, SHIFT4_API_KEY
//	ACI_API_URL, ACI_AUTH_KEY, ACI_ENTITY_ID, ACI_CURRENCY (default EUR)
//
// Service settings: APP_PORT, ENVIRONMENT, API_KEY, LOGGING_LEVEL,
// PROVIDER_TIMEOUT_SECONDS, THROTTLE_REQUESTS, RATE_LIMIT_PER_MINUTE,
// ENABLE_OPENSEARCH_LOGGING, OPENSEARCH_URL, OPENSEARCH_USER and
// OPENSEARCH_PASSWORD.
package paybridge
