// Package handler provides the HTTP handlers of the payment gateway.
//
//   - PaymentHandler: validates a payment form and dispatches it to a provider
//   - HealthHandler: reports whether every provider is configured
//
// # Payment Handler
//
//	paymentHandler := handler.NewPaymentHandler(paymentService, validate.NewPaymentValidator(names))
//	r.Post("/v1/payments/{provider}", paymentHandler.ProcessPayment)
//
// The request body is a form (or JSON object) with amount, currency,
// card_number, card_exp_year, card_exp_month, card_cvv and an optional
// card_holder:
//
//	POST /v1/payments/shift4
//	Content-Type: application/x-www-form-urlencoded
//
//	amount=92.00&currency=USD&card_number=4242424242424242&card_exp_year=2030&card_exp_month=11&card_cvv=123
//
// A successful payment returns 200 with the normalized result:
//
//	{
//	  "transaction_id": "char_0Xt3nJ6dFq",
//	  "date": "2023-11-14 22:13:20",
//	  "amount": "92",
//	  "currency": "USD",
//	  "card_bin": "424242"
//	}
//
// Rejected input returns 400 with the reason as plain text, e.g.
// "Invalid card details.". Payment faults return a JSON body:
//
//	{
//	  "error": "API returned error with status 402",
//	  "details": "{\"error\":{\"code\":\"card_declined\"}}"
//	}
//
// See StatusForError for the status codes.
package handler
