package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// PaymentLog is one payment attempt as recorded in the provider's log index
type PaymentLog struct {
	Timestamp     time.Time `json:"timestamp"`
	Provider      string    `json:"provider"`
	RequestID     string    `json:"request_id"`
	Phase         string    `json:"phase,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CardBIN       string    `json:"card_bin,omitempty"`
	Success       bool      `json:"success"`
	StatusCode    int       `json:"status_code,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogPaymentAttempt indexes a payment attempt into the provider's log index
func (l *Logger) LogPaymentAttempt(ctx context.Context, entry PaymentLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Error = SanitizeForLog(entry.Error)

	return l.index(ctx, l.client.GetLogIndexName(entry.Provider), entry)
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, entry any) error {
	return l.index(ctx, SystemLogIndex, entry)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

const redacted = "***REDACTED***"

var sensitiveFields = []string{
	"number", "cardNumber", "card_number", "card.number",
	"cvc", "cvv", "card_cvv", "card.cvv",
	"card.holder", "card_holder",
	"apiKey", "api_key", "authKey", "auth_key", "entityId",
	"password", "token", "authorization",
}

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

var redactions = buildRedactions()

func buildRedactions() []redaction {
	var out []redaction
	for _, field := range sensitiveFields {
		quoted := regexp.QuoteMeta(field)
		out = append(out,
			redaction{
				pattern:     regexp.MustCompile(`"` + quoted + `"\s*:\s*"[^"]*"`),
				replacement: `"` + field + `":"` + redacted + `"`,
			},
			redaction{
				pattern:     regexp.MustCompile(`(^|[?&\s])` + quoted + `=[^&\s]*`),
				replacement: `${1}` + field + `=` + redacted,
			},
		)
	}
	return out
}

// SanitizeForLog masks card data and credentials in JSON or form encoded text
func SanitizeForLog(data string) string {
	result := data
	for _, r := range redactions {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}
