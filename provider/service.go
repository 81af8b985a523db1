package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/infra/opensearch"
)

// PaymentLogger records payment attempts outside of the process
type PaymentLogger interface {
	LogPaymentAttempt(ctx context.Context, entry opensearch.PaymentLog) error
}

// ProviderStatus describes whether a provider is ready to take payments
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Error      string `json:"error,omitempty"`
}

// PaymentService routes payments to the configured providers
type PaymentService struct {
	registry      *ProviderRegistry
	providers     map[string]PaymentProvider
	mu            sync.RWMutex
	paymentLogger PaymentLogger
	metrics       *Metrics
	timeout       time.Duration
	newRequestID  func() string
	wg            sync.WaitGroup
}

// ServiceOption configures a PaymentService
type ServiceOption func(*PaymentService)

// WithRegistry uses registry instead of the default provider registry
func WithRegistry(registry *ProviderRegistry) ServiceOption {
	return func(s *PaymentService) {
		s.registry = registry
	}
}

// WithPaymentLogger ships every payment attempt to logger
func WithPaymentLogger(paymentLogger PaymentLogger) ServiceOption {
	return func(s *PaymentService) {
		s.paymentLogger = paymentLogger
	}
}

// WithMetrics records every payment attempt in m
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *PaymentService) {
		s.metrics = m
	}
}

// WithProviderTimeout sets the request timeout for providers whose
// configuration does not define one.
func WithProviderTimeout(timeout time.Duration) ServiceOption {
	return func(s *PaymentService) {
		s.timeout = timeout
	}
}

// WithRequestIDGenerator replaces the uuid based request id generator
func WithRequestIDGenerator(fn func() string) ServiceOption {
	return func(s *PaymentService) {
		s.newRequestID = fn
	}
}

// NewPaymentService creates a new payment service
func NewPaymentService(opts ...ServiceOption) *PaymentService {
	s := &PaymentService{
		registry:     DefaultRegistry,
		providers:    make(map[string]PaymentProvider),
		newRequestID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddProvider creates the named provider from the registry with the given
// configuration. Incomplete configuration is accepted here and reported when
// a payment is attempted.
func (s *PaymentService) AddProvider(name string, conf map[string]string) error {
	name = strings.ToLower(name)

	providerConf := make(map[string]string, len(conf)+1)
	for k, v := range conf {
		providerConf[k] = v
	}
	if _, ok := providerConf[ConfigKeyTimeout]; !ok && s.timeout > 0 {
		providerConf[ConfigKeyTimeout] = s.timeout.String()
	}

	p, err := s.registry.CreateProvider(name, providerConf)
	if err != nil {
		return fmt.Errorf("failed to add provider: %w", err)
	}

	s.mu.Lock()
	s.providers[name] = p
	s.mu.Unlock()

	if err := p.ValidateConfig(); err != nil {
		logger.Warn("Provider added with incomplete configuration", logger.LogContext{
			Provider: name,
			Fields:   map[string]any{"error": err.Error()},
		})
	}
	return nil
}

// ProviderConfigSource supplies the configuration of every known provider
type ProviderConfigSource interface {
	GetAvailableProviders() []string
	GetConfig(providerName string) map[string]string
}

// AddProviders adds every provider of src. Providers that cannot be created
// are skipped and reported together in the returned error.
func (s *PaymentService) AddProviders(src ProviderConfigSource) error {
	var errs []error
	for _, name := range src.GetAvailableProviders() {
		if err := s.AddProvider(name, src.GetConfig(name)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		logger.Info("Registered payment provider", logger.LogContext{Provider: name})
	}
	return errors.Join(errs...)
}

// Providers returns the sorted names of the providers added to the service
func (s *PaymentService) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderStatuses reports the configuration state of every provider
func (s *PaymentService) ProviderStatuses() []ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(s.providers))
	for name, p := range s.providers {
		status := ProviderStatus{Name: name, Configured: true}
		if err := p.ValidateConfig(); err != nil {
			status.Configured = false
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

func (s *PaymentService) lookup(name string) (PaymentProvider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[strings.ToLower(name)]
	return p, ok
}

// ProcessPayment dispatches the request to the named provider. Errors from
// the provider are returned unchanged and never retried; an unknown provider
// yields a *DispatchError without contacting any upstream.
func (s *PaymentService) ProcessPayment(ctx context.Context, providerName string, request PaymentRequest) (*PaymentResult, error) {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = s.newRequestID()
		ctx = WithRequestID(ctx, requestID)
	}
	logCtx := logger.LogContext{Provider: providerName, RequestID: requestID}

	p, ok := s.lookup(providerName)
	if !ok {
		err := &DispatchError{Provider: providerName}
		logger.Warn("Payment requested for unknown provider", logCtx)
		s.observe("unknown", err, 0)
		return nil, err
	}

	name := strings.ToLower(providerName)
	request.Provider = name
	logCtx.Provider = name

	logger.Info("Processing payment", logger.LogContext{
		Provider:  name,
		RequestID: requestID,
		Fields: map[string]any{
			"amount":   request.Amount,
			"currency": request.Currency,
		},
	})

	start := time.Now()
	result, err := p.CreatePayment(ctx, request)
	elapsed := time.Since(start)

	s.observe(name, err, elapsed)
	s.record(requestID, name, request, result, err, elapsed)

	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			logger.Error("Provider configuration is incomplete", err, logger.LogContext{
				Provider:  name,
				RequestID: requestID,
				Fields:    map[string]any{"field": cfgErr.Field},
			})
		} else {
			logger.Error("Payment failed", err, logCtx)
		}
		return nil, err
	}

	logger.Info("Payment completed", logger.LogContext{
		Provider:  name,
		RequestID: requestID,
		Fields: map[string]any{
			"transaction_id": result.TransactionID,
			"duration_ms":    elapsed.Milliseconds(),
		},
	})
	return result, nil
}

func (s *PaymentService) observe(providerName string, err error, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.Observe(strings.ToLower(providerName), err, elapsed)
	}
}

// record ships the attempt to the payment logger without delaying the caller
func (s *PaymentService) record(requestID, providerName string, request PaymentRequest, result *PaymentResult, err error, elapsed time.Duration) {
	if s.paymentLogger == nil {
		return
	}

	entry := opensearch.PaymentLog{
		Timestamp:  time.Now().UTC(),
		Provider:   providerName,
		RequestID:  requestID,
		Amount:     request.Amount,
		Currency:   request.Currency,
		Success:    err == nil,
		DurationMs: elapsed.Milliseconds(),
	}
	if result != nil {
		entry.TransactionID = result.TransactionID
		entry.CardBIN = result.CardBIN
		entry.Amount = result.Amount
		entry.Currency = result.Currency
	}
	if err != nil {
		entry.Error = err.Error()
		var upstream *UpstreamError
		var transport *TransportError
		switch {
		case errors.As(err, &upstream):
			entry.Phase = upstream.Phase
			entry.StatusCode = upstream.StatusCode
			entry.Error = upstream.Error() + ": " + upstream.Body
		case errors.As(err, &transport):
			entry.Phase = transport.Phase
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if logErr := s.paymentLogger.LogPaymentAttempt(ctx, entry); logErr != nil {
			logger.Warn("Failed to log payment attempt", logger.LogContext{
				Provider:  providerName,
				RequestID: requestID,
				Fields:    map[string]any{"error": logErr.Error()},
			})
		}
	}()
}

// Wait blocks until pending payment log writes have finished
func (s *PaymentService) Wait() {
	s.wg.Wait()
}
