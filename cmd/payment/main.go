// Command payment charges a card through one of the configured providers:
//
//	payment <provider> <amount> <currency> <card_number> <card_exp_year> <card_exp_month> <card_cvv>
//
// The outcome is printed as a single JSON line. The exit status is 0 on
// success, 1 when the payment was rejected or failed and 2 on a usage error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mstgnz/paybridge/infra/config"
	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
	_ "github.com/mstgnz/paybridge/provider/aci"    // Import for side-effect registration
	_ "github.com/mstgnz/paybridge/provider/shift4" // Import for side-effect registration
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = "usage: payment <provider> <amount> <currency> <card_number> <card_exp_year> <card_exp_month> <card_cvv>"

// paymentService is the part of provider.PaymentService the command uses
type paymentService interface {
	Providers() []string
	ProcessPayment(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResult, error)
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Load Env Error: %v\n", err)
		os.Exit(exitUsage)
	}

	cfg := config.GetAppConfig()
	logger.SetGlobalLogger(logger.NewSystemLogger(nil, logger.SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      logger.ParseLevel(cfg.LoggingLevel),
		Service:       "paybridge-cli",
		Version:       "1.0.0",
		Environment:   cfg.Environment,
		Output:        os.Stderr,
	}))

	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv()

	service := provider.NewPaymentService(provider.WithProviderTimeout(cfg.ProviderTimeout))
	if err := service.AddProviders(providerConfig); err != nil {
		logger.Error("Some payment providers could not be registered", err)
	}

	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, service)
	_ = logger.GetGlobalLogger().Sync()
	os.Exit(code)
}

// run executes one payment and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer, service paymentService) int {
	if len(args) != 7 {
		fmt.Fprintln(stderr, usage)
		return exitUsage
	}

	providerName := args[0]
	request := provider.PaymentRequest{
		Amount:       args[1],
		Currency:     args[2],
		CardNumber:   args[3],
		CardExpYear:  args[4],
		CardExpMonth: args[5],
		CardCVV:      args[6],
	}

	validator := validate.NewPaymentValidator(service.Providers())
	if err := validator.ValidatePaymentProvider(providerName); err != nil {
		return printError(stdout, err)
	}
	if err := validator.ValidatePaymentFields(request.Amount, request.Currency, request.CardNumber, request.CardExpYear, request.CardExpMonth, request.CardCVV); err != nil {
		return printError(stdout, err)
	}

	ctx = provider.WithRequestID(ctx, "cli-"+uuid.New().String())
	result, err := service.ProcessPayment(ctx, strings.ToLower(providerName), request)
	if err != nil {
		return printError(stdout, err)
	}

	if err := json.NewEncoder(stdout).Encode(result); err != nil {
		fmt.Fprintf(stderr, "failed to write result: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func printError(stdout io.Writer, err error) int {
	_ = json.NewEncoder(stdout).Encode(provider.ErrorPayloadFor(err))
	return exitFailure
}
