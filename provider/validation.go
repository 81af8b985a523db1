package provider

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidateConfigFields validates configuration against provided field definitions.
// The first violation is returned as a *ConfigError.
func ValidateConfigFields(providerName string, config map[string]string, requiredFields []ConfigField) error {
	for _, field := range requiredFields {
		value, exists := config[field.Key]
		if !field.Required && strings.TrimSpace(value) == "" {
			continue
		}

		if !exists {
			return configError(providerName, field, "required field '%s' is missing", field.Key)
		}

		if strings.TrimSpace(value) == "" {
			return configError(providerName, field, "required field '%s' cannot be empty", field.Key)
		}

		if err := validateFieldType(providerName, field, value); err != nil {
			return err
		}

		if err := validateFieldPattern(providerName, field, value); err != nil {
			return err
		}

		if err := validateFieldLength(providerName, field, value); err != nil {
			return err
		}
	}

	return nil
}

func configError(providerName string, field ConfigField, format string, args ...any) *ConfigError {
	return &ConfigError{
		Provider: providerName,
		Field:    field.Key,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// validateFieldType validates field based on its type
func validateFieldType(providerName string, field ConfigField, value string) error {
	switch field.Type {
	case "url":
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return configError(providerName, field, "field '%s' must be an http(s) URL", field.Key)
		}
	case "boolean":
		if value != "true" && value != "false" {
			return configError(providerName, field, "field '%s' must be 'true' or 'false'", field.Key)
		}
	}
	return nil
}

// validateFieldPattern validates field against regex pattern
func validateFieldPattern(providerName string, field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return configError(providerName, field, "invalid pattern for field '%s': %v", field.Key, err)
	}

	if !matched {
		return configError(providerName, field, "field '%s' does not match required pattern", field.Key)
	}

	return nil
}

// validateFieldLength validates field length constraints
func validateFieldLength(providerName string, field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return configError(providerName, field, "field '%s' must be at least %d characters", field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return configError(providerName, field, "field '%s' must not exceed %d characters", field.Key, field.MaxLength)
	}

	return nil
}
