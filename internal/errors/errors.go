// Package errors defines the typed failures a rotation run can end with.
// Every kind is terminal for the run; the orchestrator discriminates with
// errors.As to decide what to log before exiting non-zero.
package errors

import (
	"fmt"
	"strings"
)

// CredentialStoreError indicates the EDL credentials could not be read from
// the configured secure store.
type CredentialStoreError struct {
	Source     string // "ssm" or "secretsmanager"
	Name       string // parameter or secret name
	Message    string
	Suggestion string
	Err        error
}

func (e *CredentialStoreError) Error() string {
	msg := fmt.Sprintf("credential store (%s) error", e.Source)
	if e.Name != "" {
		msg += fmt.Sprintf(" for %q", e.Name)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}
	return msg
}

func (e *CredentialStoreError) Unwrap() error {
	return e.Err
}

// ProviderError indicates the identity provider answered the token request
// with an error payload. Transport failures are not ProviderErrors; they
// propagate as plain wrapped errors.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("identity provider returned error %q", e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// KeyResolutionError indicates the KMS key alias could not be resolved to a
// key identifier.
type KeyResolutionError struct {
	Alias      string
	Suggestion string
	Err        error
}

func (e *KeyResolutionError) Error() string {
	msg := fmt.Sprintf("could not resolve KMS key alias %q", e.Alias)
	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}
	return msg
}

func (e *KeyResolutionError) Unwrap() error {
	return e.Err
}

// ParameterStoreError indicates the token could not be written to SSM
// Parameter Store.
type ParameterStoreError struct {
	Name       string
	Suggestion string
	Err        error
}

func (e *ParameterStoreError) Error() string {
	msg := fmt.Sprintf("could not store parameter %q", e.Name)
	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}
	return msg
}

func (e *ParameterStoreError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// AWSErrorSuggestion returns an operator-facing suggestion for common AWS
// client failures.
func AWSErrorSuggestion(err error) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "accessdenied"):
		return "Check IAM permissions: ssm:GetParameter, ssm:PutParameter, kms:DescribeKey, and kms:Decrypt for SecureString"
	case strings.Contains(errStr, "parameternotfound"):
		return "Verify the parameter name and path. SSM parameters are case-sensitive"
	case strings.Contains(errStr, "resourcenotfound"):
		return "Verify the secret or key exists in the configured region"
	case strings.Contains(errStr, "notfoundexception"):
		return "Verify the key alias exists in the configured region"
	case strings.Contains(errStr, "invalidkeyid"):
		return "The KMS key for this SecureString parameter may not exist or you lack kms:Decrypt permission"
	case strings.Contains(errStr, "throttl"):
		return "Request was throttled. Wait a moment and try again"
	case strings.Contains(errStr, "credentials") || strings.Contains(errStr, "authorization"):
		return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE"
	case strings.Contains(errStr, "region"):
		return "Check that you're using the correct AWS region"
	default:
		return "Check AWS credentials, region, and IAM permissions"
	}
}
