package creds

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

// SecretsManagerGetAPI defines the interface for the Secrets Manager read
// operation used here. This allows for mocking in tests.
type SecretsManagerGetAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerSource reads the username and password from a single JSON
// secret of the shape {"username": ..., "password": ...}.
type SecretsManagerSource struct {
	client     SecretsManagerGetAPI
	secretName string
	logger     *logging.Logger
}

// NewSecretsManagerSource creates a Secrets Manager-backed credential source.
func NewSecretsManagerSource(client SecretsManagerGetAPI, secretName string, logger *logging.Logger) *SecretsManagerSource {
	return &SecretsManagerSource{
		client:     client,
		secretName: secretName,
		logger:     logger,
	}
}

// Name returns the source name
func (s *SecretsManagerSource) Name() string {
	return "secretsmanager"
}

// Load fetches and parses the credential secret.
func (s *SecretsManagerSource) Load(ctx context.Context) (Credentials, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		return Credentials{}, &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       s.secretName,
			Message:    err.Error(),
			Suggestion: dserrors.AWSErrorSuggestion(err),
			Err:        err,
		}
	}
	if out.SecretString == nil {
		return Credentials{}, &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       s.secretName,
			Message:    "secret has no string value",
			Suggestion: "Store the credentials as a JSON string secret",
		}
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return Credentials{}, &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       s.secretName,
			Message:    "secret is not valid JSON: " + err.Error(),
			Suggestion: `Use the shape {"username": "...", "password": "..."}`,
			Err:        err,
		}
	}
	if payload.Username == "" || payload.Password == "" {
		return Credentials{}, &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       s.secretName,
			Message:    "secret is missing username or password",
			Suggestion: `Use the shape {"username": "...", "password": "..."}`,
		}
	}

	s.logger.Info("Retrieved EDL username and password.")
	return Credentials{Username: payload.Username, Password: payload.Password}, nil
}
