package creds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

// SSMGetParameterAPI defines the interface for the SSM read operation used
// here. This allows for mocking in tests.
type SSMGetParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSource reads the username and password from two SecureString parameters
// in SSM Parameter Store.
type SSMSource struct {
	client            SSMGetParameterAPI
	usernameParameter string
	passwordParameter string
	logger            *logging.Logger
}

// NewSSMSource creates an SSM-backed credential source.
func NewSSMSource(client SSMGetParameterAPI, usernameParameter, passwordParameter string, logger *logging.Logger) *SSMSource {
	return &SSMSource{
		client:            client,
		usernameParameter: usernameParameter,
		passwordParameter: passwordParameter,
		logger:            logger,
	}
}

// Name returns the source name
func (s *SSMSource) Name() string {
	return "ssm"
}

// Load fetches both parameters with decryption requested. Values are stored
// encrypted at rest, so WithDecryption must be set explicitly.
func (s *SSMSource) Load(ctx context.Context) (Credentials, error) {
	username, err := s.getParameter(ctx, s.usernameParameter)
	if err != nil {
		return Credentials{}, err
	}
	password, err := s.getParameter(ctx, s.passwordParameter)
	if err != nil {
		return Credentials{}, err
	}

	s.logger.Info("Retrieved EDL username and password.")
	return Credentials{Username: username, Password: password}, nil
}

func (s *SSMSource) getParameter(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       name,
			Message:    err.Error(),
			Suggestion: dserrors.AWSErrorSuggestion(err),
			Err:        err,
		}
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", &dserrors.CredentialStoreError{
			Source:     s.Name(),
			Name:       name,
			Message:    "parameter has no value",
			Suggestion: "Verify the parameter holds a non-empty SecureString",
		}
	}
	return *out.Parameter.Value, nil
}
