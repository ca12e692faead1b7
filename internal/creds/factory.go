package creds

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/earthdata-tools/edl-token-rotator/internal/config"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

// New builds the credential source selected by the configuration.
func New(cfg *config.Config, awsCfg aws.Config, logger *logging.Logger) (Source, error) {
	switch cfg.Credentials.Source {
	case config.SourceSSM:
		return NewSSMSource(
			ssm.NewFromConfig(awsCfg),
			cfg.Credentials.UsernameParameter,
			cfg.Credentials.PasswordParameter,
			logger,
		), nil
	case config.SourceSecretsManager:
		return NewSecretsManagerSource(
			secretsmanager.NewFromConfig(awsCfg),
			cfg.Credentials.SecretName,
			logger,
		), nil
	default:
		return nil, dserrors.ConfigError{
			Field:      "credentials.source",
			Value:      cfg.Credentials.Source,
			Message:    "unknown credential source",
			Suggestion: "Use 'ssm' or 'secretsmanager'",
		}
	}
}
