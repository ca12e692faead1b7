package config

import (
	"os"
	"time"

	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"gopkg.in/yaml.v3"
)

// Credential source types
const (
	SourceSSM            = "ssm"
	SourceSecretsManager = "secretsmanager"
)

// Config is the runtime configuration for a rotation run. Every field has a
// default that reproduces the stock Earthdata Login deployment, so the config
// file is optional.
type Config struct {
	Region      string            `yaml:"region"`
	EDL         EDLConfig         `yaml:"edl"`
	Credentials CredentialsConfig `yaml:"credentials"`
	AWS         AWSConfig         `yaml:"aws"`
}

// EDLConfig holds identity-provider settings
type EDLConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms,omitempty"`
}

// CredentialsConfig selects where the EDL username/password are read from
type CredentialsConfig struct {
	Source            string `yaml:"source"`
	UsernameParameter string `yaml:"username_parameter"`
	PasswordParameter string `yaml:"password_parameter"`
	SecretName        string `yaml:"secret_name"`
}

// AWSConfig holds optional overrides for LocalStack or testing
type AWSConfig struct {
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Default returns the configuration matching the stock deployment.
func Default() *Config {
	return &Config{
		Region: "us-west-2",
		EDL: EDLConfig{
			BaseURL:   "https://urs.earthdata.nasa.gov",
			TimeoutMs: 30000,
		},
		Credentials: CredentialsConfig{
			Source:            SourceSSM,
			UsernameParameter: "edl_username",
			PasswordParameter: "edl_password",
			SecretName:        "edl-credentials",
		},
	}
}

// Load reads the YAML config file at path and overlays it on the defaults.
// A missing file is not an error when the path is the default one.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, dserrors.ConfigError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or drop the --config flag to use defaults",
			}
		}
		return nil, dserrors.ConfigError{
			Field:   "path",
			Value:   path,
			Message: "failed to read configuration file: " + err.Error(),
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, dserrors.ConfigError{
			Field:      "path",
			Value:      path,
			Message:    "invalid YAML: " + err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Region == "" {
		return dserrors.ConfigError{
			Field:   "region",
			Message: "region must not be empty",
		}
	}
	if c.EDL.BaseURL == "" {
		return dserrors.ConfigError{
			Field:   "edl.base_url",
			Message: "base URL must not be empty",
		}
	}
	switch c.Credentials.Source {
	case SourceSSM, SourceSecretsManager:
	default:
		return dserrors.ConfigError{
			Field:      "credentials.source",
			Value:      c.Credentials.Source,
			Message:    "unknown credential source",
			Suggestion: "Use 'ssm' or 'secretsmanager'",
		}
	}
	if c.Credentials.Source == SourceSSM &&
		(c.Credentials.UsernameParameter == "" || c.Credentials.PasswordParameter == "") {
		return dserrors.ConfigError{
			Field:   "credentials",
			Message: "username_parameter and password_parameter must not be empty",
		}
	}
	if c.Credentials.Source == SourceSecretsManager && c.Credentials.SecretName == "" {
		return dserrors.ConfigError{
			Field:   "credentials.secret_name",
			Message: "secret_name must not be empty",
		}
	}
	return nil
}

// HTTPTimeout returns the EDL request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	if c.EDL.TimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.EDL.TimeoutMs) * time.Millisecond
}
