package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "https://urs.earthdata.nasa.gov", cfg.EDL.BaseURL)
	assert.Equal(t, SourceSSM, cfg.Credentials.Source)
	assert.Equal(t, "edl_username", cfg.Credentials.UsernameParameter)
	assert.Equal(t, "edl_password", cfg.Credentials.PasswordParameter)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
}

func TestLoadMissingFileRequired(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.Error(t, err)

	var cfgErr dserrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "edl-rotator.yaml")
	content := `
region: us-east-1
edl:
  base_url: http://localhost:8080
  timeout_ms: 5000
credentials:
  source: secretsmanager
  secret_name: edl-creds
aws:
  endpoint: http://localhost:4566
  access_key_id: test
  secret_access_key: test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "http://localhost:8080", cfg.EDL.BaseURL)
	assert.Equal(t, SourceSecretsManager, cfg.Credentials.Source)
	assert.Equal(t, "edl-creds", cfg.Credentials.SecretName)
	assert.Equal(t, "http://localhost:4566", cfg.AWS.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: [unclosed"), 0o600))

	_, err := Load(path, true)
	require.Error(t, err)

	var cfgErr dserrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty region",
			mutate: func(c *Config) { c.Region = "" },
			field:  "region",
		},
		{
			name:   "empty base url",
			mutate: func(c *Config) { c.EDL.BaseURL = "" },
			field:  "edl.base_url",
		},
		{
			name:   "unknown source",
			mutate: func(c *Config) { c.Credentials.Source = "vault" },
			field:  "credentials.source",
		},
		{
			name:   "ssm without parameter names",
			mutate: func(c *Config) { c.Credentials.UsernameParameter = "" },
			field:  "credentials",
		},
		{
			name: "secretsmanager without secret name",
			mutate: func(c *Config) {
				c.Credentials.Source = SourceSecretsManager
				c.Credentials.SecretName = ""
			},
			field: "credentials.secret_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr dserrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestHTTPTimeoutDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.EDL.TimeoutMs = 0
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
}
