package creds_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earthdata-tools/edl-token-rotator/internal/creds"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

// fakeSSMClient is a mock implementation of creds.SSMGetParameterAPI
type fakeSSMClient struct {
	parameters map[string]string
	errs       map[string]error
	requests   []*ssm.GetParameterInput
}

func (f *fakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.requests = append(f.requests, params)

	name := aws.ToString(params.Name)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	value, ok := f.parameters[name]
	if !ok {
		return nil, errors.New("ParameterNotFound: " + name)
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  params.Name,
			Value: aws.String(value),
			Type:  ssmtypes.ParameterTypeSecureString,
		},
	}, nil
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, false, true)
}

func TestSSMSourceLoad(t *testing.T) {
	t.Parallel()

	client := &fakeSSMClient{
		parameters: map[string]string{
			"edl_username": "svc-user",
			"edl_password": "svc-pass",
		},
	}
	source := creds.NewSSMSource(client, "edl_username", "edl_password", testLogger())

	cr, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "svc-user", cr.Username)
	assert.Equal(t, "svc-pass", cr.Password)

	// Values are encrypted at rest; decryption must be requested explicitly.
	require.Len(t, client.requests, 2)
	for _, req := range client.requests {
		assert.True(t, aws.ToBool(req.WithDecryption))
	}
}

func TestSSMSourceMissingParameter(t *testing.T) {
	t.Parallel()

	client := &fakeSSMClient{
		parameters: map[string]string{"edl_username": "svc-user"},
	}
	source := creds.NewSSMSource(client, "edl_username", "edl_password", testLogger())

	_, err := source.Load(context.Background())
	require.Error(t, err)

	var csErr *dserrors.CredentialStoreError
	require.ErrorAs(t, err, &csErr)
	assert.Equal(t, "ssm", csErr.Source)
	assert.Equal(t, "edl_password", csErr.Name)
}

func TestSSMSourceClientError(t *testing.T) {
	t.Parallel()

	client := &fakeSSMClient{
		errs: map[string]error{"edl_username": errors.New("AccessDeniedException")},
	}
	source := creds.NewSSMSource(client, "edl_username", "edl_password", testLogger())

	_, err := source.Load(context.Background())
	require.Error(t, err)

	var csErr *dserrors.CredentialStoreError
	require.ErrorAs(t, err, &csErr)
	assert.Equal(t, "edl_username", csErr.Name)

	// Fails fast: the password parameter is never requested.
	assert.Len(t, client.requests, 1)
}

func TestSSMSourceEmptyValue(t *testing.T) {
	t.Parallel()

	client := &fakeSSMClient{
		parameters: map[string]string{
			"edl_username": "",
			"edl_password": "svc-pass",
		},
	}
	source := creds.NewSSMSource(client, "edl_username", "edl_password", testLogger())

	_, err := source.Load(context.Background())
	require.Error(t, err)

	var csErr *dserrors.CredentialStoreError
	assert.ErrorAs(t, err, &csErr)
}

func TestSSMSourceName(t *testing.T) {
	t.Parallel()

	source := creds.NewSSMSource(&fakeSSMClient{}, "u", "p", testLogger())
	assert.Equal(t, "ssm", source.Name())
}
