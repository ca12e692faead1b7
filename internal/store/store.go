// Package store writes the bearer token to SSM Parameter Store as a
// SecureString encrypted under the deployment's parameter-store key.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

const (
	// ParameterName is the single slot the token is written to. Downstream
	// consumers read this name; it never varies per deployment.
	ParameterName = "bearer--edl--token"

	parameterDescription = "Temporary EDL bearer token"

	keyAliasSuffix = "-ssm-parameter-store"
)

// KMSDescribeKeyAPI defines the interface for the KMS lookup used here.
// This allows for mocking in tests.
type KMSDescribeKeyAPI interface {
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
}

// SSMPutParameterAPI defines the interface for the SSM write operation used
// here. This allows for mocking in tests.
type SSMPutParameterAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// Store resolves the deployment's encryption key and overwrites the token
// parameter.
type Store struct {
	kms    KMSDescribeKeyAPI
	ssm    SSMPutParameterAPI
	logger *logging.Logger
}

// New creates a token store.
func New(kmsClient KMSDescribeKeyAPI, ssmClient SSMPutParameterAPI, logger *logging.Logger) *Store {
	return &Store{
		kms:    kmsClient,
		ssm:    ssmClient,
		logger: logger,
	}
}

// KeyAlias returns the KMS alias for a deployment prefix.
func KeyAlias(prefix string) string {
	return fmt.Sprintf("alias/%s%s", prefix, keyAliasSuffix)
}

// StoreToken resolves the key alias for the prefix, then overwrites the token
// parameter as a SecureString. The alias is resolved on every call; key ids
// are never cached across runs. A resolution failure returns before any write
// is attempted.
func (s *Store) StoreToken(ctx context.Context, token, prefix string) error {
	alias := KeyAlias(prefix)

	keyOut, err := s.kms.DescribeKey(ctx, &kms.DescribeKeyInput{
		KeyId: aws.String(alias),
	})
	if err != nil {
		return &dserrors.KeyResolutionError{
			Alias:      alias,
			Suggestion: dserrors.AWSErrorSuggestion(err),
			Err:        err,
		}
	}
	if keyOut.KeyMetadata == nil || keyOut.KeyMetadata.KeyId == nil {
		return &dserrors.KeyResolutionError{
			Alias:      alias,
			Suggestion: "Verify the alias points at an existing customer managed key",
		}
	}
	keyID := *keyOut.KeyMetadata.KeyId
	s.logger.Debug("Resolved key alias %s to key id %s.", alias, keyID)

	_, err = s.ssm.PutParameter(ctx, &ssm.PutParameterInput{
		Name:        aws.String(ParameterName),
		Description: aws.String(parameterDescription),
		Value:       aws.String(token),
		Type:        types.ParameterTypeSecureString,
		KeyId:       aws.String(keyID),
		Overwrite:   aws.Bool(true),
		Tier:        types.ParameterTierStandard,
	})
	if err != nil {
		return &dserrors.ParameterStoreError{
			Name:       ParameterName,
			Suggestion: dserrors.AWSErrorSuggestion(err),
			Err:        err,
		}
	}

	s.logger.Info("EDL bearer token has been stored as a secure string in SSM Parameter Store.")
	return nil
}
