// Package rotator sequences one rotation run: load credentials, mint a fresh
// bearer token, store it. Any failure aborts the run immediately; there is no
// partial-success state.
package rotator

import (
	"context"
	"errors"

	"github.com/earthdata-tools/edl-token-rotator/internal/creds"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

// TokenAcquirer mints a bearer token for the given credentials.
type TokenAcquirer interface {
	AcquireToken(ctx context.Context, cr creds.Credentials) (string, error)
}

// TokenStore durably writes the token under the deployment prefix's key.
type TokenStore interface {
	StoreToken(ctx context.Context, token, prefix string) error
}

// Rotator wires the three steps of a run together.
type Rotator struct {
	source   creds.Source
	acquirer TokenAcquirer
	store    TokenStore
	logger   *logging.Logger
}

// New creates a rotator.
func New(source creds.Source, acquirer TokenAcquirer, store TokenStore, logger *logging.Logger) *Rotator {
	return &Rotator{
		source:   source,
		acquirer: acquirer,
		store:    store,
		logger:   logger,
	}
}

// Run executes one rotation for the given deployment prefix. Steps run in
// strict sequence and the first failure is logged and returned; a failed
// credential load makes no provider or store calls at all.
func (r *Rotator) Run(ctx context.Context, prefix string) error {
	r.logger.Info("Attempting to create token.")

	cr, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Error("Could not retrieve EDL credentials from the %s credential store.", r.source.Name())
		r.logger.Error("%v", err)
		return err
	}

	token, err := r.acquirer.AcquireToken(ctx, cr)
	if err != nil {
		var provErr *dserrors.ProviderError
		if errors.As(err, &provErr) {
			r.logger.Error("EDL rejected the token request: %v", provErr)
		} else {
			r.logger.Error("Could not reach EDL: %v", err)
		}
		return err
	}

	if err := r.store.StoreToken(ctx, token, prefix); err != nil {
		r.logger.Error("Could not store EDL bearer token in SSM Parameter Store.")
		r.logger.Error("%v", err)
		return err
	}

	r.logger.Info("Token rotation complete for prefix %q.", prefix)
	return nil
}
