// Package creds loads the Earthdata Login username and password from a
// secure store. Two sources are supported: SSM Parameter Store (the default)
// and AWS Secrets Manager.
package creds

import "context"

// Credentials holds the EDL username/password pair for one run. It is read
// once, never mutated, and never logged.
type Credentials struct {
	Username string
	Password string
}

// Source fetches credentials from a secure store. A failed Load is fatal to
// the run; sources do not retry.
type Source interface {
	Load(ctx context.Context) (Credentials, error)
	Name() string
}
