package rotator

import (
	"context"

	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
)

// Event is the payload the scheduler invokes the Lambda with.
type Event struct {
	Prefix string `json:"prefix"`
}

// Handler adapts a Rotator to the Lambda invocation shape.
type Handler struct {
	Rotator *Rotator
}

// Handle runs one rotation for the event's prefix. Returning a non-nil error
// marks the invocation failed.
func (h *Handler) Handle(ctx context.Context, event Event) error {
	if event.Prefix == "" {
		return dserrors.ConfigError{
			Field:      "prefix",
			Message:    "event is missing the deployment prefix",
			Suggestion: `Invoke with a payload like {"prefix": "uds"}`,
		}
	}
	return h.Rotator.Run(ctx, event.Prefix)
}
