// Package relay turns one chat message into one model reply.
package relay

import (
	"context"
	"errors"
	"time"
)

// Result of relaying one message.
type Result struct {
	// Reply is the trimmed, fully buffered output of the model.
	Reply string
	// ExitCode of the inference process, or zero for backends that don't run one.
	ExitCode int
	Duration time.Duration
}

// Relayer sends a message to a model and waits for the complete reply.
type Relayer interface {
	Relay(ctx context.Context, message string) (Result, error)
}

// ErrExitStatus is returned in strict mode when the inference process exits with a non-zero code.
var ErrExitStatus = errors.New("relay: inference process exited with non-zero status")

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
