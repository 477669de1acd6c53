// Package mail abstracts the transactional mail provider behind a Sender
// interface so the dispatcher can be tested against fakes and the provider
// swapped by configuration.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Message is one outbound transactional email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a single message. Implementations do not retry; retry
// policy belongs to the dispatcher.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderError is a structured send failure carrying the provider's
// HTTP-style status code so callers can distinguish rate limiting (429)
// from permanent failures.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider error (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a provider 429.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.StatusCode == 429
}
