// Package email delivers approved outreach drafts through a
// transactional provider (Brevo HTTP API or plain SMTP).
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"leadvox_backend/platform/config"
)

// ErrorClass buckets provider failures for operator display.
type ErrorClass string

const (
	// ErrClassRejected means the provider refused the recipient.
	ErrClassRejected ErrorClass = "rejected"
	// ErrClassSenderUnverified means the sending domain is not verified
	// with the provider; a configuration problem, not a retry candidate.
	ErrClassSenderUnverified ErrorClass = "sender_domain_unverified"
	// ErrClassOther covers everything else (network, quota, 5xx).
	ErrClassOther ErrorClass = "other"
)

// SendError is a classified delivery failure.
type SendError struct {
	Class   ErrorClass
	Message string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// ClassOf extracts the error class, defaulting to other.
func ClassOf(err error) ErrorClass {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Class
	}
	return ErrClassOther
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
	// HTML marks Body as HTML; plain text otherwise.
	HTML bool
	// FromName/FromEmail override the configured sender when FromEmail
	// is non-empty; set from the operator's sender settings.
	FromName  string
	FromEmail string
}

// Dispatcher sends one finalized draft and returns the provider's
// message id on acceptance.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// NoopDispatcher accepts everything without delivering; used when email
// is disabled in configuration.
type NoopDispatcher struct{}

func (NoopDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	return "noop", nil
}

// NewDispatcher picks the provider implementation from configuration.
// Sender address syntax is validated here so misconfiguration surfaces
// at startup, not on the first batch send.
func NewDispatcher(cfg config.DispatchConfig) (Dispatcher, error) {
	if !cfg.GetEmailEnabled() {
		return NoopDispatcher{}, nil
	}

	if _, err := mail.ParseAddress(cfg.GetSenderAddress()); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", cfg.GetSenderAddress(), err)
	}

	switch cfg.GetEmailProvider() {
	case "brevo":
		return NewBrevoDispatcher(cfg), nil
	case "smtp":
		return NewSMTPDispatcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

// ValidateRecipient rejects syntactically invalid addresses before any
// provider call is attempted.
func ValidateRecipient(address string) error {
	if address == "" {
		return &SendError{Class: ErrClassRejected, Message: "empty recipient address"}
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return &SendError{Class: ErrClassRejected, Message: "invalid recipient address " + address}
	}
	return nil
}
