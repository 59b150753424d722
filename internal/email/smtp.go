package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"leadvox_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPDispatcher delivers through a direct SMTP connection via go-mail,
// for operators who send from their own mail server instead of Brevo.
type SMTPDispatcher struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPDispatcher builds the SMTP dispatcher from configuration.
func NewSMTPDispatcher(cfg config.DispatchConfig) *SMTPDispatcher {
	return &SMTPDispatcher{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetSenderName(),
		fromEmail: cfg.GetSenderAddress(),
	}
}

// Send delivers the message over SMTP. SMTP gives no provider message id,
// so a synthetic one derived from the Message-ID header is returned.
func (s *SMTPDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if err := ValidateRecipient(msg.To); err != nil {
		return "", err
	}

	fromName, fromEmail := s.fromName, s.fromEmail
	if msg.FromEmail != "" {
		fromName, fromEmail = msg.FromName, msg.FromEmail
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(fromName, fromEmail); err != nil {
		return "", &SendError{Class: ErrClassSenderUnverified, Message: "smtp from: " + err.Error()}
	}
	if err := m.To(msg.To); err != nil {
		return "", &SendError{Class: ErrClassRejected, Message: "smtp to: " + err.Error()}
	}
	m.Subject(msg.Subject)
	if msg.HTML {
		m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}
	m.SetMessageID()

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return "", &SendError{Class: ErrClassOther, Message: "smtp client: " + err.Error()}
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", classifySMTPFailure(err)
	}

	return strings.Trim(m.GetMessageID(), "<>"), nil
}

func classifySMTPFailure(err error) *SendError {
	message := err.Error()
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "sender") || strings.Contains(lower, "mail from"):
		return &SendError{Class: ErrClassSenderUnverified, Message: message}
	case strings.Contains(lower, "recipient") || strings.Contains(lower, "rcpt to"):
		return &SendError{Class: ErrClassRejected, Message: message}
	default:
		return &SendError{Class: ErrClassOther, Message: fmt.Sprintf("smtp send: %s", message)}
	}
}
