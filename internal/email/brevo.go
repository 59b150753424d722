package email

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"leadvox_backend/platform/config"
)

const brevoSendURL = "https://api.brevo.com/v3/smtp/email"

// BrevoDispatcher delivers through the Brevo transactional HTTP API.
type BrevoDispatcher struct {
	apiKey    string
	fromName  string
	fromEmail string
	sendURL   string
	client    *http.Client
}

// NewBrevoDispatcher builds the production Brevo dispatcher.
func NewBrevoDispatcher(cfg config.DispatchConfig) *BrevoDispatcher {
	return &BrevoDispatcher{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetSenderName(),
		fromEmail: cfg.GetSenderAddress(),
		sendURL:   brevoSendURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent,omitempty"`
	TextContent string       `json:"textContent,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}

type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send posts the message to Brevo and returns its message id.
func (b *BrevoDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if err := ValidateRecipient(msg.To); err != nil {
		return "", err
	}

	sender := brevoParty{Name: b.fromName, Email: b.fromEmail}
	if msg.FromEmail != "" {
		sender = brevoParty{Name: msg.FromName, Email: msg.FromEmail}
	}

	payload := brevoSendRequest{
		Sender:  sender,
		To:      []brevoParty{{Email: msg.To}},
		Subject: msg.Subject,
	}
	if msg.HTML {
		payload.HTMLContent = msg.Body
	} else {
		payload.TextContent = msg.Body
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.sendURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &SendError{Class: ErrClassOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyBrevoFailure(resp)
	}

	var accepted brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", &SendError{Class: ErrClassOther, Message: "unreadable provider response: " + err.Error()}
	}
	return accepted.MessageID, nil
}

func classifyBrevoFailure(resp *http.Response) *SendError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var apiErr brevoErrorResponse
	_ = json.Unmarshal(data, &apiErr)

	message := apiErr.Message
	if message == "" {
		message = strings.TrimSpace(string(data))
	}
	if message == "" {
		message = resp.Status
	}

	lower := strings.ToLower(message + " " + apiErr.Code)
	switch {
	case strings.Contains(lower, "sender") && (strings.Contains(lower, "not valid") ||
		strings.Contains(lower, "unverified") || strings.Contains(lower, "not authorised") ||
		strings.Contains(lower, "not authorized")):
		return &SendError{Class: ErrClassSenderUnverified, Message: message}
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(lower, "recipient"),
		strings.Contains(lower, "blocked"), strings.Contains(lower, "blacklist"):
		return &SendError{Class: ErrClassRejected, Message: message}
	default:
		return &SendError{Class: ErrClassOther, Message: message}
	}
}
