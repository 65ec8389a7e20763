// Package mailer sends transactional email.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"studio-space-backend/internal/logger"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewSender picks the sender named by EMAIL_PROVIDER.
func NewSender(provider, apiKey, from string) (Sender, error) {
	switch provider {
	case "log", "":
		return &LogSender{From: from}, nil
	case "resend":
		if apiKey == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return NewResendSender(apiKey, from), nil
	}
	return nil, fmt.Errorf("unknown email provider: %s", provider)
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	From string
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	logger.Log.WithFields(logrus.Fields{
		"from":    s.From,
		"to":      to,
		"subject": subject,
		"bytes":   len(htmlBody),
	}).Info("email sent (logged)")
	logger.Log.Debug(htmlBody)
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender posts emails to the Resend API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	body, err := json.Marshal(resendPayload{From: s.from, To: []string{to}, Subject: subject, HTML: htmlBody})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API returned an error: status %d", resp.StatusCode)
	}
	return nil
}
