package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	brevoEndpoint      = "https://api.brevo.com/v3/smtp/email"
	mailerSendEndpoint = "https://api.mailersend.com/v1/email"
)

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoSender sends through Brevo's transactional email API
type BrevoSender struct {
	apiKey   string
	from     Address
	client   *http.Client
	endpoint string
}

func NewBrevoSender(apiKey string, from Address, client *http.Client) *BrevoSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &BrevoSender{apiKey: apiKey, from: from, client: client, endpoint: brevoEndpoint}
}

func (s *BrevoSender) Name() string { return "brevo" }

func (s *BrevoSender) Send(ctx context.Context, msg Message) error {
	payload := struct {
		Sender      recipient   `json:"sender"`
		To          []recipient `json:"to"`
		Subject     string      `json:"subject"`
		HTMLContent string      `json:"htmlContent"`
		TextContent string      `json:"textContent"`
	}{
		Sender:      recipient{Email: s.from.Email, Name: s.from.Name},
		To:          []recipient{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	return postJSON(ctx, s.client, s.endpoint, payload, map[string]string{"api-key": s.apiKey})
}

// MailerSendSender sends through MailerSend's email API
type MailerSendSender struct {
	token    string
	from     Address
	client   *http.Client
	endpoint string
}

func NewMailerSendSender(token string, from Address, client *http.Client) *MailerSendSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &MailerSendSender{token: token, from: from, client: client, endpoint: mailerSendEndpoint}
}

func (s *MailerSendSender) Name() string { return "mailersend" }

func (s *MailerSendSender) Send(ctx context.Context, msg Message) error {
	payload := struct {
		From    recipient   `json:"from"`
		To      []recipient `json:"to"`
		Subject string      `json:"subject"`
		HTML    string      `json:"html"`
		Text    string      `json:"text"`
	}{
		From:    recipient{Email: s.from.Email, Name: s.from.Name},
		To:      []recipient{{Email: msg.To}},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	return postJSON(ctx, s.client, s.endpoint, payload, map[string]string{
		"Authorization":    "Bearer " + s.token,
		"X-Requested-With": "XMLHttpRequest",
	})
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("api error (%d): %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
