package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/upgraded-notifs/notifs/pkg/httpclient"
)

const DefaultResendURL = "https://api.resend.com/emails/batch"

// ErrMissingAPIKey is returned when the email API key is not configured.
var ErrMissingAPIKey = errors.New("RESEND_API_KEY is not set or empty")

// Email is one message in a Resend batch request.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendClient sends email through the Resend batch endpoint.
type ResendClient struct {
	client httpclient.Client
	url    string
	apiKey string
}

// NewResendClient builds a client. An empty apiKey is accepted here and rejected at send time.
func NewResendClient(client httpclient.Client, url, apiKey string) *ResendClient {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	if url = strings.TrimSpace(url); url == "" {
		url = DefaultResendURL
	}
	return &ResendClient{client: client, url: url, apiKey: strings.TrimSpace(apiKey)}
}

// SendBatch posts the emails in a single batch request.
func (c *ResendClient) SendBatch(ctx context.Context, emails []Email) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	resp, err := c.client.Post(ctx, httpclient.Request{
		URL:     c.url,
		Headers: map[string]string{"Authorization": "Bearer " + c.apiKey},
		Body:    emails,
	})
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		return fmt.Errorf("resend response status %d: %s", status, bodySnippet(resp.Body()))
	}
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
