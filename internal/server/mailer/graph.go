package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/konasal/konasal-backend/internal/server/config"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	graphEndpoint = "https://graph.microsoft.com/v1.0"
	graphScope    = "https://graph.microsoft.com/.default"
)

// GraphMailer sends through Microsoft Graph /users/{sender}/sendMail using
// an app registration's client credentials.
type GraphMailer struct {
	client   *http.Client
	endpoint string
	sender   string
}

// NewGraphMailer builds a mailer whose HTTP client fetches and refreshes
// tokens from the tenant's v2.0 token endpoint.
func NewGraphMailer(cfg *config.Config) *GraphMailer {
	tokenURL := fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.AzureTenantID))
	return newGraphMailer(cfg, tokenURL, graphEndpoint)
}

func newGraphMailer(cfg *config.Config, tokenURL, endpoint string) *GraphMailer {
	cc := &clientcredentials.Config{
		ClientID:     cfg.AzureClientID,
		ClientSecret: cfg.AzureClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
	}
	client := cc.Client(context.Background())
	client.Timeout = 30 * time.Second

	return &GraphMailer{client: client, endpoint: endpoint, sender: cfg.AzureSenderEmail}
}

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphSendMail struct {
	Message struct {
		Subject string `json:"subject"`
		Body    struct {
			ContentType string `json:"contentType"`
			Content     string `json:"content"`
		} `json:"body"`
		ToRecipients []graphAddress `json:"toRecipients"`
		From         graphAddress   `json:"from"`
	} `json:"message"`
	SaveToSentItems bool `json:"saveToSentItems"`
}

func (m *GraphMailer) Send(ctx context.Context, to, subject, html string) error {
	var body graphSendMail
	body.Message.Subject = subject
	body.Message.Body.ContentType = "HTML"
	body.Message.Body.Content = html
	var rcpt graphAddress
	rcpt.EmailAddress.Address = to
	body.Message.ToRecipients = []graphAddress{rcpt}
	body.Message.From.EmailAddress.Address = m.sender
	body.SaveToSentItems = true

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	u := fmt.Sprintf("%s/users/%s/sendMail", m.endpoint, url.PathEscape(m.sender))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: graph status %d: %s", ErrSendFailed, resp.StatusCode, raw)
	}
	return nil
}

func (m *GraphMailer) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
