package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	resendEndpoint      = "https://api.resend.com/emails"
	defaultEmailTimeout = 10 * time.Second
)

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// ResendProvider delivers transactional email through the Resend API.
// Missing credentials degrade every send to a skip so the service can run
// without live messaging secrets.
type ResendProvider struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	from     string
}

func NewResendProvider(apiKey, from string) *ResendProvider {
	client := resty.New()
	client.SetTimeout(defaultEmailTimeout)
	client.SetRetryCount(0)

	return NewResendProviderWithClient(apiKey, from, resendEndpoint, client)
}

func NewResendProviderWithClient(apiKey, from, endpoint string, client *resty.Client) *ResendProvider {
	if client == nil {
		client = resty.New()
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultEmailTimeout)
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = resendEndpoint
	}

	return &ResendProvider{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		from:     strings.TrimSpace(from),
	}
}

func (p *ResendProvider) Send(ctx context.Context, to string, subject string, htmlBody string) Outcome {
	if p == nil || p.client == nil {
		return Failed(0, "email provider is not initialized")
	}
	if p.apiKey == "" || p.from == "" {
		return Skipped("missing RESEND_API_KEY or EMAIL_FROM")
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(resendRequest{
			From:    p.from,
			To:      to,
			Subject: subject,
			HTML:    htmlBody,
		}).
		Post(p.endpoint)
	if err != nil {
		return Failed(0, err.Error())
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return Sent(statusCode)
	}

	return Failed(statusCode, strings.TrimSpace(response.String()))
}
