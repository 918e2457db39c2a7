package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	twilioBaseURL     = "https://api.twilio.com"
	defaultSMSTimeout = 10 * time.Second
)

// TwilioProvider delivers SMS through Twilio's Messages endpoint. The sender
// identity is a messaging service sid when configured, otherwise a fixed from
// number; with neither, sends are skipped rather than failed.
type TwilioProvider struct {
	client              *resty.Client
	baseURL             string
	accountSID          string
	authToken           string
	from                string
	messagingServiceSID string
}

func NewTwilioProvider(accountSID, authToken, from, messagingServiceSID string) *TwilioProvider {
	client := resty.New()
	client.SetTimeout(defaultSMSTimeout)
	client.SetRetryCount(0)

	return NewTwilioProviderWithClient(accountSID, authToken, from, messagingServiceSID, twilioBaseURL, client)
}

func NewTwilioProviderWithClient(accountSID, authToken, from, messagingServiceSID, baseURL string, client *resty.Client) *TwilioProvider {
	if client == nil {
		client = resty.New()
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSMSTimeout)
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = twilioBaseURL
	}

	return &TwilioProvider{
		client:              client,
		baseURL:             strings.TrimRight(baseURL, "/"),
		accountSID:          strings.TrimSpace(accountSID),
		authToken:           strings.TrimSpace(authToken),
		from:                strings.TrimSpace(from),
		messagingServiceSID: strings.TrimSpace(messagingServiceSID),
	}
}

func (p *TwilioProvider) Send(ctx context.Context, to string, body string) Outcome {
	if p == nil || p.client == nil {
		return Failed(0, "sms provider is not initialized")
	}
	if p.accountSID == "" || p.authToken == "" {
		return Skipped("missing TWILIO_SID or TWILIO_TOKEN")
	}

	form := map[string]string{
		"To":   to,
		"Body": body,
	}
	switch {
	case p.messagingServiceSID != "":
		form["MessagingServiceSid"] = p.messagingServiceSID
	case p.from != "":
		form["From"] = p.from
	default:
		return Skipped("missing TWILIO_FROM or TWILIO_MESSAGING_SERVICE_SID")
	}

	url := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)

	response, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.accountSID, p.authToken).
		SetFormData(form).
		Post(url)
	if err != nil {
		return Failed(0, err.Error())
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return Sent(statusCode)
	}

	return Failed(statusCode, strings.TrimSpace(response.String()))
}
