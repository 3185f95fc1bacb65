package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/foxxcyber/hisab-kitab/internal/config"
)

// SMSResult reports the outcome of one SMS send
type SMSResult struct {
	Success bool   `json:"success"`
	SID     string `json:"sid,omitempty"`
	Message string `json:"message,omitempty"`
}

// SMSService sends text messages through the Twilio Messages API
type SMSService struct {
	accountSID string
	authToken  string
	from       string
	baseURL    *url.URL
	timeout    time.Duration
}

// NewSMSService creates a new SMS service from the Twilio settings in cfg.
// TwilioBaseURL redirects API calls, e.g. to a local mock.
func NewSMSService(cfg *config.Config) *SMSService {
	s := &SMSService{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.TwilioPhoneNumber,
		timeout:    15 * time.Second,
	}
	if raw := strings.TrimRight(cfg.TwilioBaseURL, "/"); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			s.baseURL = u
		} else {
			log.WithField("url", raw).Warn("Ignoring invalid TWILIO_BASE_URL")
		}
	}
	return s
}

// IsConfigured returns true if Twilio credentials are present
func (s *SMSService) IsConfigured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

// twilioTransport binds SDK requests to the caller's context and base URL
type twilioTransport struct {
	ctx  context.Context
	base *url.URL
	next http.RoundTripper
}

func (t *twilioTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(t.ctx)
	if t.base != nil {
		r.URL.Scheme = t.base.Scheme
		r.URL.Host = t.base.Host
		r.Host = t.base.Host
	}
	return t.next.RoundTrip(r)
}

// restClient builds a Twilio client whose requests carry ctx
func (s *SMSService) restClient(ctx context.Context) *twilio.RestClient {
	c := &client.Client{
		Credentials: client.NewCredentials(s.accountSID, s.authToken),
		HTTPClient: &http.Client{
			Timeout:   s.timeout,
			Transport: &twilioTransport{ctx: ctx, base: s.baseURL, next: http.DefaultTransport},
		},
	}
	c.SetAccountSid(s.accountSID)
	return twilio.NewRestClientWithParams(twilio.ClientParams{Client: c})
}

// SendSMS sends body to the given phone number. An unconfigured service is
// not an error: the result simply reports that nothing was sent.
func (s *SMSService) SendSMS(ctx context.Context, to, body string) (*SMSResult, error) {
	if !s.IsConfigured() {
		log.WithField("to", to).Info("Twilio not configured, SMS not sent")
		return &SMSResult{Success: false, Message: "Twilio not configured"}, nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.restClient(ctx).Api.CreateMessage(params)
	if err != nil {
		var apiErr *client.TwilioRestError
		if errors.As(err, &apiErr) {
			return &SMSResult{Success: false, Message: apiErr.Message},
				fmt.Errorf("twilio returned %d: %s", apiErr.Status, apiErr.Message)
		}
		return &SMSResult{Success: false, Message: err.Error()}, fmt.Errorf("failed to send SMS: %w", err)
	}

	result := &SMSResult{Success: true}
	if msg.Sid != nil {
		result.SID = *msg.Sid
	}
	return result, nil
}
