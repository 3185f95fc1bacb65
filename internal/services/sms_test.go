package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/config"
)

func twilioConfig(baseURL string) *config.Config {
	return &config.Config{
		TwilioAccountSID:  "AC123",
		TwilioAuthToken:   "secret",
		TwilioPhoneNumber: "+15550001111",
		TwilioBaseURL:     baseURL,
	}
}

func TestSendSMSNotConfigured(t *testing.T) {
	svc := NewSMSService(&config.Config{})
	assert.False(t, svc.IsConfigured())

	result, err := svc.SendSMS(context.Background(), "+919800000000", "hello")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Twilio not configured", result.Message)
}

func TestSendSMS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+919800000000", r.Form.Get("To"))
		assert.Equal(t, "+15550001111", r.Form.Get("From"))
		assert.Equal(t, "report ready", r.Form.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	svc := NewSMSService(twilioConfig(srv.URL + "/"))
	result, err := svc.SendSMS(context.Background(), "+919800000000", "report ready")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "SM42", result.SID)
}

func TestSendSMSUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","more_info":"https://www.twilio.com/docs/errors/21211","status":400}`))
	}))
	defer srv.Close()

	svc := NewSMSService(twilioConfig(srv.URL))
	result, err := svc.SendSMS(context.Background(), "123", "x")
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid 'To' Phone Number", result.Message)
	assert.Contains(t, err.Error(), "400")
}

func TestSendSMSHonorsContext(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewSMSService(twilioConfig(srv.URL))
	result, err := svc.SendSMS(ctx, "+919800000000", "report ready")
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, hits)
}
