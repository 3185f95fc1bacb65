package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBotServer(t *testing.T, sendOK bool) (*httptest.Server, *[]string) {
	t.Helper()
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Hisab","username":"hisab_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			texts = append(texts, r.Form.Get("chat_id")+":"+r.Form.Get("text"))
			if !sendOK {
				_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &texts
}

func TestTelegramNotConfigured(t *testing.T) {
	svc, err := NewTelegramService("")
	require.NoError(t, err)
	assert.False(t, svc.IsConfigured())
	assert.ErrorIs(t, svc.SendMessage(42, "hi"), ErrTelegramNotConfigured)

	var nilSvc *TelegramService
	assert.False(t, nilSvc.IsConfigured())
}

func TestTelegramSendMessage(t *testing.T) {
	srv, texts := newBotServer(t, true)

	svc, err := NewTelegramServiceWithEndpoint("TOKEN", srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	require.True(t, svc.IsConfigured())

	require.NoError(t, svc.SendMessage(42, "Monthly report: ₹1200.00"))
	assert.Equal(t, []string{"42:Monthly report: ₹1200.00"}, *texts)
}

func TestTelegramSendMessageFailure(t *testing.T) {
	srv, _ := newBotServer(t, false)

	svc, err := NewTelegramServiceWithEndpoint("TOKEN", srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	assert.Error(t, svc.SendMessage(42, "x"))
}
