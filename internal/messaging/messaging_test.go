package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/sales-assistant-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *WhatsAppClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewWhatsAppClient(&config.WhatsAppConfig{
		BaseURL:       server.URL,
		APIVersion:    "v19.0",
		PhoneNumberID: "12345",
		AccessToken:   "secret-token",
		Timeout:       5,
	})
}

func TestWhatsAppClient_Send(t *testing.T) {
	var received whatsAppTextRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v19.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.ABC"}]}`))
	})

	id, err := client.Send(context.Background(), "+254712345678", "Hi Amina!")
	require.NoError(t, err)
	assert.Equal(t, "wamid.ABC", id)
	assert.Equal(t, "254712345678", received.To)
	assert.Equal(t, "text", received.Type)
	assert.Equal(t, "Hi Amina!", received.Text.Body)
}

func TestWhatsAppClient_SendErrors(t *testing.T) {
	t.Run("api error message is surfaced", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
		})
		_, err := client.Send(context.Background(), "+254712345678", "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid parameter")
	})

	t.Run("status without body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.Send(context.Background(), "+254712345678", "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("missing message id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"messages":[]}`))
		})
		_, err := client.Send(context.Background(), "+254712345678", "hi")
		assert.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := client.Send(context.Background(), "", "hi")
		assert.ErrorIs(t, err, ErrEmptyRecipient)
		_, err = client.Send(context.Background(), "+1", "")
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("unconfigured", func(t *testing.T) {
		client := NewWhatsAppClient(&config.WhatsAppConfig{BaseURL: "http://localhost"})
		_, err := client.Send(context.Background(), "+1", "hi")
		assert.Error(t, err)
	})
}

func TestLogSender(t *testing.T) {
	sender := NewLogSender(zap.NewNop())
	id, err := sender.Send(context.Background(), "+254712345678", "hello")
	require.NoError(t, err)
	assert.Contains(t, id, "log-")

	_, err = sender.Send(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrEmptyRecipient)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	logSender := NewLogSender(zap.NewNop())
	r.Register(ProviderLog, logSender)
	r.Register(ProviderWhatsApp, NewWhatsAppClient(&config.WhatsAppConfig{}))

	got, err := r.Get(ProviderLog)
	require.NoError(t, err)
	assert.Same(t, logSender, got)

	_, err = r.Get("sms")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	assert.Equal(t, []string{ProviderLog, ProviderWhatsApp}, r.Names())
}
