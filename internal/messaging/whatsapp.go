package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/sales-assistant-api/internal/config"
)

// WhatsAppClient sends text messages through the WhatsApp Cloud API
type WhatsAppClient struct {
	httpClient *http.Client
	config     *config.WhatsAppConfig
}

type whatsAppTextRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type whatsAppSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type whatsAppErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewWhatsAppClient creates a Cloud API client
func NewWhatsAppClient(cfg *config.WhatsAppConfig) *WhatsAppClient {
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WhatsAppClient{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

func (c *WhatsAppClient) endpoint() string {
	return fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimRight(c.config.BaseURL, "/"), c.config.APIVersion, c.config.PhoneNumberID)
}

// Send posts a text message to the recipient's WhatsApp number
func (c *WhatsAppClient) Send(ctx context.Context, to, text string) (string, error) {
	if err := validate(to, text); err != nil {
		return "", err
	}
	if c.config.AccessToken == "" || c.config.PhoneNumberID == "" {
		return "", fmt.Errorf("whatsapp client not configured")
	}

	payload, err := json.Marshal(whatsAppTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               strings.TrimPrefix(to, "+"),
		Type:             "text",
		Text:             whatsAppTextBody{Body: text},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call WhatsApp API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp whatsAppErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("WhatsApp API error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}
		return "", fmt.Errorf("WhatsApp API request failed with status %d", resp.StatusCode)
	}

	var sendResp whatsAppSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return "", fmt.Errorf("failed to decode WhatsApp response: %w", err)
	}
	if len(sendResp.Messages) == 0 || sendResp.Messages[0].ID == "" {
		return "", fmt.Errorf("WhatsApp response carried no message id")
	}

	return sendResp.Messages[0].ID, nil
}
