// File: services/whatsapp/sender.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sherpa/models"
)

// Payload is a WhatsApp Cloud API message request body.
type Payload struct {
	MessagingProduct string              `json:"messaging_product"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *TextPayload        `json:"text,omitempty"`
	Interactive      *InteractivePayload `json:"interactive,omitempty"`
	Image            *ImagePayload       `json:"image,omitempty"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type ImagePayload struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type InteractivePayload struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveBody    `json:"body"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type InteractiveBody struct {
	Text string `json:"text"`
}

type InteractiveAction struct {
	Button   string               `json:"button,omitempty"`
	Sections []InteractiveSection `json:"sections,omitempty"`
	Buttons  []InteractiveButton  `json:"buttons,omitempty"`
}

type InteractiveSection struct {
	Title string          `json:"title"`
	Rows  []models.Option `json:"rows"`
}

type InteractiveButton struct {
	Type  string        `json:"type"`
	Reply models.Option `json:"reply"`
}

// Sender posts message payloads to the delivery provider.
type Sender interface {
	Send(ctx context.Context, to string, payload Payload) error
}

// GraphAPISender implements Sender against the WhatsApp Cloud (Graph) API.
type GraphAPISender struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

// NewGraphAPISender returns a Sender for the given phone number id.
func NewGraphAPISender(token, phoneNumberID string) *GraphAPISender {
	return &GraphAPISender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", phoneNumberID),
		token:      token,
	}
}

func (s *GraphAPISender) Send(ctx context.Context, to string, payload Payload) error {
	payload.MessagingProduct = "whatsapp"
	payload.To = to

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send failed: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
