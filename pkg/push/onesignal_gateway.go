package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultOneSignalURL is the OneSignal create-notification endpoint
const DefaultOneSignalURL = "https://onesignal.com/api/v1/notifications"

// ErrNoRecipients is returned when a message has no subscription IDs
var ErrNoRecipients = errors.New("no push subscription ids")

// OneSignalGateway sends web-push notifications through the OneSignal REST API
type OneSignalGateway struct {
	apiURL     string
	appID      string
	restAPIKey string
	defaultURL string
	client     *http.Client
}

// OneSignalConfig holds configuration for the OneSignal gateway
type OneSignalConfig struct {
	APIURL     string
	AppID      string
	RESTAPIKey string
	DefaultURL string // Opened on click when the message has no URL
}

// NewOneSignalGateway creates a new OneSignal client
func NewOneSignalGateway(config OneSignalConfig) *OneSignalGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultOneSignalURL
	}
	return &OneSignalGateway{
		apiURL:     apiURL,
		appID:      config.AppID,
		restAPIKey: config.RESTAPIKey,
		defaultURL: config.DefaultURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// notificationRequest represents the OneSignal create-notification body
type notificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	URL              string            `json:"url,omitempty"`
}

// notificationResponse represents the OneSignal response
type notificationResponse struct {
	ID     string      `json:"id"`
	Errors interface{} `json:"errors,omitempty"`
}

// GetName returns the gateway name
func (g *OneSignalGateway) GetName() string {
	return "onesignal"
}

// Send posts a notification to the given subscriptions
func (g *OneSignalGateway) Send(ctx context.Context, msg Message) error {
	if len(msg.SubscriptionIDs) == 0 {
		return ErrNoRecipients
	}

	url := msg.URL
	if url == "" {
		url = g.defaultURL
	}

	payload := notificationRequest{
		AppID:            g.appID,
		IncludePlayerIDs: msg.SubscriptionIDs,
		Headings:         map[string]string{"en": msg.Heading},
		Contents:         map[string]string{"en": msg.Body},
		URL:              url,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+g.restAPIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("onesignal returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result notificationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse push response: %w", err)
	}

	if result.ID == "" && result.Errors != nil {
		return fmt.Errorf("onesignal rejected notification: %v", result.Errors)
	}

	return nil
}
