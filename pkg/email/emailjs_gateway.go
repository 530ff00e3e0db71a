package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultEmailJSURL is the EmailJS REST send endpoint
const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// ErrMissingRecipient is returned when the provider has no email address
var ErrMissingRecipient = errors.New("provider email is missing")

// EmailJSGateway sends assignment emails through the EmailJS REST API
type EmailJSGateway struct {
	apiURL      string
	serviceID   string
	templateID  string
	publicKey   string
	accessToken string
	client      *http.Client
}

// EmailJSConfig holds configuration for the EmailJS gateway
type EmailJSConfig struct {
	APIURL      string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string // Optional: private key for server-side calls
}

// NewEmailJSGateway creates a new EmailJS client
func NewEmailJSGateway(config EmailJSConfig) *EmailJSGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultEmailJSURL
	}
	return &EmailJSGateway{
		apiURL:      apiURL,
		serviceID:   config.ServiceID,
		templateID:  config.TemplateID,
		publicKey:   config.PublicKey,
		accessToken: config.AccessToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendRequest represents the EmailJS send request structure
type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// GetName returns the gateway name
func (g *EmailJSGateway) GetName() string {
	return "emailjs"
}

// SendAssignment posts the assignment template to EmailJS
func (g *EmailJSGateway) SendAssignment(ctx context.Context, a Assignment) error {
	if a.ProviderEmail == "" {
		return ErrMissingRecipient
	}

	payload := sendRequest{
		ServiceID:      g.serviceID,
		TemplateID:     g.templateID,
		UserID:         g.publicKey,
		AccessToken:    g.accessToken,
		TemplateParams: TemplateParams(a),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("emailjs returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// TemplateParams builds the EmailJS template variables for an assignment
func TemplateParams(a Assignment) map[string]string {
	location := a.Address
	if a.Area != "" {
		if location != "" {
			location += ", "
		}
		location += a.Area
	}

	return map[string]string{
		"to_name":          a.ProviderName,
		"to_email":         a.ProviderEmail,
		"provider_name":    a.ProviderName,
		"customer_name":    a.CustomerName,
		"customer_phone":   a.CustomerPhone,
		"service_name":     a.ServiceName,
		"booking_date":     a.Date,
		"booking_time":     a.Time,
		"booking_location": location,
		"budget":           strconv.FormatFloat(a.Amount, 'f', -1, 64),
		"message":          fmt.Sprintf("New Job Assigned: %s at %s", a.ServiceName, location),
	}
}

// NoopGateway drops every email. Used when email delivery is disabled.
type NoopGateway struct{}

// GetName returns the gateway name
func (NoopGateway) GetName() string { return "noop" }

// SendAssignment does nothing
func (NoopGateway) SendAssignment(context.Context, Assignment) error { return nil }
