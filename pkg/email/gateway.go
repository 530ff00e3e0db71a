package email

import "context"

// Assignment carries the job details sent to a provider when a booking is
// assigned to them
type Assignment struct {
	ProviderName  string
	ProviderEmail string
	CustomerName  string
	CustomerPhone string
	ServiceName   string
	Date          string
	Time          string
	Address       string
	Area          string
	Amount        float64
}

// Gateway defines the interface for sending assignment emails
type Gateway interface {
	// SendAssignment delivers a single assignment email. No retries.
	SendAssignment(ctx context.Context, a Assignment) error

	// GetName returns the name of the email gateway implementation
	GetName() string
}
