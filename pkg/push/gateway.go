package push

import "context"

// Message is a single web-push notification
type Message struct {
	SubscriptionIDs []string
	Heading         string
	Body            string
	URL             string
}

// Gateway defines the interface for sending push notifications
type Gateway interface {
	// Send delivers one push message. No retries.
	Send(ctx context.Context, msg Message) error

	// GetName returns the name of the push gateway implementation
	GetName() string
}

// NoopGateway drops every message. Used when push delivery is disabled.
type NoopGateway struct{}

// GetName returns the gateway name
func (NoopGateway) GetName() string { return "noop" }

// Send does nothing
func (NoopGateway) Send(context.Context, Message) error { return nil }
