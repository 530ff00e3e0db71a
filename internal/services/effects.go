package services

import (
	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/email"
	"github.com/localbookr/marketplace-backend/pkg/push"
)

// EffectKind names an outbound side effect
type EffectKind string

const (
	EffectNotify EffectKind = "notify"
	EffectEmail  EffectKind = "email"
	EffectPush   EffectKind = "push"
)

// Effect is one side effect produced by a booking operation. Operations only
// describe effects; the Dispatcher performs them.
type Effect struct {
	Kind EffectKind

	// notify
	UserID   uuid.UUID
	Message  string
	Severity models.NotificationType

	// email
	Assignment *email.Assignment

	// push
	Push *push.Message
}

// Notify describes an in-app notification
func Notify(userID uuid.UUID, message string, severity models.NotificationType) Effect {
	return Effect{Kind: EffectNotify, UserID: userID, Message: message, Severity: severity}
}

// Email describes an assignment email
func Email(a email.Assignment) Effect {
	return Effect{Kind: EffectEmail, Assignment: &a}
}

// Push describes a web push to one subscription
func Push(subscriptionID, heading, body string) Effect {
	return Effect{
		Kind: EffectPush,
		Push: &push.Message{SubscriptionIDs: []string{subscriptionID}, Heading: heading, Body: body},
	}
}

// Outcome is the result of a booking operation: the booking as stored after
// the write and the effects to dispatch.
type Outcome struct {
	Booking *models.BookingDetail
	Effects []Effect
}

// Count returns how many effects of the kind the outcome carries
func (o *Outcome) Count(kind EffectKind) int {
	if o == nil {
		return 0
	}
	n := 0
	for _, e := range o.Effects {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
