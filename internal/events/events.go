// Package events publishes domain events after a request has committed.
package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types
const (
	UserRegistered        = "user.registered"
	TransactionCreated    = "transaction.created"
	SubscriptionActivated = "subscription.activated"
	SubscriptionCancelled = "subscription.cancelled"
)

// Event is the JSON envelope sent to the broker
type Event struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// New stamps an event with the current time
func New(eventType string, userID uint, data any) Event {
	return Event{Type: eventType, UserID: userID, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers events to subscribers
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Nop drops every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes evt and only logs a failure; the request that produced it has already committed
func Emit(ctx context.Context, p Publisher, evt Event) {
	if err := p.Publish(ctx, evt); err != nil {
		logrus.WithFields(logrus.Fields{
			"event":   evt.Type,
			"user_id": evt.UserID,
			"error":   err.Error(),
		}).Error("Failed to publish event")
	}
}
