// Package payment talks to the external payment provider that sells the
// premium subscription.
package payment

import "context"

// Provider events the subscription gate reacts to
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest describes a premium checkout for one user
type CheckoutRequest struct {
	UserID     uint
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutHandle is what the browser needs to continue to the provider
type CheckoutHandle struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url,omitempty"`
}

// Checkout is the provider's view of a checkout session
type Checkout struct {
	SessionID  string
	UserID     uint // From the client reference we attached, 0 when absent
	CustomerID string
	Paid       bool
}

// Event is a verified asynchronous notification from the provider
type Event struct {
	ID         string
	Type       string
	Checkout   *Checkout // Set for EventCheckoutCompleted
	CustomerID string    // Set for EventSubscriptionDeleted
}

// Provider creates checkouts and verifies what the provider tells us about them
type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutHandle, error)
	LookupCheckout(ctx context.Context, sessionID string) (Checkout, error)
	ParseEvent(payload []byte, signature string) (Event, error)
}
