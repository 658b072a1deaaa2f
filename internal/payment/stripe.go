package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"budget_tracker/internal/domain"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe implements Provider with Stripe Checkout subscriptions
type Stripe struct {
	sessions      *session.Client
	priceID       string
	webhookSecret string
}

// NewStripe creates a Stripe provider
func NewStripe(apiKey, priceID, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey},
		priceID:       priceID,
		webhookSecret: webhookSecret,
	}
}

// CreateCheckout starts a subscription checkout tagged with the user's id
func (s *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutHandle, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(s.priceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(req.UserID), 10)),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	cs, err := s.sessions.New(params)
	if err != nil {
		return CheckoutHandle{}, providerError(err)
	}
	return CheckoutHandle{SessionID: cs.ID, URL: cs.URL}, nil
}

// LookupCheckout fetches a checkout session from Stripe
func (s *Stripe) LookupCheckout(ctx context.Context, sessionID string) (Checkout, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.sessions.Get(sessionID, params)
	if err != nil {
		return Checkout{}, providerError(err)
	}
	return toCheckout(cs), nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the events we handle
func (s *Stripe) ParseEvent(payload []byte, signature string) (Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", domain.ErrInvalidWebhookSignature, err)
	}
	out := Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data == nil {
		return out, nil
	}
	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		c := toCheckout(&cs)
		out.Checkout = &c
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}

func toCheckout(cs *stripe.CheckoutSession) Checkout {
	c := Checkout{
		SessionID: cs.ID,
		Paid:      cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if id, err := strconv.ParseUint(cs.ClientReferenceID, 10, 64); err == nil {
		c.UserID = uint(id)
	}
	if cs.Customer != nil {
		c.CustomerID = cs.Customer.ID
	}
	return c
}

func providerError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return &domain.PaymentProviderError{Message: serr.Msg}
	}
	return &domain.PaymentProviderError{Message: err.Error()}
}
