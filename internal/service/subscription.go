package service

import (
	"context"
	"errors"

	"budget_tracker/internal/domain"
	"budget_tracker/internal/payment"

	"gorm.io/gorm"
)

// BeginCheckout asks the payment provider for a premium checkout
func BeginCheckout(ctx context.Context, p payment.Provider, user domain.User, successURL, cancelURL string) (payment.CheckoutHandle, error) {
	return p.CreateCheckout(ctx, payment.CheckoutRequest{
		UserID:     user.ID,
		Email:      user.Email,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
}

// VerifyCheckout looks a checkout up at the provider and reports whether it is
// a paid checkout that belongs to userID. The browser redirect alone proves nothing.
func VerifyCheckout(ctx context.Context, p payment.Provider, userID uint, sessionID string) (payment.Checkout, bool, error) {
	if sessionID == "" {
		return payment.Checkout{}, false, nil
	}
	c, err := p.LookupCheckout(ctx, sessionID)
	if err != nil {
		return payment.Checkout{}, false, err
	}
	return c, c.Paid && c.UserID == userID, nil
}

// ActivatePremium sets the premium flag. It reports whether the flag changed.
func ActivatePremium(tx *gorm.DB, userID uint, customerID string) (bool, error) {
	user, err := GetUser(tx, userID)
	if err != nil {
		return false, err
	}
	updates := map[string]any{}
	if !user.IsPremium {
		updates["is_premium"] = true
		updates["premium_since"] = Now()
	}
	if customerID != "" && (user.StripeCustomerID == nil || *user.StripeCustomerID != customerID) {
		updates["stripe_customer_id"] = customerID
	}
	if len(updates) == 0 {
		return false, nil
	}
	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		return false, err
	}
	return !user.IsPremium, nil
}

// DeactivatePremium clears the premium flag of the user paying through customerID.
// It returns the affected user id, or 0 when no premium user matches.
func DeactivatePremium(tx *gorm.DB, customerID string) (uint, error) {
	if customerID == "" {
		return 0, nil
	}
	var user domain.User
	err := tx.Where("stripe_customer_id = ?", customerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	if !user.IsPremium {
		return 0, nil
	}
	err = tx.Model(&user).Updates(map[string]any{"is_premium": false, "premium_since": nil}).Error
	return user.ID, err
}

// EventOutcome says what a provider event changed
type EventOutcome struct {
	UserID    uint
	Activated bool
	Cancelled bool
}

// HandleEvent applies a verified provider event to the premium flag
func HandleEvent(tx *gorm.DB, evt payment.Event) (EventOutcome, error) {
	switch evt.Type {
	case payment.EventCheckoutCompleted:
		c := evt.Checkout
		if c == nil || !c.Paid || c.UserID == 0 {
			return EventOutcome{}, nil
		}
		changed, err := ActivatePremium(tx, c.UserID, c.CustomerID)
		if errors.Is(err, domain.ErrNotFound) {
			return EventOutcome{}, nil // Checkout for an account that no longer exists
		}
		return EventOutcome{UserID: c.UserID, Activated: changed}, err
	case payment.EventSubscriptionDeleted:
		userID, err := DeactivatePremium(tx, evt.CustomerID)
		return EventOutcome{UserID: userID, Cancelled: userID != 0}, err
	}
	return EventOutcome{}, nil
}
