package domain

import "errors"

var (
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrBudgetLimit             = errors.New("budget limit reached, upgrade to premium for unlimited budgets")
	ErrTooManyAttempts         = errors.New("too many failed login attempts, try again later")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
)

// PaymentProviderError carries the payment provider's own message
type PaymentProviderError struct {
	Message string
}

func (e *PaymentProviderError) Error() string {
	return e.Message
}
