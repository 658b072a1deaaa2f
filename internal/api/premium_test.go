package api

import (
	"net/http"

	"budget_tracker/internal/domain"
	"budget_tracker/internal/events"
	"budget_tracker/internal/payment"
)

func (s *APISuite) paidCheckout(userID uint) payment.Checkout {
	return payment.Checkout{SessionID: "cs_test_1", UserID: userID, CustomerID: "cus_1", Paid: true}
}

func (s *APISuite) TestSubscribe() {
	token := s.signup("sub@example.com")
	w := s.do(http.MethodPost, "/premium/subscribe", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var handle payment.CheckoutHandle
	s.decode(w, &handle)
	s.Equal("cs_test_1", handle.SessionID)
	s.Contains(handle.URL, "https://budget.example/premium/success?session_id={CHECKOUT_SESSION_ID}")
}

func (s *APISuite) TestSubscribeProviderError() {
	token := s.signup("declined@example.com")
	s.provider.err = &domain.PaymentProviderError{Message: "No such price"}
	w := s.do(http.MethodPost, "/premium/subscribe", nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"No such price"}`, w.Body.String())
}

func (s *APISuite) TestSuccessRedirectAloneDoesNotGrantPremium() {
	token := s.signup("sneaky@example.com")
	s.provider.checkout = payment.Checkout{SessionID: "cs_test_1", UserID: s.userID("sneaky@example.com"), Paid: false}

	w := s.do(http.MethodGet, "/premium/success?session_id=cs_test_1", nil, token)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
	s.False(s.isPremium("sneaky@example.com"))

	w = s.do(http.MethodGet, "/premium/success", nil, token)
	s.Equal(http.StatusFound, w.Code)
	s.False(s.isPremium("sneaky@example.com"))
}

func (s *APISuite) TestSuccessRejectsSomeoneElsesCheckout() {
	s.signup("payer@example.com")
	token := s.signup("other@example.com")
	s.provider.checkout = s.paidCheckout(s.userID("payer@example.com"))

	w := s.do(http.MethodGet, "/premium/success?session_id=cs_test_1", nil, token)
	s.Equal(http.StatusFound, w.Code)
	s.False(s.isPremium("other@example.com"))
	s.False(s.isPremium("payer@example.com"))
}

func (s *APISuite) TestSuccessGrantsPremiumWhenVerified() {
	token := s.signup("paid@example.com")
	s.addTx(token, 100, "salary", "income")
	s.do(http.MethodGet, "/api/summary", nil, token) // warm the cache

	s.provider.checkout = s.paidCheckout(s.userID("paid@example.com"))
	w := s.do(http.MethodGet, "/premium/success?session_id=cs_test_1", nil, token)
	s.Equal(http.StatusFound, w.Code)
	s.Equal([]string{"cs_test_1"}, s.provider.lookups)
	s.True(s.isPremium("paid@example.com"))
	s.Contains(s.pub.types(), events.SubscriptionActivated)

	w = s.do(http.MethodGet, "/api/summary", nil, token)
	s.Contains(w.Body.String(), `"premium_features"`)
}

func (s *APISuite) TestCancelRedirectsHome() {
	token := s.signup("cancel@example.com")
	w := s.do(http.MethodGet, "/premium/cancel", nil, token)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
	s.False(s.isPremium("cancel@example.com"))
}

func (s *APISuite) TestWebhookRejectsBadSignature() {
	s.signup("hook@example.com")
	w := s.do(http.MethodPost, "/premium/webhook", `{}`, "", "Stripe-Signature", "forged")
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(s.isPremium("hook@example.com"))
}

func (s *APISuite) TestWebhookActivatesAndCancels() {
	token := s.signup("hook@example.com")
	checkout := s.paidCheckout(s.userID("hook@example.com"))
	s.provider.events["sig-complete"] = payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, Checkout: &checkout}
	s.provider.events["sig-deleted"] = payment.Event{ID: "evt_2", Type: payment.EventSubscriptionDeleted, CustomerID: "cus_1"}

	w := s.do(http.MethodPost, "/premium/webhook", `{}`, "", "Stripe-Signature", "sig-complete")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"received":true}`, w.Body.String())
	s.True(s.isPremium("hook@example.com"))

	s.addTx(token, 1000, "salary", "income")
	s.addTx(token, 200, "food", "expense")
	w = s.do(http.MethodGet, "/api/summary", nil, token)
	s.JSONEq(`{"income":1000,"expenses":200,"balance":800,
		"premium_features":{"category_breakdown":{"food":200},"savings_rate":80}}`, w.Body.String())

	w = s.do(http.MethodPost, "/premium/webhook", `{}`, "", "Stripe-Signature", "sig-deleted")
	s.Require().Equal(http.StatusOK, w.Code)
	s.False(s.isPremium("hook@example.com"))

	w = s.do(http.MethodGet, "/api/summary", nil, token)
	s.JSONEq(`{"income":1000,"expenses":200,"balance":800}`, w.Body.String())
	s.Equal([]string{
		events.UserRegistered,
		events.SubscriptionActivated,
		events.TransactionCreated,
		events.TransactionCreated,
		events.SubscriptionCancelled,
	}, s.pub.types())
}

func (s *APISuite) TestWebhookDeliveredTwiceAppliesOnce() {
	s.signup("twice@example.com")
	checkout := s.paidCheckout(s.userID("twice@example.com"))
	s.provider.events["sig"] = payment.Event{ID: "evt_9", Type: payment.EventCheckoutCompleted, Checkout: &checkout}

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/premium/webhook", `{}`, "", "Stripe-Signature", "sig")
		s.Equal(http.StatusOK, w.Code)
	}
	s.Equal([]string{events.UserRegistered, events.SubscriptionActivated}, s.pub.types())
}
