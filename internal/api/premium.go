package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"budget_tracker/internal/cache"
	"budget_tracker/internal/domain"
	"budget_tracker/internal/events"
	"budget_tracker/internal/payment"
	"budget_tracker/internal/service"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxWebhookBody = 64 << 10
	webhookSeenTTL = 24 * time.Hour
)

// baseURL is where the payment provider should send the browser back to
func baseURL(c *gin.Context, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// SubscribeHandler starts a premium checkout with the payment provider
func SubscribeHandler(st *store.Store, provider payment.Provider, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		var user domain.User
		err := st.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			user, err = currentUser(tx, userID)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		base := baseURL(c, publicURL)
		handle, err := service.BeginCheckout(ctx, provider, user,
			base+"/premium/success?session_id={CHECKOUT_SESSION_ID}",
			base+"/premium/cancel")
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Checkout creation failed")
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handle)
	}
}

// SuccessHandler is where the browser lands after paying. The redirect itself is
// not proof of payment: premium is only granted when the provider confirms the
// checkout is paid and belongs to the caller.
func SuccessHandler(st *store.Store, provider payment.Provider, rdb *redis.Client, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		checkout, verified, err := service.VerifyCheckout(ctx, provider, userID, c.Query("session_id"))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Checkout lookup failed, waiting for webhook")
		}
		if verified {
			var changed bool
			err := st.WithTx(ctx, func(tx *gorm.DB) error {
				var err error
				changed, err = service.ActivatePremium(tx, userID, checkout.CustomerID)
				return err
			})
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,
					"error":   err.Error(),
				}).Error("Premium activation failed")
			} else if changed {
				premiumChanged(ctx, rdb, pub, events.SubscriptionActivated, userID)
			}
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// CancelHandler is where the browser lands after abandoning checkout
func CancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	}
}

// WebhookHandler applies signed payment provider events
func WebhookHandler(st *store.Store, provider payment.Provider, rdb *redis.Client, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		evt, err := provider.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Rejected webhook")
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()

		// Providers deliver at least once
		seenKey := "webhook:event:" + evt.ID
		if evt.ID != "" {
			first, err := cache.Once(ctx, rdb, seenKey, webhookSeenTTL)
			if err == nil && !first {
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
		}

		var out service.EventOutcome
		err = st.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			out, err = service.HandleEvent(tx, evt)
			return err
		})
		if err != nil {
			if evt.ID != "" {
				_ = cache.Delete(context.WithoutCancel(ctx), rdb, seenKey) // Let the provider retry
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"event_id":  evt.ID,
			"type":      evt.Type,
			"user_id":   out.UserID,
			"activated": out.Activated,
			"cancelled": out.Cancelled,
		}).Info("Webhook processed")
		switch {
		case out.Activated:
			premiumChanged(ctx, rdb, pub, events.SubscriptionActivated, out.UserID)
		case out.Cancelled:
			premiumChanged(ctx, rdb, pub, events.SubscriptionCancelled, out.UserID)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// premiumChanged drops the cached summary, whose shape depends on the flag, and announces the change
func premiumChanged(ctx context.Context, rdb *redis.Client, pub events.Publisher, eventType string, userID uint) {
	if err := cache.InvalidateSummary(ctx, rdb, userID); err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to invalidate summary cache")
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    eventType,
	}).Info("Premium status changed")
	events.Emit(ctx, pub, events.New(eventType, userID, nil))
}
