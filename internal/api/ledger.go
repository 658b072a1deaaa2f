package api

import (
	"net/http" // HTTP status codes

	"budget_tracker/internal/cache"
	"budget_tracker/internal/domain"
	"budget_tracker/internal/events"
	"budget_tracker/internal/service"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"
)

// DateLayout is how ledger timestamps are rendered (always UTC)
const DateLayout = "2006-01-02 15:04:05"

// TransactionRequest represents a new ledger entry
type TransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`   // Positive amount
	Category    string           `json:"category" binding:"required"` // Free-form category
	Type        string           `json:"type"`                        // income or expense
	Description string           `json:"description"`                 // Optional
}

// TransactionResponse is one ledger entry as returned by the API
type TransactionResponse struct {
	ID          uint                   `json:"id"`
	Amount      decimal.Decimal        `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	Type        domain.TransactionType `json:"type"`
}

func toTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.UTC().Format(DateLayout),
		Type:        t.Type,
	}
}

// ListTransactionsHandler returns the caller's ledger, most recent first
func ListTransactionsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var txs []domain.Transaction
		err := st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			var err error
			txs, err = service.ListTransactions(tx, userID)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]TransactionResponse, len(txs))
		for i, t := range txs {
			resp[i] = toTransactionResponse(t)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// AddTransactionHandler appends an entry to the caller's ledger
func AddTransactionHandler(st *store.Store, rdb *redis.Client, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var req TransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		var t domain.Transaction
		err := st.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			t, err = service.AddTransaction(tx, userID, domain.NewTransaction{
				Amount:      *req.Amount,
				Category:    req.Category,
				Type:        domain.TransactionType(req.Type),
				Description: req.Description,
			})
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": t.ID,
			"amount":         t.Amount.String(),
			"type":           t.Type,
			"category":       t.Category,
		}).Info("Transaction added")
		// The cached summary no longer matches the ledger
		if err := cache.InvalidateSummary(ctx, rdb, userID); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to invalidate summary cache")
		}
		events.Emit(ctx, pub, events.New(events.TransactionCreated, userID, toTransactionResponse(t)))
		c.JSON(http.StatusOK, gin.H{"message": "Transaction added successfully"})
	}
}

// SummaryHandler returns income, expenses and balance, plus premium features for premium users
func SummaryHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		// The generation is read before the ledger so a summary computed while a
		// transaction commits is cached under a key that is already stale
		version, verr := cache.SummaryVersion(ctx, rdb, userID)
		cacheKey := cache.SummaryKey(userID, version)
		var summary domain.Summary
		if verr == nil {
			if found, err := cache.Get(ctx, rdb, cacheKey, &summary); err == nil && found {
				c.JSON(http.StatusOK, summary)
				return
			}
		}
		err := st.WithTx(ctx, func(tx *gorm.DB) error {
			user, err := currentUser(tx, userID)
			if err != nil {
				return err
			}
			summary, err = service.Summarize(tx, user)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if verr == nil {
			_ = cache.Set(ctx, rdb, cacheKey, summary, cache.SummaryTTL)
		}
		c.JSON(http.StatusOK, summary)
	}
}
