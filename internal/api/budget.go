package api

import (
	"net/http"
	"strconv"
	"time"

	"budget_tracker/internal/domain"
	"budget_tracker/internal/service"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BudgetRequest creates a budget. Dates are RFC 3339; omitted dates mean one month from now.
type BudgetRequest struct {
	Category    string           `json:"category" binding:"required"`
	Limit       *decimal.Decimal `json:"limit" binding:"required"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	IsRecurring bool             `json:"is_recurring"`
}

// ListBudgetsHandler returns the caller's budgets with their progress
func ListBudgetsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var list []domain.BudgetProgress
		err := st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			var err error
			list, err = service.ListBudgets(tx, userID)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateBudgetHandler adds a budget for the caller
func CreateBudgetHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var req BudgetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := domain.NewBudget{Category: req.Category, Limit: *req.Limit, IsRecurring: req.IsRecurring}
		if req.StartDate != nil {
			in.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			in.EndDate = *req.EndDate
		}
		var b domain.Budget
		err := st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			user, err := currentUser(tx, userID)
			if err != nil {
				return err
			}
			b, err = service.CreateBudget(tx, user, in)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"budget_id": b.ID,
			"category":  b.Category,
			"limit":     b.Limit.String(),
		}).Info("Budget created")
		c.JSON(http.StatusCreated, gin.H{"message": "Budget created", "budget": b})
	}
}

// DeleteBudgetHandler removes one of the caller's budgets
func DeleteBudgetHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget id"})
			return
		}
		err = st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			return service.DeleteBudget(tx, userID, uint(id))
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
	}
}
