package api

import (
	"context"
	"net/http"
	"time"

	"budget_tracker/internal/cache"
	"budget_tracker/internal/domain"
	"budget_tracker/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *APISuite) TestAddAndListTransactions() {
	token := s.signup("led@example.com")
	s.addTx(token, 1000, "salary", "income")
	s.addTx(token, 42.5, "food", "expense")

	w := s.do(http.MethodGet, "/api/transactions", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []TransactionResponse
	s.decode(w, &list)
	s.Require().Len(list, 2)

	// Most recent first, even within the same second
	s.Equal("food", list[0].Category)
	s.Equal(domain.TransactionTypeExpense, list[0].Type)
	s.True(decimal.RequireFromString("42.5").Equal(list[0].Amount), list[0].Amount.String())
	s.Equal("salary", list[1].Category)
	_, err := time.Parse(DateLayout, list[0].Date)
	s.NoError(err, list[0].Date)

	s.Contains(s.pub.types(), events.TransactionCreated)
}

func (s *APISuite) TestAddTransactionInvalidType() {
	token := s.signup("bad@example.com")
	w := s.do(http.MethodPost, "/api/transactions", gin.H{"amount": 10, "category": "x", "type": "transfer"}, token)
	s.Equal(http.StatusBadRequest, w.Code)

	var count int64
	s.Require().NoError(s.db.Model(&domain.Transaction{}).Count(&count).Error)
	s.Zero(count)
}

func (s *APISuite) TestAddTransactionValidation() {
	token := s.signup("val@example.com")
	cases := []gin.H{
		{"category": "food", "type": "expense"},
		{"amount": 5, "type": "expense"},
		{"amount": -5, "category": "food", "type": "expense"},
		{"amount": 0, "category": "food", "type": "expense"},
	}
	for _, body := range cases {
		w := s.do(http.MethodPost, "/api/transactions", body, token)
		s.Equal(http.StatusBadRequest, w.Code, body)
	}
}

func (s *APISuite) TestTransactionsAreScopedToCaller() {
	a := s.signup("a@example.com")
	b := s.signup("b@example.com")
	s.addTx(a, 10, "food", "expense")

	w := s.do(http.MethodGet, "/api/transactions", nil, b)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *APISuite) TestSummaryFreeTier() {
	token := s.signup("free@example.com")
	s.addTx(token, 1000, "salary", "income")
	s.addTx(token, 250, "rent", "expense")

	w := s.do(http.MethodGet, "/api/summary", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"income":1000,"expenses":250,"balance":750}`, w.Body.String())
}

func (s *APISuite) TestSummaryEmptyLedger() {
	token := s.signup("empty@example.com")
	w := s.do(http.MethodGet, "/api/summary", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"income":0,"expenses":0,"balance":0}`, w.Body.String())
}

func (s *APISuite) TestSummaryCacheInvalidatedOnAdd() {
	token := s.signup("cache@example.com")
	s.addTx(token, 100, "salary", "income")

	w := s.do(http.MethodGet, "/api/summary", nil, token)
	s.JSONEq(`{"income":100,"expenses":0,"balance":100}`, w.Body.String())

	s.addTx(token, 40, "food", "expense")
	w = s.do(http.MethodGet, "/api/summary", nil, token)
	s.JSONEq(`{"income":100,"expenses":40,"balance":60}`, w.Body.String())
}

func (s *APISuite) TestSummaryComputedBeforeAddIsNotServedAfter() {
	token := s.signup("race@example.com")
	userID := s.userID("race@example.com")
	s.addTx(token, 100, "salary", "income")

	// A summary request takes the generation and reads the ledger...
	ctx := context.Background()
	version, err := cache.SummaryVersion(ctx, s.rdb, userID)
	s.Require().NoError(err)
	stale := domain.Summary{Income: decimal.NewFromInt(100), Expenses: decimal.Zero, Balance: decimal.NewFromInt(100)}

	// ...a transaction commits meanwhile...
	s.addTx(token, 40, "food", "expense")

	// ...and the first request caches what it read
	s.Require().NoError(cache.Set(ctx, s.rdb, cache.SummaryKey(userID, version), stale, cache.SummaryTTL))

	w := s.do(http.MethodGet, "/api/summary", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"income":100,"expenses":40,"balance":60}`, w.Body.String())
}
