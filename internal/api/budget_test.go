package api

import (
	"fmt"
	"net/http"

	"budget_tracker/internal/domain"

	"github.com/gin-gonic/gin"
)

func (s *APISuite) TestBudgetLifecycle() {
	token := s.signup("plan@example.com")
	s.addTx(token, 30, "food", "expense")

	w := s.do(http.MethodPost, "/api/budgets", gin.H{"category": "food", "limit": 120}, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Message string        `json:"message"`
		Budget  domain.Budget `json:"budget"`
	}
	s.decode(w, &created)
	s.NotZero(created.Budget.ID)

	w = s.do(http.MethodGet, "/api/budgets", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []domain.BudgetProgress
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal("food", list[0].Category)

	path := fmt.Sprintf("/api/budgets/%d", created.Budget.ID)
	other := s.signup("intruder@example.com")
	w = s.do(http.MethodDelete, path, nil, other)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, path, nil, token)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, path, nil, token)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestBudgetFreeTierLimit() {
	token := s.signup("limit@example.com")
	for _, cat := range []string{"food", "rent"} {
		w := s.do(http.MethodPost, "/api/budgets", gin.H{"category": cat, "limit": 100}, token)
		s.Require().Equal(http.StatusCreated, w.Code)
	}
	w := s.do(http.MethodPost, "/api/budgets", gin.H{"category": "fun", "limit": 100}, token)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APISuite) TestBudgetBadRequests() {
	token := s.signup("badbudget@example.com")
	w := s.do(http.MethodPost, "/api/budgets", gin.H{"category": "food"}, token)
	s.Equal(http.StatusBadRequest, w.Code)
	w = s.do(http.MethodDelete, "/api/budgets/abc", nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}
