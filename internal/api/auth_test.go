package api

import (
	"net/http"
	"strings"
	"time"

	"budget_tracker/internal/events"
	"budget_tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (s *APISuite) TestRegisterSetsSessionCookie() {
	w := s.do(http.MethodPost, "/register", gin.H{"email": "ann@example.com", "secret": "correct-horse"}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp AuthResponse
	s.decode(w, &resp)
	s.Equal("Registration successful", resp.Message)

	cookie := w.Header().Get("Set-Cookie")
	s.True(strings.HasPrefix(cookie, middleware.CookieName+"="+resp.Token), cookie)
	s.Contains(cookie, "HttpOnly")
	s.Equal([]string{events.UserRegistered}, s.pub.types())

	w = s.do(http.MethodGet, "/api/me", nil, resp.Token)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"email":"ann@example.com"`)
	s.NotContains(w.Body.String(), "password")
}

func (s *APISuite) TestRegisterDuplicateEmail() {
	s.signup("dup@example.com")
	w := s.do(http.MethodPost, "/register", gin.H{"email": "dup@example.com", "secret": "another-secret"}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"email already registered"}`, w.Body.String())
}

func (s *APISuite) TestRegisterRejectsBadInput() {
	w := s.do(http.MethodPost, "/register", `{"email":`, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/register", gin.H{"email": "short@example.com", "secret": "abc"}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestRegisterAcceptsPasswordAlias() {
	w := s.do(http.MethodPost, "/register", gin.H{"email": "alias@example.com", "password": "correct-horse"}, "")
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *APISuite) TestLogin() {
	s.signup("bob@example.com")

	w := s.do(http.MethodPost, "/login", gin.H{"email": "bob@example.com", "secret": "correct-horse"}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp AuthResponse
	s.decode(w, &resp)
	s.Equal("Login successful", resp.Message)

	w = s.do(http.MethodGet, "/api/me", nil, resp.Token)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestLoginWrongSecretAndUnknownEmailLookAlike() {
	s.signup("carol@example.com")

	wrong := s.do(http.MethodPost, "/login", gin.H{"email": "carol@example.com", "secret": "wrong-horse"}, "")
	unknown := s.do(http.MethodPost, "/login", gin.H{"email": "nobody@example.com", "secret": "correct-horse"}, "")
	s.Equal(http.StatusUnauthorized, wrong.Code)
	s.Equal(http.StatusUnauthorized, unknown.Code)
	s.Equal(wrong.Body.String(), unknown.Body.String())
}

func (s *APISuite) TestLoginThrottled() {
	s.signup("dave@example.com")
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/login", gin.H{"email": "dave@example.com", "secret": "wrong-horse"}, "")
		s.Require().Equal(http.StatusUnauthorized, w.Code)
	}
	w := s.do(http.MethodPost, "/login", gin.H{"email": "dave@example.com", "secret": "correct-horse"}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)

	s.mr.FastForward(16 * time.Minute)
	w = s.do(http.MethodPost, "/login", gin.H{"email": "dave@example.com", "secret": "correct-horse"}, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestLoginThrottleCoversPaddedEmails() {
	s.signup("pad@example.com")
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/login", gin.H{"email": "pad@example.com", "secret": "wrong-horse"}, "")
		s.Require().Equal(http.StatusUnauthorized, w.Code)
	}
	for _, email := range []string{" pad@example.com", "  pad@example.com", "pad@example.com ", "\tpad@example.com"} {
		w := s.do(http.MethodPost, "/login", gin.H{"email": email, "secret": "wrong-horse"}, "")
		s.Equal(http.StatusTooManyRequests, w.Code, "%q", email)
	}
	w := s.do(http.MethodPost, "/login", gin.H{"email": " pad@example.com", "secret": "correct-horse"}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)
}

func (s *APISuite) TestLogoutRevokesSession() {
	token := s.signup("erin@example.com")

	w := s.do(http.MethodGet, "/logout", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Logged out successfully"}`, w.Body.String())
	s.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0")

	w = s.do(http.MethodGet, "/api/me", nil, token)
	s.Equal(http.StatusUnauthorized, w.Code)

	// Logging out again, or without any session, is fine
	w = s.do(http.MethodGet, "/logout", nil, token)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/logout", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestProtectedRoutesNeedSession() {
	for _, path := range []string{"/api/me", "/api/transactions", "/api/summary", "/api/budgets"} {
		w := s.do(http.MethodGet, path, nil, "")
		s.Equal(http.StatusUnauthorized, w.Code, path)
		s.JSONEq(`{"error":"authentication required"}`, w.Body.String(), path)
	}
}
