package api

import (
	"context"
	"errors"
	"net/http" // HTTP status codes

	"budget_tracker/internal/domain"
	"budget_tracker/internal/events"
	"budget_tracker/internal/middleware"
	"budget_tracker/internal/service"
	"budget_tracker/internal/session"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CredentialsRequest is the body of /register and /login
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"` // Email must be provided
	Secret   string `json:"secret"`                   // Plain secret, only ever hashed
	Password string `json:"password"`                 // Accepted as an alias of secret
}

func (r CredentialsRequest) secret() string {
	if r.Secret != "" {
		return r.Secret
	}
	return r.Password
}

// AuthResponse is returned when a session is established
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"` // Same value as the session cookie, for Bearer clients
}

func setSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, maxAge, "/", "", secure, true)
}

// RegisterHandler creates an account and logs it in
func RegisterHandler(st *store.Store, sessions *session.Manager, pub events.Publisher, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		var user domain.User
		var sess session.Session
		err := st.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			if user, err = service.Register(tx, req.Email, req.secret()); err != nil {
				return err
			}
			// Issued inside the transaction so a Redis failure rolls the account back
			sess, err = sessions.Create(ctx, user.ID)
			return err
		})
		if err != nil {
			if sess.ID != "" {
				_ = sessions.Revoke(context.WithoutCancel(ctx), sess.ID)
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"type":    "register",
		}).Info("User registered")
		events.Emit(ctx, pub, events.New(events.UserRegistered, user.ID, gin.H{"email": user.Email}))

		setSessionCookie(c, sess.Token, int(sessions.TTL().Seconds()), secureCookie)
		c.JSON(http.StatusOK, AuthResponse{Message: "Registration successful", Token: sess.Token})
	}
}

// LoginHandler authenticates a user and starts a session
func LoginHandler(st *store.Store, sessions *session.Manager, guard *service.LoginGuard, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		if guard != nil {
			if err := guard.Allow(ctx, req.Email); err != nil {
				respondError(c, err)
				return
			}
		}
		var user domain.User
		err := st.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			user, err = service.Authenticate(tx, req.Email, req.secret())
			return err
		})
		if err != nil {
			if guard != nil && errors.Is(err, domain.ErrInvalidCredentials) {
				if ferr := guard.Fail(ctx, req.Email); ferr != nil {
					logrus.WithField("error", ferr.Error()).Error("Failed to record login failure")
				}
			}
			respondError(c, err)
			return
		}
		if guard != nil {
			_ = guard.Reset(ctx, req.Email)
		}
		sess, err := sessions.Create(ctx, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		setSessionCookie(c, sess.Token, int(sessions.TTL().Seconds()), secureCookie)
		c.JSON(http.StatusOK, AuthResponse{Message: "Login successful", Token: sess.Token})
	}
}

// LogoutHandler revokes the caller's session, if any, and clears the cookie
func LogoutHandler(sessions *session.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetString(middleware.SessionIDKey); id != "" {
			if err := sessions.Revoke(c.Request.Context(), id); err != nil {
				respondError(c, err)
				return
			}
		}
		setSessionCookie(c, "", -1, secureCookie)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// MeHandler returns the caller's profile
func MeHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		var user domain.User
		err := st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			var err error
			user, err = currentUser(tx, userID)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
