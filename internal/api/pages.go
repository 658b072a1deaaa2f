package api

import (
	"net/http"

	"budget_tracker/internal/domain"
	"budget_tracker/internal/middleware"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IndexHandler renders the app for signed-in users and the login page otherwise
func IndexHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.HTML(http.StatusOK, "login.html", nil)
			return
		}
		var user domain.User
		err := st.WithTx(c.Request.Context(), func(tx *gorm.DB) error {
			var err error
			user, err = currentUser(tx, userID)
			return err
		})
		if err != nil {
			c.HTML(http.StatusOK, "login.html", nil)
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"User": user})
	}
}
