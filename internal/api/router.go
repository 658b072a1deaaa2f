package api

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"budget_tracker/internal/events"
	"budget_tracker/internal/middleware"
	"budget_tracker/internal/payment"
	"budget_tracker/internal/service"
	"budget_tracker/internal/session"
	"budget_tracker/internal/store"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Store        *store.Store
	Redis        *redis.Client
	Sessions     *session.Manager
	Payments     payment.Provider
	Events       events.Publisher
	LoginGuard   *service.LoginGuard
	PublicURL    string // Base URL for payment redirects, request host when empty
	SecureCookie bool   // Mark the session cookie Secure
}

// NewRouter registers every route
func NewRouter(d Deps) *gin.Engine {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	r := gin.Default() // Gin router instance
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	requireSession := middleware.SessionAuthMiddleware(d.Sessions)
	optionalSession := middleware.OptionalSessionMiddleware(d.Sessions)

	r.GET("/healthz", HealthHandler(d.Store, d.Redis))
	r.GET("/", optionalSession, IndexHandler(d.Store))

	// Auth routes
	r.POST("/register", RegisterHandler(d.Store, d.Sessions, d.Events, d.SecureCookie))
	r.POST("/login", LoginHandler(d.Store, d.Sessions, d.LoginGuard, d.SecureCookie))
	r.GET("/logout", optionalSession, LogoutHandler(d.Sessions, d.SecureCookie)) // Idempotent, so no session is required

	// Premium routes
	r.POST("/premium/webhook", WebhookHandler(d.Store, d.Payments, d.Redis, d.Events))
	premium := r.Group("/premium", requireSession)
	premium.POST("/subscribe", SubscribeHandler(d.Store, d.Payments, d.PublicURL))
	premium.GET("/success", SuccessHandler(d.Store, d.Payments, d.Redis, d.Events))
	premium.GET("/cancel", CancelHandler())

	// JSON API (session required)
	apiGroup := r.Group("/api", requireSession)
	apiGroup.GET("/me", MeHandler(d.Store))
	apiGroup.GET("/transactions", ListTransactionsHandler(d.Store))
	apiGroup.POST("/transactions", AddTransactionHandler(d.Store, d.Redis, d.Events))
	apiGroup.GET("/summary", SummaryHandler(d.Store, d.Redis))
	apiGroup.GET("/budgets", ListBudgetsHandler(d.Store))
	apiGroup.POST("/budgets", CreateBudgetHandler(d.Store))
	apiGroup.DELETE("/budgets/:id", DeleteBudgetHandler(d.Store))

	return r
}

// HealthHandler reports whether the database and Redis are reachable
func HealthHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	}
}
