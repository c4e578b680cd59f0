// Package api is the HTTP surface of the point-of-sale service.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pandapos/internal/auth"
	"pandapos/internal/live"
	"pandapos/internal/models"
	"pandapos/internal/monitoring"
	"pandapos/internal/ordering"
	"pandapos/internal/promo"
	"pandapos/internal/reports"
	"pandapos/internal/store"
	"pandapos/internal/voice"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// API represents the main API handler for the restaurant
type API struct {
	Router *gin.Engine

	store    *store.Store
	sessions *ordering.Manager
	auth     *auth.Service
	tokens   *auth.Tokens
	reports  *reports.Service
	promos   *promo.Trigger
	hub      *live.Hub
	monitor  *monitoring.Monitor
	metrics  *monitoring.Collector
	logger   *slog.Logger
	loc      *time.Location
}

// Deps are the services the API serves
type Deps struct {
	Store    *store.Store
	Sessions *ordering.Manager
	Auth     *auth.Service
	Tokens   *auth.Tokens
	Reports  *reports.Service
	Promos   *promo.Trigger
	Hub      *live.Hub
	Monitor  *monitoring.Monitor
	Metrics  *monitoring.Collector
	Logger   *slog.Logger
}

// Options tune the router
type Options struct {
	AllowedOrigins []string
	AccessLog      bool
	Location       *time.Location
}

// New creates the API and registers its routes
func New(opts Options, deps Deps) *API {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(corsMiddleware(opts.AllowedOrigins))

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	a := &API{
		Router:   router,
		store:    deps.Store,
		sessions: deps.Sessions,
		auth:     deps.Auth,
		tokens:   deps.Tokens,
		reports:  deps.Reports,
		promos:   deps.Promos,
		hub:      deps.Hub,
		monitor:  deps.Monitor,
		metrics:  deps.Metrics,
		logger:   logger,
		loc:      loc,
	}
	a.setupRoutes()
	return a
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// setupRoutes configures all API endpoints
func (a *API) setupRoutes() {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "PandaPOS API is running"})
	})
	if a.hub != nil {
		a.Router.GET("/ws/orders", a.hub.ServeWS)
	}

	v1 := a.Router.Group("/api/v1")
	{
		v1.POST("/auth/login", a.Login)
		v1.GET("/menu", a.ListMenu)

		// Ordering sessions, used by the self-service screens, the voice
		// client and the cashier terminal
		v1.POST("/sessions", a.OpenSession)
		v1.GET("/sessions/:id", a.GetSession)
		v1.DELETE("/sessions/:id", a.CloseSession)
		v1.POST("/sessions/:id/meal", a.StartMeal)
		v1.DELETE("/sessions/:id/meal", a.DiscardMeal)
		v1.POST("/sessions/:id/meal/items", a.SelectMealItem)
		v1.DELETE("/sessions/:id/meal/slots/:slot", a.ClearMealSlot)
		v1.POST("/sessions/:id/meal/complete", a.CompleteMeal)
		v1.POST("/sessions/:id/items", a.AddItem)
		v1.DELETE("/sessions/:id/items/:index", a.RemoveItem)
		v1.POST("/sessions/:id/promo", a.ApplyPromo)
		v1.POST("/sessions/:id/checkout", a.Checkout)
		v1.POST("/sessions/:id/voice", a.Voice)
		v1.GET("/sessions/:id/voice/history", a.VoiceHistory)
	}

	staff := v1.Group("", auth.AuthMiddleware(a.tokens))
	{
		staff.GET("/orders", a.ListOrders)
		staff.GET("/orders/:id", a.GetOrder)
		staff.GET("/status", a.Status)
	}

	manager := staff.Group("", auth.RequireRole(models.RoleManager))
	{
		manager.DELETE("/status", a.ResetStatus)

		manager.GET("/menu/all", a.ListAllMenu)
		manager.POST("/menu", a.CreateMenuItem)
		manager.PUT("/menu/:id", a.UpdateMenuItem)
		manager.DELETE("/menu/:id", a.DeleteMenuItem)

		manager.GET("/inventory", a.ListInventory)
		manager.POST("/inventory", a.CreateInventoryItem)
		manager.GET("/inventory/:id", a.GetInventoryItem)
		manager.PUT("/inventory/:id", a.UpdateInventoryItem)
		manager.DELETE("/inventory/:id", a.DeleteInventoryItem)

		manager.GET("/employees", a.ListEmployees)
		manager.POST("/employees", a.CreateEmployee)
		manager.GET("/employees/:id", a.GetEmployee)
		manager.PUT("/employees/:id", a.UpdateEmployee)
		manager.DELETE("/employees/:id", a.DeactivateEmployee)

		manager.GET("/reports/sales", a.SalesReport)
		manager.GET("/reports/hourly", a.HourlyReport)
		manager.GET("/reports/daily", a.DailyReport)
		manager.GET("/reports/restock", a.RestockReport)
		manager.GET("/reports/usage", a.UsageReport)

		manager.GET("/promotions", a.ListPromotions)
		manager.POST("/promotions", a.CreatePromotion)
		manager.POST("/promotions/:code/send", a.SendPromotion)
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var notFound *voice.ItemNotFoundError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ordering.ErrSessionNotFound),
		errors.Is(err, promo.ErrUnknownPromotion),
		gorm.IsRecordNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, ordering.ErrNoActiveMeal),
		errors.Is(err, ordering.ErrMealIncomplete),
		errors.Is(err, ordering.ErrMealInProgress),
		errors.Is(err, ordering.ErrNoOpenSlot),
		errors.Is(err, ordering.ErrEmptyOrder),
		errors.Is(err, ordering.ErrNoSuchLine):
		return http.StatusConflict
	case errors.As(err, &notFound),
		errors.Is(err, voice.ErrNotUnderstood),
		errors.Is(err, ordering.ErrInvalidPromo),
		errors.Is(err, ordering.ErrNotMealItem),
		errors.Is(err, ordering.ErrItemUnavailable),
		errors.Is(err, promo.ErrPromotionInactive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error with its mapped status. Internal errors are
// logged and hidden from the client.
func (a *API) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
