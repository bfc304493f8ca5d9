package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "dough-store/docs"
	"dough-store/internal/models"
	"dough-store/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Service interface {
	service.Checkout
	service.Webhook
	service.Order
	service.Shipping
}

type Config struct {
	AdminToken  string
	CORSOrigins []string
	// Health reports backing store status for /healthz; nil means always up.
	Health func() map[string]string
}

type Handler struct {
	svc Service
	cfg Config
}

func NewHandler(s Service, cfg Config) *Handler {
	return &Handler{svc: s, cfg: cfg}
}

type listOrdersResponse struct {
	Data []models.Order `json:"data"`
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range h.cfg.CORSOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(h.cfg.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = h.cfg.CORSOrigins
	return cfg
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(), cors.New(h.corsConfig()))

	api := router.Group("/api")
	{
		api.POST("/checkout/session", h.CreateCheckoutSession)
		api.POST("/stripe/webhook", h.StripeWebhook)
		api.GET("/shipping/quote", h.ShippingQuote)

		api.GET("/orders/session/:session_id", h.GetOrderBySession)
		api.GET("/orders/:id", h.GetOrderById)
		api.GET("/orders/:id/tracking", h.GetTracking)

		admin := api.Group("/admin", AdminAuth(h.cfg.AdminToken))
		{
			admin.GET("/orders", h.ListOrders)
			admin.PUT("/orders/:id/status", h.ChangeStatus)
		}
	}

	router.GET("/healthz", h.Healthz)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "page not found"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// Healthz
// @Summary Healthz
// @Description Reports database connectivity and pool statistics
// @ID healthz
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.cfg.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
		return
	}
	stats := h.cfg.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}
