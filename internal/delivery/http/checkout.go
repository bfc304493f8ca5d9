package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dough-store/internal/models"
	"dough-store/internal/service"
)

// CreateCheckoutSession
// @Summary CreateCheckoutSession
// @Description Validates the cart, opens a hosted payment session and records a pending order
// @ID create-checkout-session
// @Accept json
// @Produce json
// @Param input body service.Cart true "cart"
// @Success 200 {object} service.CheckoutSession
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/checkout/session [post]
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var cart service.Cart
	if err := c.ShouldBindJSON(&cart); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.CreateSession(c.Request.Context(), cart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// StripeWebhook
// @Summary StripeWebhook
// @Description Receives signed payment processor events
// @ID stripe-webhook
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "event signature"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/stripe/webhook [post]
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// ShippingQuote
// @Summary ShippingQuote
// @Description Prices delivery for a postal code, delivery type and quantity
// @ID shipping-quote
// @Produce json
// @Param postal_code query string true "destination postal code"
// @Param delivery_type query string false "pickup-point or home" Enums(pickup-point, home)
// @Param quantity query int false "units" minimum(1)
// @Success 200 {object} shipping.Quote
// @Failure 400 {object} errorResponse
// @Router /api/shipping/quote [get]
func (h *Handler) ShippingQuote(c *gin.Context) {
	qty := 1
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "invalid quantity")
			return
		}
		qty = n
	}

	q, err := h.svc.Quote(c.Request.Context(), c.Query("postal_code"), models.DeliveryType(c.Query("delivery_type")), qty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
