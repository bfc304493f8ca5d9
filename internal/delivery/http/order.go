package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dough-store/internal/service"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		newErrorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// GetOrderById
// @Summary GetOrderById
// @Description Returns an order with its items
// @ID get-order-by-id
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} models.Order
// @Failure 400,404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/orders/{id} [get]
func (h *Handler) GetOrderById(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderBySession
// @Summary GetOrderBySession
// @Description Returns the order created for a payment session, used by the success page
// @ID get-order-by-session
// @Produce json
// @Param session_id path string true "payment session id"
// @Success 200 {object} models.Order
// @Failure 400,404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/orders/session/{session_id} [get]
func (h *Handler) GetOrderBySession(c *gin.Context) {
	sid := strings.TrimSpace(c.Param("session_id"))
	if sid == "" {
		newErrorResponse(c, http.StatusBadRequest, "missing session id")
		return
	}
	order, err := h.svc.GetOrderBySession(sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetTracking
// @Summary GetTracking
// @Description Refreshes the carrier status of a shipped order and returns its tracking log
// @ID get-tracking
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} service.TrackingView
// @Failure 400,404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/orders/{id}/tracking [get]
func (h *Handler) GetTracking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.svc.Tracking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListOrders
// @Summary ListOrders
// @Description Lists orders newest first
// @ID list-orders
// @Security AdminToken
// @Produce json
// @Param limit query int false "page size" maximum(100)
// @Param offset query int false "offset"
// @Success 200 {object} listOrdersResponse
// @Failure 401 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/admin/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	orders, err := h.svc.ListOrders(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOrdersResponse{Data: orders})
}

// ChangeStatus
// @Summary ChangeStatus
// @Description Moves an order to shipped, delivered or cancelled
// @ID change-order-status
// @Security AdminToken
// @Accept json
// @Produce json
// @Param id path int true "order id"
// @Param input body service.StatusChange true "new status"
// @Success 200 {object} models.Order
// @Failure 400,404,409 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/admin/orders/{id}/status [put]
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.StatusChange
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
