package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fitmyear-backend/internal/database"
	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/orders"
)

type AdminHandler struct {
	db      *database.Client
	service *orders.Service
}

func NewAdminHandler(db *database.Client, service *orders.Service) *AdminHandler {
	return &AdminHandler{db: db, service: service}
}

// Stats godoc
// @Summary     Aggregate upload and order counts
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AdminStatsResponse
// @Router      /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	totalUploads, totalOrders, pendingJobs, pendingOrders, revenue, err := h.db.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to gather stats",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.AdminStatsResponse{
		TotalUploads:  totalUploads,
		TotalOrders:   totalOrders,
		PendingJobs:   pendingJobs,
		PendingOrders: pendingOrders,
		Revenue:       revenue.StringFixed(2),
	})
}

// ListOrders godoc
// @Summary     List every order
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Router      /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	resp := models.OrderListResponse{Orders: make([]models.OrderResponse, 0, len(list))}
	for i := range list {
		resp.Orders = append(resp.Orders, orderResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ShipOrder godoc
// @Summary     Mark an order shipped
// @Description Attaches a tracking number and moves the order to shipped.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       request body models.ShipOrderRequest true "Tracking number"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/ship [post]
func (h *AdminHandler) ShipOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	var req models.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	order, err := h.service.Ship(c.Request.Context(), orderID, req.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrValidation):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid tracking number",
				Message: err.Error(),
			})
		case errors.Is(err, orders.ErrInvalidState):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "order state does not allow shipping",
				Message: err.Error(),
			})
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "ship failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}
