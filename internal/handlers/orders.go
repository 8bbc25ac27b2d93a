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

type OrdersHandler struct {
	service *orders.Service
}

func NewOrdersHandler(service *orders.Service) *OrdersHandler {
	return &OrdersHandler{service: service}
}

// Create godoc
// @Summary     Place an order
// @Description Creates a pending order for a completed reconstruction. Price is the fixed variant unit price times quantity, frozen at creation.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Order details"
// @Success     201 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	order, err := h.service.Create(c.Request.Context(), userID, req.ReconstructionJobID,
		models.EarPieceVariant(req.Variant), req.Quantity)
	if err != nil {
		if errors.Is(err, orders.ErrValidation) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid order",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create order",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order))
}

// Confirm godoc
// @Summary     Confirm an order with a shipping address
// @Description Attaches the address, moves the order to confirmed, and sets the delivery estimate 14 days out. All address fields are required.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       request body models.ConfirmOrderRequest true "Shipping address"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/confirm [post]
func (h *OrdersHandler) Confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	var req models.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing address fields",
			Message: err.Error(),
		})
		return
	}

	if !h.ownsOrder(c, orderID, userID) {
		return
	}

	order, err := h.service.Confirm(c.Request.Context(), orderID, models.ShippingAddress{
		Name:    req.Name,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	})
	if err != nil {
		h.workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

// Cancel godoc
// @Summary     Cancel an order
// @Description Cancels an order still in pending or confirmed. Cancellation is terminal.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/cancel [post]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	if !h.ownsOrder(c, orderID, userID) {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), orderID)
	if err != nil {
		h.workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

// Get godoc
// @Summary     Get one order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil || order.UserID != userID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

// List godoc
// @Summary     List the user's orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Router      /orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListForUser(c.Request.Context(), userID)
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

func (h *OrdersHandler) ownsOrder(c *gin.Context, orderID, userID uuid.UUID) bool {
	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil || order.UserID != userID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return false
	}
	return true
}

func (h *OrdersHandler) workflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid order input",
			Message: err.Error(),
		})
	case errors.Is(err, orders.ErrInvalidState):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "order state does not allow this",
			Message: err.Error(),
		})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "order operation failed",
			Message: err.Error(),
		})
	}
}

func orderResponse(order *models.Order) models.OrderResponse {
	resp := models.OrderResponse{
		ID:                  order.ID.String(),
		ReconstructionJobID: order.ReconstructionJob,
		Variant:             string(order.Variant),
		Quantity:            order.Quantity,
		Price:               order.Price.StringFixed(2),
		Status:              string(order.Status),
		ShippingAddress:     order.ShippingAddress,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	if order.TrackingNumber.Valid {
		resp.TrackingNumber = order.TrackingNumber.String
	}
	if order.EstimatedDelivery.Valid {
		t := order.EstimatedDelivery.Time
		resp.EstimatedDelivery = &t
	}
	return resp
}
