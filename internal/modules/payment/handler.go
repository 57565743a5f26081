package payment

import (
	"net/http"
	"strconv"

	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts order payment endpoints. The group is expected to be
// restricted to workers.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:id", h.GetOrder)
	rg.PUT("/orders/:id/paid", h.SetPaid)
	rg.POST("/orders/:id/pay", h.MarkPaid)
	rg.POST("/orders/:id/refund", h.Refund)
	rg.POST("/orders/:id/cancel", h.CancelOrder)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
}

// RegisterClientRoutes mounts what an authenticated client may see.
func (h *Handler) RegisterClientRoutes(rg *gin.RouterGroup) {
	rg.GET("/me/orders", h.MyOrders)
}

func (h *Handler) MyOrders(c *gin.Context) {
	clientID := c.GetInt64("user_id")
	if clientID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}
	views, err := h.service.ClientOrders(c.Request.Context(), clientID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": views})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SetPaid godoc
// @Summary      Record the amount paid for an order
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path int           true "Order ID"
// @Param        body body AmountRequest true "Total amount received"
// @Router       /orders/{id}/paid [put]
func (h *Handler) SetPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	order, err := h.service.SetPaid(c.Request.Context(), id, *req.Amount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// MarkPaid godoc
// @Summary      Mark an order as fully paid
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Order ID"
// @Router       /orders/{id}/pay [post]
func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *Handler) Refund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	order, err := h.service.Refund(c.Request.Context(), id, *req.Amount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.service.CancelOrder(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, CancelBookingResponse{BookingID: id, Deleted: deleted})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
