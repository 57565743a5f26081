package cart

import (
	"net/http"
	"strconv"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/carts")
	{
		carts.POST("", h.CreateCart)
		carts.GET("/:uuid", h.GetCart)
		carts.POST("/:uuid/bookings", h.AddBooking)
		carts.DELETE("/:uuid/bookings/:id", h.RemoveBooking)
		carts.POST("/:uuid/confirm", h.ConfirmCart)
	}
}

// RegisterWorkerRoutes mounts the checkout variant that may record full payment.
func (h *Handler) RegisterWorkerRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/carts/:uuid/confirm", h.ConfirmCartByWorker)
}

// CreateCart godoc
// @Summary      Open a cart
// @Tags         Carts
// @Produce      json
// @Router       /carts [post]
func (h *Handler) CreateCart(c *gin.Context) {
	cart, err := h.service.CreateCart(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cart)
}

func (h *Handler) GetCart(c *gin.Context) {
	id, ok := parseUUID(c)
	if !ok {
		return
	}
	view, err := h.service.GetByUUID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// AddBooking godoc
// @Summary      Add a stay to the cart
// @Description  Picks a free room of the category for [start, end) and prices it
// @Tags         Carts
// @Accept       json
// @Produce      json
// @Param        uuid path string            true "Cart UUID"
// @Param        body body AddBookingRequest true "Category and dates"
// @Failure      404  {object} map[string]interface{} "Cart not found or no room available"
// @Router       /carts/{uuid}/bookings [post]
func (h *Handler) AddBooking(c *gin.Context) {
	id, ok := parseUUID(c)
	if !ok {
		return
	}
	var req AddBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	start, err := domain.ParseDay(req.Start)
	if err != nil {
		response.FromError(c, err)
		return
	}
	end, err := domain.ParseDay(req.End)
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.AddBooking(c.Request.Context(), id, req.CategoryID, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) RemoveBooking(c *gin.Context) {
	id, ok := parseUUID(c)
	if !ok {
		return
	}
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}
	if err := h.service.RemoveBooking(c.Request.Context(), id, bookingID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Booking removed"})
}

// ConfirmCart godoc
// @Summary      Confirm a cart into an order
// @Tags         Carts
// @Accept       json
// @Produce      json
// @Param        uuid path string         true "Cart UUID"
// @Param        body body ConfirmRequest true "Client email"
// @Router       /carts/{uuid}/confirm [post]
func (h *Handler) ConfirmCart(c *gin.Context) {
	id, ok := parseUUID(c)
	if !ok {
		return
	}
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	h.confirm(c, id, req.Email, false, req.Comment)
}

// ConfirmCartByWorker godoc
// @Summary      Confirm a cart at the desk, optionally fully paid
// @Tags         Carts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uuid path string               true "Cart UUID"
// @Param        body body WorkerConfirmRequest true "Client email and payment mode"
// @Router       /admin/carts/{uuid}/confirm [post]
func (h *Handler) ConfirmCartByWorker(c *gin.Context) {
	id, ok := parseUUID(c)
	if !ok {
		return
	}
	var req WorkerConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	h.confirm(c, id, req.Email, req.IsFullyPaid, req.Comment)
}

func (h *Handler) confirm(c *gin.Context, id uuid.UUID, email string, fullyPaid bool, comment string) {
	order, err := h.service.ConfirmCart(c.Request.Context(), id, email, fullyPaid, comment)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

func parseUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart ID")
		return uuid.Nil, false
	}
	return id, true
}
