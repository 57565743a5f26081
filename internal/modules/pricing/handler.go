package pricing

import (
	"net/http"
	"strconv"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the quote endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories/:id/quote", h.Quote)
}

// RegisterWorkerRoutes mounts booking changes reserved for staff.
func (h *Handler) RegisterWorkerRoutes(rg *gin.RouterGroup) {
	rg.PUT("/bookings/:id", h.Reschedule)
}

// Quote godoc
// @Summary      Price a stay
// @Tags         Pricing
// @Produce      json
// @Param        id   path  int    true "Category ID"
// @Param        from query string true "Check-in, YYYY-MM-DD"
// @Param        to   query string true "Check-out, YYYY-MM-DD"
// @Router       /categories/{id}/quote [get]
func (h *Handler) Quote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	from, err := domain.ParseDay(c.Query("from"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	to, err := domain.ParseDay(c.Query("to"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	q, err := h.service.Quote(c.Request.Context(), id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
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

	b, err := h.service.Reschedule(c.Request.Context(), id, start, end, req.CategoryID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
