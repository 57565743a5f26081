package sweeper

import (
	"net/http"

	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the manual trigger; rg must be restricted to workers.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/sweep", h.Sweep)
}

// Sweep godoc
// @Summary      Run housekeeping now
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/sweep [post]
func (h *Handler) Sweep(c *gin.Context) {
	report, err := h.service.RunOnce(c.Request.Context(), h.service.now())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}
