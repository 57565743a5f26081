package availability

import (
	"net/http"
	"strconv"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	resolver *Resolver
	now      func() time.Time
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories/:id/busy-dates", h.BusyDates)
}

// BusyDates godoc
// @Summary      Busy dates of a category
// @Description  Days in [from, to] on which no room of the category can be booked
// @Tags         Availability
// @Produce      json
// @Param        id   path  int    true  "Category ID"
// @Param        from query string true  "YYYY-MM-DD"
// @Param        to   query string true  "YYYY-MM-DD"
// @Router       /categories/{id}/busy-dates [get]
func (h *Handler) BusyDates(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
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

	days, err := h.resolver.BusyDates(c.Request.Context(), categoryID, from, to, h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(domain.DateLayout)
	}
	response.Success(c, http.StatusOK, BusyDatesResponse{
		CategoryID: categoryID,
		From:       from.Format(domain.DateLayout),
		To:         to.Format(domain.DateLayout),
		Dates:      out,
	})
}
