package catalog

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts read-only catalog endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.SearchCategories)
	rg.GET("/categories/:id", h.GetCategory)
	rg.GET("/categories/:id/familiar", h.Familiar)
	rg.GET("/discounts", h.ListDiscounts)
}

// RegisterWorkerRoutes mounts catalog management for staff.
func (h *Handler) RegisterWorkerRoutes(rg *gin.RouterGroup) {
	cats := rg.Group("/admin/categories")
	{
		cats.GET("", h.SearchAllCategories)
		cats.POST("", h.CreateCategory)
		cats.GET("/:id", h.GetAnyCategory)
		cats.PUT("/:id", h.UpdateCategory)
		cats.DELETE("/:id", h.DeleteCategory)

		cats.GET("/:id/rooms", h.ListRooms)
		cats.POST("/:id/rooms", h.CreateRoom)

		cats.PUT("/:id/discounts/:discountId", h.AttachDiscount)
		cats.DELETE("/:id/discounts/:discountId", h.DetachDiscount)
		cats.PUT("/:id/tags/:tagId", h.AttachTag)
		cats.DELETE("/:id/tags/:tagId", h.DetachTag)

		cats.POST("/:id/photos", h.AddPhoto)
	}

	rg.PUT("/admin/rooms/:id", h.UpdateRoom)
	rg.DELETE("/admin/rooms/:id", h.DeleteRoom)

	rg.POST("/admin/discounts", h.CreateDiscount)
	rg.POST("/admin/discounts/:id/image", h.SetDiscountImage)
	rg.DELETE("/admin/discounts/:id", h.DeleteDiscount)

	rg.POST("/admin/tags", h.CreateTag)

	rg.PUT("/admin/photos/:id/position", h.ReorderPhoto)
	rg.DELETE("/admin/photos/:id", h.DeletePhoto)
}

/* ---------- CATEGORIES ---------- */

// SearchCategories godoc
// @Summary      Search room categories
// @Tags         Catalog
// @Produce      json
// @Param        name       query string false "Name contains"
// @Param        min_price  query number false "Minimum night price"
// @Param        max_price  query number false "Maximum night price"
// @Param        beds       query int    false "Minimum beds"
// @Param        free_from  query string false "YYYY-MM-DD"
// @Param        free_to    query string false "YYYY-MM-DD"
// @Param        sort       query string false "id, name, price, square, beds"
// @Param        desc       query bool   false "Descending order"
// @Param        page       query int    false "Page, from 1"
// @Param        page_size  query int    false "Page size"
// @Router       /categories [get]
func (h *Handler) SearchCategories(c *gin.Context) {
	h.search(c, false)
}

func (h *Handler) SearchAllCategories(c *gin.Context) {
	h.search(c, true)
}

func (h *Handler) search(c *gin.Context, includeHidden bool) {
	p, err := parseSearch(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	p.IncludeHidden = includeHidden

	res, err := h.service.Search(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func parseSearch(c *gin.Context) (SearchParams, error) {
	p := SearchParams{
		Name:   c.Query("name"),
		SortBy: c.Query("sort"),
		Desc:   c.Query("desc") == "true",
	}

	var err error
	if p.Page, err = queryInt(c, "page"); err != nil {
		return p, err
	}
	if p.PerPage, err = queryInt(c, "page_size"); err != nil {
		return p, err
	}
	if p.MinBeds, err = queryInt(c, "beds"); err != nil {
		return p, err
	}
	if p.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return p, err
	}
	if p.FreeFrom, err = queryDay(c, "free_from"); err != nil {
		return p, err
	}
	if p.FreeTo, err = queryDay(c, "free_to"); err != nil {
		return p, err
	}
	return p, nil
}

func (h *Handler) GetCategory(c *gin.Context) {
	h.get(c, false)
}

func (h *Handler) GetAnyCategory(c *gin.Context) {
	h.get(c, true)
}

func (h *Handler) get(c *gin.Context, includeHidden bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cat, err := h.service.GetCategory(c.Request.Context(), id, includeHidden)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

func (h *Handler) Familiar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cats, err := h.service.Familiar(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	cat, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

/* ---------- ROOMS ---------- */

func (h *Handler) ListRooms(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rooms, err := h.service.ListRooms(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	room, err := h.service.CreateRoom(c.Request.Context(), id, req.RoomNumber)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, room)
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	room, err := h.service.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRoom(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

/* ---------- DISCOUNTS & TAGS ---------- */

func (h *Handler) ListDiscounts(c *gin.Context) {
	ds, err := h.service.ListActiveDiscounts(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discounts": ds})
}

func (h *Handler) CreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	d, err := h.service.CreateDiscount(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

func (h *Handler) SetDiscountImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	d, err := h.service.SetDiscountImage(c.Request.Context(), id, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteDiscount(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) AttachDiscount(c *gin.Context) {
	h.link(c, "discountId", h.service.AttachDiscount)
}

func (h *Handler) DetachDiscount(c *gin.Context) {
	h.link(c, "discountId", h.service.DetachDiscount)
}

func (h *Handler) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	t, err := h.service.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) AttachTag(c *gin.Context) {
	h.link(c, "tagId", h.service.AttachTag)
}

func (h *Handler) DetachTag(c *gin.Context) {
	h.link(c, "tagId", h.service.DetachTag)
}

func (h *Handler) link(c *gin.Context, param string, fn func(ctx context.Context, categoryID, otherID int64) error) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	otherID, ok := parseID(c, param)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), categoryID, otherID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"category_id": categoryID, param: otherID})
}

/* ---------- PHOTOS ---------- */

func (h *Handler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	p, err := h.service.AddPhoto(c.Request.Context(), id, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) ReorderPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PhotoPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	photos, err := h.service.ReorderPhoto(c.Request.Context(), id, req.Position)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"photos": photos})
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePhoto(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

/* ---------- HELPERS ---------- */

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func formFile(c *gin.Context) (multipart.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file cannot be read")
		return nil, false
	}
	return f, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidField(key, "must be an integer")
	}
	return n, nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.InvalidField(key, "must be a number")
	}
	return &d, nil
}

func queryDay(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDay(raw)
	if err != nil {
		return nil, domain.InvalidField(key, "must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}
