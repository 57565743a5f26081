package auth

import (
	"errors"
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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.ClientLogin)
		authGroup.POST("/worker/login", h.WorkerLogin)
	}
}

// ClientLogin godoc
// @Summary      Client login
// @Description  Exchanges a client's email and password for a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Failure      401 {object} map[string]interface{} "Wrong email or password"
// @Router       /auth/login [post]
func (h *Handler) ClientLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	res, err := h.service.ClientLogin(c.Request.Context(), req)
	if err != nil {
		h.loginError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// WorkerLogin godoc
// @Summary      Worker login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Router       /auth/worker/login [post]
func (h *Handler) WorkerLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	res, err := h.service.WorkerLogin(c.Request.Context(), req)
	if err != nil {
		h.loginError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) loginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrWorkerLoginOff):
		response.Error(c, http.StatusNotFound, "WORKER_LOGIN_DISABLED", "Worker login is not configured")
	default:
		response.FromError(c, err)
	}
}
