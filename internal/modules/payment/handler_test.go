package payment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotelcore/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, url, body string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHandler_PaymentFlow(t *testing.T) {
	e := newEnv(t, nil)
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 6), "500", "100", nil)
	r := newRouter(NewHandler(e.svc))
	base := fmt.Sprintf("/api/v1/orders/%d", order.ID)

	code, body := do(t, r, http.MethodPut, base+"/paid", `{"amount": "100"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)

	code, body = do(t, r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Price     string `json:"price"`
		LeftToPay string `json:"left_to_pay"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, "500", view.Price)
	assert.Equal(t, "400", view.LeftToPay)

	code, body = do(t, r, http.MethodPost, base+"/refund", `{"amount": "150"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)

	code, _ = do(t, r, http.MethodPost, base+"/cancel", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, r, http.MethodPost, base+"/pay", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", body.Error.Code)
}

func TestHandler_BadRequests(t *testing.T) {
	e := newEnv(t, nil)
	r := newRouter(NewHandler(e.svc))

	code, body := do(t, r, http.MethodGet, "/api/v1/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", body.Error.Code)

	code, _ = do(t, r, http.MethodPut, "/api/v1/orders/1/paid", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, r, http.MethodGet, "/api/v1/orders/404", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/bookings/404/cancel", "")
	assert.Equal(t, http.StatusNotFound, code)
}
