package counter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/kv"
)

func serveCounter(t *testing.T, svc *Service) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/counter", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCounterReturnsBareNumber(t *testing.T) {
	svc, mr := newMiniredisService(t)
	require.NoError(t, mr.Set("coffeecounter", "42"))

	w := serveCounter(t, svc)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestGetCounterDisablesCaching(t *testing.T) {
	svc, _ := newMiniredisService(t)

	w := serveCounter(t, svc)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}

func TestGetCounterStoreUnavailable(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("coffeecounter").SetErr(assert.AnError)
	svc := NewService(kv.FromRedis(rdb), "coffeecounter")

	w := serveCounter(t, svc)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "counter_unavailable")
}
