package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracedRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func TestTraceIDAssigned(t *testing.T) {
	r := tracedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	assert.Len(t, id, 36, "generated ids are UUIDs")
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceIDHonorsCaller(t *testing.T) {
	r := tracedRouter()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(TraceIDHeader, "host-4f21")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "host-4f21", w.Body.String())
	assert.Equal(t, "host-4f21", w.Header().Get(TraceIDHeader))
}

func TestGetTraceIDOutsideChain(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetTraceID(c))
}

func TestTraceIDDiffersPerRequest(t *testing.T) {
	r := tracedRouter()

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/echo", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/echo", nil))

	assert.NotEqual(t, w1.Body.String(), w2.Body.String())
}
