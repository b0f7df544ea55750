package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(NewMetrics(reg).Middleware())
	r.GET("/api/v1/questions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/api/v1/questions/1", "/api/v1/questions/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	w := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	require.Contains(t, body, `method="GET",route="/api/v1/questions/:id",status="200"} 2`)
	require.Contains(t, body, `method="GET",route="unmatched",status="404"} 1`)
}
