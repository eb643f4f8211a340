package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetricsWithMeter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("test")))
	router.GET("/customers/:accNo", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/customers/1", "/customers/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	byRoute := map[string]int64{}
	var sawHistogram bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch data := m.Data.(type) {
		case metricdata.Sum[int64]:
			if m.Name != "http_server_request_total" {
				continue
			}
			for _, dp := range data.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				byRoute[route.AsString()] += dp.Value
			}
		case metricdata.Histogram[float64]:
			sawHistogram = m.Name == "http_server_request_duration_seconds" || sawHistogram
		}
	}
	assert.Equal(t, int64(2), byRoute["/customers/:accNo"])
	assert.Equal(t, int64(1), byRoute["unknown"])
	assert.True(t, sawHistogram)
}

func TestHTTPMetrics_DisabledProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
