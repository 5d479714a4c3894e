package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func spanAttr(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTracing_Disabled(t *testing.T) {
	recorder := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing("wms-backend", false), SpanEnricher())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Ended())
}

func TestTracing_EnrichesSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	router := gin.New()
	router.Use(
		Tracing("wms-backend", true),
		RequestID(),
		Actor(ActorConfig{DevHeaders: true}),
		SpanEnricher(),
	)
	router.POST("/api/v1/scan/in", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "STORAGE_ERROR")
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan/in", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set(DevUserIDHeader, "u-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Equal(t, "req-42", spanAttr(attrs, "request_id"))
	assert.Equal(t, "u-7", spanAttr(attrs, "user_id"))
	assert.Equal(t, "STORAGE_ERROR", spanAttr(attrs, "error.code"))
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
