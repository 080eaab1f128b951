package instrument

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetInstrumenter_DefaultsToNoop(t *testing.T) {
	inst := GetInstrumenter(context.Background())
	_, span := inst.StartSpan(context.Background(), "engine", "related", "resolve")
	assert.IsType(t, &NoopSpan{}, span)
	span.End()
}

func TestStartSpan_ChainsParent(t *testing.T) {
	inst := NewInstrumenter()
	ctx := WithTraceID(context.Background(), "trace-1")

	ctx, parent := inst.StartSpan(ctx, "engine", "related", "resolve")
	_, child := inst.StartSpan(ctx, "engine", "related", "lookup")

	assert.Equal(t, "trace-1", child.TraceID())
	assert.Equal(t, parent.SpanID(), child.(*SpanImpl).parentSpanID)

	child.SetStatus("error")
	child.End()
	child.End() // second End is ignored
	assert.True(t, child.(*SpanImpl).ended)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(SpanDuration, "tourism_span_duration_seconds"), 1)
}

func TestMiddleware_TraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(NewInstrumenter(), zap.NewNop()))
	var seen string
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen = GetTraceID(c.UserContext())
		_, ok := GetInstrumenter(c.UserContext()).(*MetricsInstrumenter)
		assert.True(t, ok)
		return c.SendString("pong")
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Trace-ID", "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, "abc-123", seen)

	resp, err = app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 36)
}
