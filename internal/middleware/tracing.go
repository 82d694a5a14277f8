package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// headerCarrier adapts a fiber request/response to propagation.TextMapCarrier.
// Get reads request headers, Set writes response headers.
type headerCarrier struct {
	c *fiber.Ctx
}

func (h headerCarrier) Get(key string) string {
	return h.c.Get(key)
}

func (h headerCarrier) Set(key, value string) {
	h.c.Set(key, value)
}

func (h headerCarrier) Keys() []string {
	headers := h.c.GetReqHeaders()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}

// Tracing starts a server span per request. The span context is stored as the
// fiber user context so handlers and services continue the trace.
//
// Spans outlive the request and fiber reuses its buffers, so every request
// value put on the span is copied.
func Tracing(serviceName string) fiber.Handler {
	tracer := otel.Tracer(serviceName)

	return func(c *fiber.Ctx) error {
		carrier := headerCarrier{c: c}
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		method := utils.CopyString(c.Method())
		ctx, span := tracer.Start(ctx, method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", utils.CopyString(c.OriginalURL())),
				attribute.String("http.user_agent", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
				attribute.String("net.peer.ip", utils.CopyString(c.IP())),
			),
		)
		defer span.End()

		otel.GetTextMapPropagator().Inject(ctx, carrier)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if route := c.Route(); route != nil {
			span.SetName(method + " " + route.Path)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}
