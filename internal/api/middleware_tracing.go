package api

import (
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/skinior/skinior-api/internal/api"

// TracingMiddleware opens a server span per request and hands the span context
// to handlers through the fiber user context.
func TracingMiddleware(c *fiber.Ctx) error {
	carrier := propagation.HeaderCarrier{}
	c.Request().Header.VisitAll(func(key []byte, value []byte) {
		carrier.Set(string(key), string(value))
	})
	parent := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

	ctx, span := otel.Tracer(tracerName).Start(parent, c.Method()+" "+c.Path(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("url.path", c.Path()),
		),
	)
	defer span.End()

	c.SetUserContext(ctx)
	err := c.Next()

	status := c.Response().StatusCode()
	if route := c.Route(); route != nil && route.Path != "" {
		span.SetName(c.Method() + " " + route.Path)
		span.SetAttributes(attribute.String("http.route", route.Path))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
	}
	if status >= fiber.StatusInternalServerError {
		span.SetStatus(codes.Error, "server error")
	}
	return err
}
