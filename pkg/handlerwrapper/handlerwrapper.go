// Package handlerwrapper adapts typed event handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is an outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

type ctxKey string

// CtxKeyCorrelationID holds the correlation id of the message being handled.
const CtxKeyCorrelationID ctxKey = "correlation_id"

// CorrelationID extracts the correlation id placed in ctx by the wrapper.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyCorrelationID).(string)
	return id
}

// NewMessage builds a JSON message carrying payload, inheriting the
// correlation id from ctx when present.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if id := CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	} else {
		middleware.SetCorrelationID(watermill.NewUUID(), msg)
	}
	return msg, nil
}

// WrapTransformingTyped decodes the message into T, runs handler and
// publishes every returned Result. Undecodable messages are logged and
// acknowledged; handler errors nack the message.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler func(context.Context, *T) ([]Result, error),
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := context.WithValue(msg.Context(), CtxKeyCorrelationID, correlationID)
		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode message payload",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("error", err.Error()),
			)
			span.SetStatus(codes.Error, "decode failed")
			return nil
		}

		out, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		for _, res := range out {
			outMsg, err := NewMessage(ctx, res.Payload)
			if err != nil {
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range res.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			if err := publisher.Publish(res.Topic, outMsg); err != nil {
				return fmt.Errorf("%s: publish %s: %w", handlerName, res.Topic, err)
			}
		}
		return nil
	}
}
