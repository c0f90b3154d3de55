package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/google/uuid"

	"moviereview/internal/biz"
	"moviereview/internal/pkg/auth"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID reuses the caller's X-Request-Id or assigns a new one, and echoes it on the reply.
func RequestID() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				id := tr.RequestHeader().Get(requestIDHeader)
				if id == "" {
					id = uuid.NewString()
				}
				tr.ReplyHeader().Set(requestIDHeader, id)
				ctx = context.WithValue(ctx, requestIDKey{}, id)
			}
			return handler(ctx, req)
		}
	}
}

// RequestIDValuer exposes the request id as a log field.
func RequestIDValuer() log.Valuer {
	return func(ctx context.Context) interface{} {
		if ctx == nil {
			return ""
		}
		id, _ := ctx.Value(requestIDKey{}).(string)
		return id
	}
}

// RequireAdmin rejects tokens without the admin role. It runs after the jwt middleware.
func RequireAdmin() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			claims, ok := auth.FromContext(ctx)
			if !ok {
				return nil, biz.ErrUnauthenticated
			}
			if claims.Role != auth.RoleAdmin {
				return nil, biz.ErrForbidden
			}
			return handler(ctx, req)
		}
	}
}

// MaskInternal replaces errors that carry no kratos status with a generic 500
// so storage details never reach the caller.
func MaskInternal() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			reply, err := handler(ctx, req)
			if err == nil {
				return reply, nil
			}
			se := new(errors.Error)
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, errors.InternalServer("INTERNAL", "internal server error").WithCause(err)
		}
	}
}
