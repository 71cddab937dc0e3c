package grpcx

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

// Probes hit the health service every few seconds; keep them at debug.
func levelFor(method string, err error) slog.Level {
	switch {
	case err != nil && status.Code(err) == codes.Internal:
		return slog.LevelError
	case strings.HasPrefix(method, "/grpc.health.v1.Health/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func logCall(ctx context.Context, kind, method string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("code", status.Code(err).String()),
		slog.Int64("dur_ms", time.Since(start).Milliseconds()),
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		attrs = append(attrs, slog.String("peer", p.Addr.String()))
	}
	attrs = append(attrs, logger.AttrsFromCtx(ctx)...)
	logger.L().LogAttrs(ctx, levelFor(method, err), "grpc "+kind, attrs...)
}

func recovered(kind, method string, r any) error {
	logger.L().Error("grpc "+kind+" panic",
		"method", method,
		"panic", r,
		"stack", string(debug.Stack()))
	return status.Error(codes.Internal, "internal server error")
}

// UnaryServerInterceptor logs, recovers and applies a deadline when the
// caller did not set one.
func UnaryServerInterceptor(defaultTimeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()
		if _, ok := ctx.Deadline(); !ok && defaultTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				err = recovered("unary", info.FullMethod, r)
			}
			logCall(ctx, "unary", info.FullMethod, start, err)
		}()

		return handler(ctx, req)
	}
}

// StreamServerInterceptor covers Health/Watch, which stays open until the
// client goes away.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				err = recovered("stream", info.FullMethod, r)
			}
			logCall(ss.Context(), "stream", info.FullMethod, start, err)
		}()

		return handler(srv, ss)
	}
}
