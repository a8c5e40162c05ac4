// Package context 在请求上下文中传递存储管理器，并提供带追踪字段的日志辅助.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/sujaykar/echovault/pkg/internal/storage"
	dbc "github.com/sujaykar/echovault/pkg/internal/storage/db"
	kvc "github.com/sujaykar/echovault/pkg/internal/storage/kv"
	mqc "github.com/sujaykar/echovault/pkg/internal/storage/mq"
	s3c "github.com/sujaykar/echovault/pkg/internal/storage/s3"
)

type managerKey struct{}

// WithStorageManager 把存储管理器挂到 ctx 上.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 取出存储管理器，未设置时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)

	return mgr
}

// GetDBClient 取出数据库客户端，管理器缺失时返回 nil.
func GetDBClient(ctx context.Context) *dbc.Client {
	mgr := GetManager(ctx)
	if mgr == nil {
		return nil
	}

	return mgr.GetDBClient()
}

// GetKVClient 取出键值存储客户端，管理器缺失时返回 nil.
func GetKVClient(ctx context.Context) *kvc.Client {
	mgr := GetManager(ctx)
	if mgr == nil {
		return nil
	}

	return mgr.GetKVClient()
}

// GetMQClient 取出消息队列客户端，管理器缺失时返回 nil.
func GetMQClient(ctx context.Context) *mqc.Client {
	mgr := GetManager(ctx)
	if mgr == nil {
		return nil
	}

	return mgr.GetMQClient()
}

// GetS3Client 取出对象存储客户端，管理器缺失时返回 nil.
func GetS3Client(ctx context.Context) *s3c.Client {
	mgr := GetManager(ctx)
	if mgr == nil {
		return nil
	}

	return mgr.GetS3Client()
}

// WithTraceContext 返回附加 trace_id/span_id 字段的 logger，无有效 span 时原样返回.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
