package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/sujaykar/echovault/pkg/configs"
	"github.com/sujaykar/echovault/pkg/internal/model"
	"github.com/sujaykar/echovault/pkg/internal/storage/mq"
	"github.com/sujaykar/echovault/pkg/internal/types"
	nlog "github.com/sujaykar/echovault/pkg/log"
	"github.com/sujaykar/echovault/pkg/queue"
)

const eventProducer = "echovault"

// mqPublisher 将 mq.Client 适配为 watermill 的 message.Publisher.
type mqPublisher struct {
	ctx context.Context
	mqc *mq.Client
}

func (p mqPublisher) Publish(topic string, msgs ...*message.Message) error {
	return p.mqc.Publish(p.ctx, topic, msgs...)
}

func (p mqPublisher) Close() error { return nil }

// headerOpts 构造事件头选项：固定 Producer，存在追踪时附带 TraceID.
func headerOpts(ctx context.Context) []queue.HeaderOption {
	opts := []queue.HeaderOption{queue.WithProducer(eventProducer)}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		opts = append(opts, queue.WithTraceID(span.SpanContext().TraceID().String()))
	}

	return opts
}

// 事件发布失败不影响主流程，仅记录日志.

func (e *EchoService) publishEchoCreated(ctx context.Context, rec *model.Echo) {
	cfg := configs.GetConfig().Events
	if e.mqc == nil || !cfg.Enabled || !cfg.Echo.Created {
		return
	}

	payload := queue.EchoCreatedPayload{
		Echo: queue.EchoRef{
			EchoID:         rec.ID,
			DisplayName:    rec.DisplayName,
			SourceFilePath: rec.SourceFilePath,
			MediaType:      rec.MediaType,
		},
		UserID: rec.UserID,
	}

	if e.s3c != nil {
		payload.Object = &queue.ObjectRef{
			Bucket:      e.s3c.Bucket(),
			ObjectKey:   configs.GetConfig().FileServer.ObjectPrefix + rec.ID,
			ContentType: rec.MediaType,
		}
	}

	if err := queue.PublishEchoCreated(mqPublisher{ctx, e.mqc}, payload, headerOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Str("echo_id", rec.ID).Msg("publish echo created failed")
	}
}

func (e *EchoService) publishEchoDeleted(ctx context.Context, echoID, user string, removed []string) {
	cfg := configs.GetConfig().Events
	if e.mqc == nil || !cfg.Enabled || !cfg.Echo.Deleted {
		return
	}

	payload := queue.EchoDeletedPayload{
		EchoID:         echoID,
		UserID:         user,
		RemovedObjects: removed,
	}

	if err := queue.PublishEchoDeleted(mqPublisher{ctx, e.mqc}, payload, headerOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Str("echo_id", echoID).Msg("publish echo deleted failed")
	}
}

func (e *EchoService) publishEchoTextUpdated(ctx context.Context, echoID, user string, textLen int) {
	cfg := configs.GetConfig().Events
	if e.mqc == nil || !cfg.Enabled || !cfg.Echo.TextUpdated {
		return
	}

	payload := queue.EchoTextUpdatedPayload{
		EchoID:     echoID,
		UserID:     user,
		TextLength: textLen,
	}

	if err := queue.PublishEchoTextUpdated(mqPublisher{ctx, e.mqc}, payload, headerOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Str("echo_id", echoID).Msg("publish echo text updated failed")
	}
}

func (f *FileServerService) publishUploadCompleted(ctx context.Context, echoID string, meta *types.UploadMeta, contentType string) {
	cfg := configs.GetConfig().Events
	if f.mqc == nil || !cfg.Enabled || !cfg.Upload.Completed {
		return
	}

	payload := queue.UploadCompletedPayload{
		Object: queue.ObjectRef{
			Bucket:      f.s3c.Bucket(),
			ObjectKey:   meta.DrivePath,
			Size:        meta.Size,
			ContentType: contentType,
		},
		EchoID:   echoID,
		FileName: meta.OriginalPath,
		Received: meta.Size,
		Total:    meta.Size,
	}

	if err := queue.PublishUploadCompleted(mqPublisher{ctx, f.mqc}, payload, headerOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Str("echo_id", echoID).Msg("publish upload completed failed")
	}
}

func (f *FileServerService) publishUploadRemoved(ctx context.Context, echoID, reason string) {
	cfg := configs.GetConfig().Events
	if f.mqc == nil || !cfg.Enabled || !cfg.Upload.Removed {
		return
	}

	payload := queue.UploadRemovedPayload{
		Object: queue.ObjectRef{
			Bucket:    f.s3c.Bucket(),
			ObjectKey: f.payloadKey(echoID),
		},
		EchoID: echoID,
		Reason: reason,
	}

	if err := queue.PublishUploadRemoved(mqPublisher{ctx, f.mqc}, payload, headerOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Str("echo_id", echoID).Msg("publish upload removed failed")
	}
}
