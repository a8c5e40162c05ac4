// Package events 消费回声与上传领域事件，输出审计日志并上报消费指标。
//
// 消费循环与 HTTP 主流程解耦：订阅失败只影响事件侧，不影响请求处理。
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sujaykar/echovault/pkg/internal/storage"
	"github.com/sujaykar/echovault/pkg/log"
	"github.com/sujaykar/echovault/pkg/metrics"
	"github.com/sujaykar/echovault/pkg/queue"
)

// Consumer 订阅全部领域主题并逐条处理。
type Consumer struct {
	mgr     *storage.Manager
	counter *prometheus.CounterVec
}

// NewConsumer 创建事件消费者并注册消费计数指标。
// 进程内只应创建一次，重复创建会因指标重复注册而 panic.
func NewConsumer(mgr *storage.Manager) *Consumer {
	return &Consumer{
		mgr: mgr,
		counter: metrics.NewCounter(
			"events_consumed_total",
			"Total number of consumed domain events",
			[]string{"topic"},
		),
	}
}

// Start 订阅回声与上传主题并启动消费协程，随 ctx 取消而退出。
func (c *Consumer) Start(ctx context.Context) error {
	mqc := c.mgr.GetMQClient()
	if mqc == nil {
		return fmt.Errorf("mq client not initialized")
	}

	topics := make([]string, 0, len(queue.EchoTopics)+len(queue.UploadTopics))
	topics = append(topics, queue.EchoTopics...)
	topics = append(topics, queue.UploadTopics...)

	for _, topic := range topics {
		ch, err := mqc.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go c.consume(ctx, topic, ch)
	}

	log.Logger().Info().Int("topics", len(topics)).Msg("事件消费者已启动")

	return nil
}

// consume 单主题消费循环。
func (c *Consumer) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	l := log.Logger().With().Str("topic", topic).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			c.handle(&l, topic, msg)
		}
	}
}

// handle 解析单条消息并记录审计日志，解析失败也 Ack 以避免毒消息阻塞.
func (c *Consumer) handle(l *zerolog.Logger, topic string, msg *message.Message) {
	defer msg.Ack()

	c.counter.WithLabelValues(topic).Inc()

	switch topic {
	case queue.TopicEchoCreated:
		ev, err := queue.ParseEchoCreated(msg)
		if err != nil {
			l.Warn().Err(err).Str("msg_id", msg.UUID).Msg("解析事件失败")
			return
		}

		l.Info().
			Str("echo_id", ev.Payload.Echo.EchoID).
			Str("user", ev.Payload.UserID).
			Str("media_type", ev.Payload.Echo.MediaType).
			Msg("echo created")
	case queue.TopicEchoDeleted:
		ev, err := queue.ParseEchoDeleted(msg)
		if err != nil {
			l.Warn().Err(err).Str("msg_id", msg.UUID).Msg("解析事件失败")
			return
		}

		l.Info().
			Str("echo_id", ev.Payload.EchoID).
			Str("user", ev.Payload.UserID).
			Strs("removed_objects", ev.Payload.RemovedObjects).
			Msg("echo deleted")
	case queue.TopicEchoTextUpdated:
		ev, err := queue.ParseEchoTextUpdated(msg)
		if err != nil {
			l.Warn().Err(err).Str("msg_id", msg.UUID).Msg("解析事件失败")
			return
		}

		l.Info().
			Str("echo_id", ev.Payload.EchoID).
			Str("user", ev.Payload.UserID).
			Int("text_length", ev.Payload.TextLength).
			Msg("echo text updated")
	case queue.TopicUploadCompleted:
		ev, err := queue.ParseUploadCompleted(msg)
		if err != nil {
			l.Warn().Err(err).Str("msg_id", msg.UUID).Msg("解析事件失败")
			return
		}

		l.Info().
			Str("echo_id", ev.Payload.EchoID).
			Str("object_key", ev.Payload.Object.ObjectKey).
			Int64("size", ev.Payload.Total).
			Msg("upload completed")
	case queue.TopicUploadRemoved:
		ev, err := queue.ParseUploadRemoved(msg)
		if err != nil {
			l.Warn().Err(err).Str("msg_id", msg.UUID).Msg("解析事件失败")
			return
		}

		l.Info().
			Str("echo_id", ev.Payload.EchoID).
			Str("object_key", ev.Payload.Object.ObjectKey).
			Str("reason", ev.Payload.Reason).
			Msg("upload removed")
	default:
		l.Debug().Str("msg_id", msg.UUID).Msg("未知主题消息")
	}
}
