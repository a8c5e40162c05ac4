// Package queue 定义回声领域事件的消息信封与编解码.
//
// 事件走发布/订阅模型，把上传、登记、清理、统计等环节解耦。
// 一条消息是 Message[Payload] = Header + Payload，JSON 编码（bytedance/sonic），
// 主题常量见 topics.go，负载结构体见 payloads.go．
//
// 线上格式：
//
//	{
//	  "header": {
//	    "topic": "ev.echo.created",
//	    "trace_id": "optional-trace-id",
//	    "producer": "echovault",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于主题 ... }
//	}
//
// 发布：
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicEchoCreated, payload,
//	    queue.WithProducer("echovault"))
//	_ = client.Publish(ctx, queue.TopicEchoCreated, msg)
//
// 订阅：
//
//	ch, _ := client.Subscribe(ctx, queue.TopicEchoCreated)
//	for m := range ch {
//	    env, _ := queue.ParseWatermillMessage[queue.EchoCreatedPayload](m)
//	    // env.Header / env.Payload ...
//	    m.Ack()
//	}
//
// occurred_at 固定为 UTC、RFC3339 格式，非 Go 消费者（既有 Flask 服务）按普通
// JSON 解析即可；消费者应忽略未知字段，version 留给后向兼容.
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前信封版本.
const PayloadVersionV1 = "v1"

// HeaderOption 事件头的可选字段.
type HeaderOption func(*EventHeader)

// WithTraceID 把调用链 ID 带进事件头.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 标记事件的生产方.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 构造事件头，时间取当下 UTC.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}

	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// Encode 将信封序列化为 JSON.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 还原信封.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 把负载包进信封并构造 watermill 消息.
// 头部字段同步写进消息元数据，不解包的中间环节也能按其过滤.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	meta := map[string]string{
		"topic":       topic,
		"trace_id":    header.TraceID,
		"producer":    header.Producer,
		"occurred_at": header.OccurredAt.Format(time.RFC3339Nano),
		"version":     header.Version,
	}
	for k, v := range meta {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出指定负载类型的信封.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
