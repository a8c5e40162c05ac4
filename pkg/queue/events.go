package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// publish 统一的封包加发布.
func publish[T any](pub message.Publisher, topic string, payload T, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishEchoCreated 发布 ev.echo.created 事件。
// 回声记录登记入库后触发，通知下游流程（统计、索引等）。
func PublishEchoCreated(pub message.Publisher, payload EchoCreatedPayload, opts ...HeaderOption) error {
	return publish(pub, TopicEchoCreated, payload, opts...)
}

// ParseEchoCreated 将消息解析为 EchoCreatedPayload 信封。
func ParseEchoCreated(msg *message.Message) (Message[EchoCreatedPayload], error) {
	return ParseWatermillMessage[EchoCreatedPayload](msg)
}

// PublishEchoDeleted 发布 ev.echo.deleted 事件。
func PublishEchoDeleted(pub message.Publisher, payload EchoDeletedPayload, opts ...HeaderOption) error {
	return publish(pub, TopicEchoDeleted, payload, opts...)
}

// ParseEchoDeleted 将消息解析为 EchoDeletedPayload 信封。
func ParseEchoDeleted(msg *message.Message) (Message[EchoDeletedPayload], error) {
	return ParseWatermillMessage[EchoDeletedPayload](msg)
}

// PublishEchoTextUpdated 发布 ev.echo.text.updated 事件。
func PublishEchoTextUpdated(pub message.Publisher, payload EchoTextUpdatedPayload, opts ...HeaderOption) error {
	return publish(pub, TopicEchoTextUpdated, payload, opts...)
}

// ParseEchoTextUpdated 将消息解析为 EchoTextUpdatedPayload 信封。
func ParseEchoTextUpdated(msg *message.Message) (Message[EchoTextUpdatedPayload], error) {
	return ParseWatermillMessage[EchoTextUpdatedPayload](msg)
}

// PublishUploadCompleted 发布 ev.upload.completed 事件。
// 负载对象与 .meta 边车均写入对象存储后触发。
func PublishUploadCompleted(pub message.Publisher, payload UploadCompletedPayload, opts ...HeaderOption) error {
	return publish(pub, TopicUploadCompleted, payload, opts...)
}

// ParseUploadCompleted 将消息解析为 UploadCompletedPayload 信封。
func ParseUploadCompleted(msg *message.Message) (Message[UploadCompletedPayload], error) {
	return ParseWatermillMessage[UploadCompletedPayload](msg)
}

// PublishUploadRemoved 发布 ev.upload.removed 事件。
func PublishUploadRemoved(pub message.Publisher, payload UploadRemovedPayload, opts ...HeaderOption) error {
	return publish(pub, TopicUploadRemoved, payload, opts...)
}

// ParseUploadRemoved 将消息解析为 UploadRemovedPayload 信封。
func ParseUploadRemoved(msg *message.Message) (Message[UploadRemovedPayload], error) {
	return ParseWatermillMessage[UploadRemovedPayload](msg)
}
