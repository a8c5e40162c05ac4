package queue

import "time"

// EventHeader 所有事件共用的头部.
type EventHeader struct {
	// Topic 与中间件主题重复，转储或离线处理时仍能定位来源.
	Topic string `json:"topic"`
	// TraceID 取自发布时的调用链.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产方服务名.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件时间，UTC.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 信封版本.
	Version string `json:"version,omitempty"`
}

// Message 统一信封，T 为各主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// ObjectRef 标识对象存储中的负载对象.
type ObjectRef struct {
	Bucket      string `json:"bucket"`
	ObjectKey   string `json:"object_key"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// EchoRef 标识一条回声记录的关键字段.
type EchoRef struct {
	EchoID         string `json:"echo_id"`
	DisplayName    string `json:"display_name,omitempty"`
	SourceFilePath string `json:"source_file_path,omitempty"`
	MediaType      string `json:"media_type,omitempty"`
}

// -------------------------- 回声记录领域 --------------------------

// EchoCreatedPayload 记录已写入数据库.
type EchoCreatedPayload struct {
	Echo EchoRef `json:"echo"`
	// Object 指向已上传的负载对象，登记时尚未上传则为空.
	Object *ObjectRef `json:"object,omitempty"`
	UserID string     `json:"user_id,omitempty"`
}

// EchoDeletedPayload 记录被删除，RemovedObjects 为随记录一并清理的对象键.
type EchoDeletedPayload struct {
	EchoID         string   `json:"echo_id"`
	UserID         string   `json:"user_id,omitempty"`
	RemovedObjects []string `json:"removed_objects,omitempty"`
}

// EchoTextUpdatedPayload 记录的转写文本被更新.
type EchoTextUpdatedPayload struct {
	EchoID     string `json:"echo_id"`
	UserID     string `json:"user_id,omitempty"`
	TextLength int    `json:"text_length"`
}

// -------------------------- 文件上传领域 --------------------------

// UploadCompletedPayload 负载对象与元数据边车均已写入对象存储.
type UploadCompletedPayload struct {
	Object   ObjectRef `json:"object"`
	EchoID   string    `json:"echo_id"`
	FileName string    `json:"file_name,omitempty"`
	Received int64     `json:"received"`
	Total    int64     `json:"total"`
}

// UploadRemovedPayload 负载对象被移除.
// Reason 描述触发来源：delete（显式删除）、cleanup（登记失败补偿）、sweep（孤儿扫描）.
type UploadRemovedPayload struct {
	Object ObjectRef `json:"object"`
	EchoID string    `json:"echo_id"`
	Reason string    `json:"reason,omitempty"`
}
