// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：ev.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：echo(回声记录)、upload(文件上传)
// 动作：记录相关(created/deleted/updated)、上传相关(completed/removed)

const (
	// 回声记录领域.
	TopicEchoCreated     = "ev.echo.created"      // 记录已写入数据库（上传与登记两阶段均完成后触发）
	TopicEchoDeleted     = "ev.echo.deleted"      // 记录被删除（软删除，随后清理对象存储中的负载与元数据边车）
	TopicEchoTextUpdated = "ev.echo.text.updated" // 记录的转写文本被更新

	// 文件上传领域.
	TopicUploadCompleted = "ev.upload.completed" // 负载对象与 .meta 边车均已写入对象存储
	TopicUploadRemoved   = "ev.upload.removed"   // 负载对象被移除（补偿清理、记录删除或孤儿扫描）
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 回声记录相关主题集合.
	EchoTopics = []string{
		TopicEchoCreated, TopicEchoDeleted, TopicEchoTextUpdated,
	}

	// 文件上传相关主题集合.
	UploadTopics = []string{
		TopicUploadCompleted, TopicUploadRemoved,
	}
)
