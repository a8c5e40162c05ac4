package jobs

// 任务名称常量，便于统一管理与引用.
// cron 表达式不在此处硬编码，统一走 configs.FileServerConfig.
const (
	JobUploadOrphanSweep = "upload.orphan_sweep"
	JobEchoStats         = "echo.stats"
)
