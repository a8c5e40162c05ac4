package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultFSChunkSize       = 10240             // 上传/下载单次拷贝的字节数
	DefaultFSMaxUploadSizeMB = 512               // 单文件上传大小上限（MB）
	DefaultFSObjectPrefix    = "echoes/"         // 对象键前缀
	DefaultFSOrphanAge       = 60                // 孤儿对象清理的最小年龄（分钟）
	DefaultFSSweepCron       = "*/30 * * * *"    // 孤儿对象清理的 cron 表达式
	DefaultFSStatsCron       = "0 * * * *"       // 缓存统计日志的 cron 表达式
)

// FileServerConfig 文件上传下载配置.
type FileServerConfig struct {
	ChunkSize       int    `mapstructure:"chunk_size"         rule:"min=512"`
	MaxUploadSizeMB int64  `mapstructure:"max_upload_size_mb" rule:"min=1"`
	ObjectPrefix    string `mapstructure:"object_prefix"`
	OrphanAgeMin    int    `mapstructure:"orphan_age_minutes" rule:"min=1"`
	SweepCron       string `mapstructure:"sweep_cron"`
	StatsCron       string `mapstructure:"stats_cron"`
}

// MaxUploadSizeBytes 返回上传大小上限（字节）.
func (c *FileServerConfig) MaxUploadSizeBytes() int64 {
	const mb = 1024 * 1024

	return c.MaxUploadSizeMB * mb
}

// setDefaults 设置文件服务配置的默认值.
func (c *FileServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("fileserver.chunk_size", DefaultFSChunkSize)
	v.SetDefault("fileserver.max_upload_size_mb", DefaultFSMaxUploadSizeMB)
	v.SetDefault("fileserver.object_prefix", DefaultFSObjectPrefix)
	v.SetDefault("fileserver.orphan_age_minutes", DefaultFSOrphanAge)
	v.SetDefault("fileserver.sweep_cron", DefaultFSSweepCron)
	v.SetDefault("fileserver.stats_cron", DefaultFSStatsCron)
}
