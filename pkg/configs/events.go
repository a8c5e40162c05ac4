package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	Echo    EchoEventsConfig   `mapstructure:"echo"`
	Upload  UploadEventsConfig `mapstructure:"upload"`
}

// EchoEventsConfig 针对回声记录领域的事件开关。
type EchoEventsConfig struct {
	Created     bool `mapstructure:"created"`
	Deleted     bool `mapstructure:"deleted"`
	TextUpdated bool `mapstructure:"text_updated"`
}

// UploadEventsConfig 针对文件上传领域的事件开关。
type UploadEventsConfig struct {
	Completed bool `mapstructure:"completed"`
	Removed   bool `mapstructure:"removed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 回声记录事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.echo.created", true)
	v.SetDefault("events.echo.deleted", true)
	v.SetDefault("events.echo.text_updated", false)

	// 上传事件：completed 供下游统计消费；removed 仅用于审计，默认关闭
	v.SetDefault("events.upload.completed", true)
	v.SetDefault("events.upload.removed", false)
}
