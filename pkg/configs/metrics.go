package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig 指标暴露配置，指标经调试引擎的 /metrics 输出.
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RuntimeMetrics bool `mapstructure:"runtime_metrics"` // Go 运行时与进程收集器
	Pprof          bool `mapstructure:"pprof"`           // 在调试引擎挂 /debug/pprof
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
}
