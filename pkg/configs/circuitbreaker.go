package configs

import "github.com/spf13/viper"

// CircuitBreakerConfig 熔断器配置，阈值作用于滑动统计窗口.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"         rule:"min=0,max=1"`
	MinRequests       uint32  `mapstructure:"min_requests"`         // 窗口内样本不足时不触发
	IntervalSeconds   int     `mapstructure:"interval_seconds"`     // 统计窗口周期
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`      // 打开态持续时间，超时后转半开
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"` // 半开态放行的并发数
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval_seconds", 60)
	v.SetDefault("circuit_breaker.timeout_seconds", 30)
	v.SetDefault("circuit_breaker.max_requests_in_half", 5)
}
