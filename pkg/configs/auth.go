package configs

import "github.com/spf13/viper"

// AuthConfig 控制用户识别校验（支持客户端生成的 X-User-Id 或 oauth2-proxy 注入的请求头）。
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 要求请求携带用户标识
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过校验的路径前缀（如 /metrics、/health）
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	// 匿名客户端自带生成的用户标识，默认不强制校验
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.dev_allow_query", true)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/health",
		"/swagger",
		"/upload",
		"/download",
	})
}
