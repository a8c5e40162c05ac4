// Package configs 集中管理应用配置，基于 viper 支持多种格式与热重载.
//
// 配置来源优先级：显式配置文件 > 环境变量（ECHOVAULT_ 前缀）> 各模块默认值.
//
// Example:
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port, cfg.S3.BucketName)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号，构建时可通过 ldflags 覆盖.
var AppVersion = "0.1.0"

// AppConfig 全局应用配置.
type AppConfig struct {
	DB             DBConfig             `mapstructure:"db"`
	S3             S3Config             `mapstructure:"s3"`
	KV             KVConfig             `mapstructure:"kv"`
	MQ             MQConfig             `mapstructure:"mq"`
	Server         ServerConfig         `mapstructure:"server"`
	FileServer     FileServerConfig     `mapstructure:"fileserver"`
	Log            LogConfig            `mapstructure:"log"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Events         EventsConfig         `mapstructure:"events"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

var (
	globalConfig AppConfig
	appViper     *viper.Viper
)

// defaulter 各模块配置向 viper 注册默认值的统一入口.
type defaulter interface {
	setDefaults(v *viper.Viper)
}

func setAllDefaults(v *viper.Viper) {
	modules := []defaulter{
		&ServerConfig{},
		&DBConfig{},
		&S3Config{},
		&KVConfig{},
		&MQConfig{},
		&FileServerConfig{},
		&LogConfig{},
		&MetricsConfig{},
		&TracingConfig{},
		&AuthConfig{},
		&EventsConfig{},
		&RateLimitConfig{},
		&CircuitBreakerConfig{},
	}

	for _, m := range modules {
		m.setDefaults(v)
	}
}

// InitConfig 加载配置.
// path 可以是配置文件本身，也可以是包含 config.<ext> 的目录；
// 找不到配置文件时退回默认值与环境变量.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		appViper.SetConfigFile(path)
	} else {
		resolveConfigDir(appViper, path)
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("ECHOVAULT")

	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if globalConfig.Server.ReloadConfig {
		watchConfig(appViper)
	}

	return nil
}

// resolveConfigDir 在目录下按扩展名优先级定位 config 文件.
func resolveConfigDir(v *viper.Viper, dir string) {
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	v.AddConfigPath(filepath.Join(dir, "configs"))

	for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
		candidate := filepath.Join(dir, "config."+ext)
		if _, err := os.Stat(candidate); err == nil {
			v.SetConfigFile(candidate)

			return
		}
	}
}

func watchConfig(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Fprintf(os.Stderr, "config file changed: %s, reloading\n", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Fprintf(os.Stderr, "reload config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回解析后的全局配置.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回底层 viper 实例，供诊断命令打印生效配置.
func GetViper() *viper.Viper {
	return appViper
}
