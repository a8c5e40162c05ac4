package configs

import (
	"github.com/spf13/viper"
)

// S3Config 对象存储配置（MinIO 或任意 S3 兼容服务）.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          rule:"hostname_port"`
	AccessKeyID     string `mapstructure:"access_key_id"     rule:"required"`
	SecretAccessKey string `mapstructure:"secret_access_key" rule:"required"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"       rule:"required"`
	Region          string `mapstructure:"region"`
}

func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key_id", "minioadmin")
	v.SetDefault("s3.secret_access_key", "minioadmin")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.bucket_name", "echoes")
	v.SetDefault("s3.region", "us-east-1")
}
