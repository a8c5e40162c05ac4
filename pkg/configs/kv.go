package configs

import (
	"github.com/spf13/viper"
)

// KVConfig 键值存储配置，Type 决定读取哪个子配置.
type KVConfig struct {
	Type       string             `mapstructure:"type"       rule:"oneof=memory redis nats groupcache"`
	Redis      KVRedisConfig      `mapstructure:"redis"`
	NATS       KVNATSConfig       `mapstructure:"nats"`
	Groupcache KVGroupcacheConfig `mapstructure:"groupcache"`
}

// KVRedisConfig Redis 后端.
type KVRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// KVNATSConfig NATS JetStream KV 后端.
type KVNATSConfig struct {
	URL      string `mapstructure:"url"      rule:"hostname_port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// KVGroupcacheConfig groupcache 后端，Peers 为空时单机运行.
type KVGroupcacheConfig struct {
	Name       string   `mapstructure:"name"        rule:"required"`
	CacheBytes int64    `mapstructure:"cache_bytes" rule:"min=1048576"`
	Peers      []string `mapstructure:"peers"`
	Self       string   `mapstructure:"self"        rule:"hostname_port"`
}

func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", "groupcache")

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)

	v.SetDefault("kv.nats.url", "localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", "echovault-kv")

	const groupcacheBytes = 512 * 1024 * 1024

	v.SetDefault("kv.groupcache.name", "echovault-cache")
	v.SetDefault("kv.groupcache.cache_bytes", groupcacheBytes)
	v.SetDefault("kv.groupcache.peers", []string{})
	v.SetDefault("kv.groupcache.self", "http://localhost:8080")
}
