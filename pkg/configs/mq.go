package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列后端类型.
type MQType string

const (
	MQTypeNATS  MQType = "nats"
	MQTypeRedis MQType = "redis"
)

// 连接默认值.
const (
	DefaultMQURL         = "localhost:4222"
	DefaultMQClientID    = "echovault-app"
	DefaultMaxReconnects = 5     // 最大重连次数
	DefaultReconnectWait = 5     // 重连等待（秒）
	DefaultMaxPingsOut   = 3     // 未响应 ping 上限
	DefaultPingInterval  = 20    // ping 间隔（秒）
	DefaultBufferSize    = 32768 // 重连缓冲（字节）
)

// JetStream 流与消费者默认值.
const (
	DefaultStreamMaxMsgs  = 1000000            // 流内最大消息数
	DefaultStreamMaxBytes = 1024 * 1024 * 1024 // 流内最大字节数（1GB）
	DefaultStreamMaxAge   = 24                 // 消息最长保留（小时）
	DefaultStreamReplicas = 1

	DefaultConsumerAckWait       = 30 // 确认等待（秒）
	DefaultConsumerMaxDeliver    = 3  // 最大投递次数
	DefaultConsumerMaxAckPending = 1000
)

// MQConfig 消息队列配置，Type 决定 NATS 与 Redis 哪一段生效.
type MQConfig struct {
	Type   MQType         `mapstructure:"type"   rule:"oneof=nats redis"`
	Common MQCommonConfig `mapstructure:"common"`
	NATS   MQNATSConfig   `mapstructure:"nats"`
	Redis  MQRedisConfig  `mapstructure:"redis"`
}

// MQCommonConfig 各后端共用的连接配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"            rule:"hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	StrictConnect bool   `mapstructure:"strict_connect"`
	MaxPingsOut   int    `mapstructure:"max_pings_out"  rule:"min=1,max=10"`
	PingInterval  int    `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int    `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
	Endpoint      string `mapstructure:"endpoint"`
}

// MQNATSConfig NATS 后端配置，按连接、JetStream 开关、流、消费者分组.
type MQNATSConfig struct {
	JWT         string   `mapstructure:"jwt"`
	NKey        string   `mapstructure:"nkey"`
	ClusterURLs []string `mapstructure:"cluster_urls"`
	LoadBalance bool     `mapstructure:"load_balance"`

	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`

	StreamName        string `mapstructure:"stream_name"`
	SubjectPrefix     string `mapstructure:"subject_prefix"`
	StreamMaxMsgs     int64  `mapstructure:"stream_max_msgs"`
	StreamMaxBytes    int64  `mapstructure:"stream_max_bytes"`
	StreamMaxAge      int    `mapstructure:"stream_max_age"`
	StreamStorageType string `mapstructure:"stream_storage_type" rule:"oneof=file memory"`
	StreamReplicas    int    `mapstructure:"stream_replicas"     rule:"min=1,max=5"`

	ConsumerAckWait       int `mapstructure:"consumer_ack_wait"`
	ConsumerMaxDeliver    int `mapstructure:"consumer_max_deliver"`
	ConsumerMaxAckPending int `mapstructure:"consumer_max_ack_pending"`
}

// MQRedisConfig Redis 发布/订阅后端配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNATS)

	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", "")
	v.SetDefault("mq.common.password", "")
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.common.strict_connect", false)
	v.SetDefault("mq.common.max_pings_out", DefaultMaxPingsOut)
	v.SetDefault("mq.common.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.common.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.common.enable_metrics", true)
	v.SetDefault("mq.common.endpoint", ":9092")

	v.SetDefault("mq.nats.jwt", "")
	v.SetDefault("mq.nats.nkey", "")
	v.SetDefault("mq.nats.cluster_urls", []string{})
	v.SetDefault("mq.nats.load_balance", true)
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "echovault-durable")
	v.SetDefault("mq.nats.stream_name", "echovault-stream")
	v.SetDefault("mq.nats.subject_prefix", "ev.")
	v.SetDefault("mq.nats.stream_max_msgs", DefaultStreamMaxMsgs)
	v.SetDefault("mq.nats.stream_max_bytes", DefaultStreamMaxBytes)
	v.SetDefault("mq.nats.stream_max_age", DefaultStreamMaxAge)
	v.SetDefault("mq.nats.stream_storage_type", "file")
	v.SetDefault("mq.nats.stream_replicas", DefaultStreamReplicas)
	v.SetDefault("mq.nats.consumer_ack_wait", DefaultConsumerAckWait)
	v.SetDefault("mq.nats.consumer_max_deliver", DefaultConsumerMaxDeliver)
	v.SetDefault("mq.nats.consumer_max_ack_pending", DefaultConsumerMaxAckPending)

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}
