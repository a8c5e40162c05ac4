// NATS 工厂：构建带可选 JetStream 的 Publisher/Subscriber.
//
// 认证支持 JWT+seed、NKey 与用户名密码三种方式；启用 JetStream 时按配置
// 预建流（含容量与保留限制），消费者参数通过 SubOpt 下发.
package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/sujaykar/echovault/pkg/configs"
)

const (
	drainTimeout   = 30 * time.Second
	flusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	opts := connOptions(cfg)
	jsCfg := jetStreamConfig(cfg)

	if cfg.NATS.JetStreamEnabled && cfg.NATS.JetStreamAutoProvision {
		if err := provisionStream(cfg, opts, logger); err != nil {
			return nil, nil, err
		}

		// 流已按配置建好，关掉 watermill 的按主题自动建流
		jsCfg.AutoProvision = false
	}

	marshaler := &nats.JSONMarshaler{}
	url := serverURL(cfg)

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}

	subCfg := nats.SubscriberConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
	}

	// 同一 client_id 的实例组成队列组，分摊订阅流量
	if cfg.NATS.LoadBalance {
		subCfg.QueueGroupPrefix = cfg.Common.ClientID
	}

	sub, err := nats.NewSubscriber(subCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return pub, sub, nil
}

// connOptions 组装连接与认证选项.
func connOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.Common.ClientID),
		nc.MaxReconnects(cfg.Common.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.Common.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.Common.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(cfg.Common.MaxPingsOut),
		nc.ReconnectBufSize(cfg.Common.BufferSize),
		nc.DrainTimeout(drainTimeout),
		nc.FlusherTimeout(flusherTimeout),
		nc.RetryOnFailedConnect(!cfg.Common.StrictConnect),
	}

	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case cfg.NATS.NKey != "":
		opts = append(opts, nc.Nkey(cfg.NATS.NKey, nil))
	case cfg.Common.User != "":
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

// jetStreamConfig 组装 watermill 的 JetStream 配置，消费者参数经 SubscribeOptions 下发.
func jetStreamConfig(cfg *configs.MQConfig) nats.JetStreamConfig {
	if !cfg.NATS.JetStreamEnabled {
		return nats.JetStreamConfig{Disabled: true}
	}

	return nats.JetStreamConfig{
		AutoProvision: cfg.NATS.JetStreamAutoProvision,
		TrackMsgId:    cfg.NATS.JetStreamTrackMsgID,
		AckAsync:      cfg.NATS.JetStreamAckAsync,
		DurablePrefix: cfg.NATS.JetStreamDurablePrefix,
		SubscribeOptions: []nc.SubOpt{
			nc.AckWait(time.Duration(cfg.NATS.ConsumerAckWait) * time.Second),
			nc.MaxDeliver(cfg.NATS.ConsumerMaxDeliver),
			nc.MaxAckPending(cfg.NATS.ConsumerMaxAckPending),
		},
	}
}

// provisionStream 预建覆盖主题前缀的流，流已存在时保持原配置不动.
func provisionStream(cfg *configs.MQConfig, opts []nc.Option, logger watermill.LoggerAdapter) error {
	conn, err := nc.Connect(serverURL(cfg), opts...)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer conn.Close()

	js, err := conn.JetStream()
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}

	name := cfg.NATS.StreamName

	if _, err := js.StreamInfo(name); err == nil {
		return nil
	} else if !errors.Is(err, nc.ErrStreamNotFound) {
		return fmt.Errorf("stream info %s: %w", name, err)
	}

	storage := nc.FileStorage
	if cfg.NATS.StreamStorageType == "memory" {
		storage = nc.MemoryStorage
	}

	_, err = js.AddStream(&nc.StreamConfig{
		Name:     name,
		Subjects: []string{cfg.NATS.SubjectPrefix + ">"},
		MaxMsgs:  cfg.NATS.StreamMaxMsgs,
		MaxBytes: cfg.NATS.StreamMaxBytes,
		MaxAge:   time.Duration(cfg.NATS.StreamMaxAge) * time.Hour,
		Storage:  storage,
		Replicas: cfg.NATS.StreamReplicas,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", name, err)
	}

	logger.Info("JetStream 流已创建", watermill.LogFields{
		"stream":   name,
		"subjects": cfg.NATS.SubjectPrefix + ">",
		"storage":  cfg.NATS.StreamStorageType,
		"max_age":  cfg.NATS.StreamMaxAge,
	})

	return nil
}

// serverURL 集群地址优先，逗号连接多个节点.
func serverURL(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	return cfg.Common.URL
}
