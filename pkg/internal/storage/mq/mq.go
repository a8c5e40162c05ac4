// Package mq 基于 watermill 的消息队列封装.
//
// 具体后端经工厂注册（NATS、Redis），Client 统一暴露发布与订阅；
// 开启 metrics 时，发布者与订阅者都会被 Prometheus 装饰器包一层，
// 指标经独立端口暴露.
package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/sujaykar/echovault/pkg/configs"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// Factory 构造某一后端的 Publisher 与 Subscriber.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册后端工厂，由各实现的 init() 调用.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的后端类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 持有发布者与订阅者，Close 时一并释放.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	stopExtras func()
}

// Publish 逐条发布消息到主题.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	return nil
}

// Subscribe 订阅主题，返回的通道随 ctx 取消或 Close 关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 依次关闭发布者、订阅者与 router，并停掉 metrics 服务.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	if c.stopExtras != nil {
		c.stopExtras()
	}

	return errors.Join(errs...)
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 按全局配置初始化消息队列客户端（进程内单例）.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		mqInst, mqErr = build(ctx)
	})

	return mqInst, mqErr
}

func build(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().MQ

	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("mq type %q not built into this binary", cfg.Type)
	}

	logger := &zerologAdapter{l: nlog.Logger()}

	pub, sub, err := factory(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	client := &Client{publisher: pub, subscriber: sub}

	if cfg.Common.EnableMetrics {
		if err := client.enableMetrics(ctx, cfg.Common.Endpoint, logger); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已就绪")

	return client, nil
}

// enableMetrics 用 Prometheus 装饰器包裹发布者与订阅者，并在独立端口暴露指标.
func (c *Client) enableMetrics(ctx context.Context, endpoint string, logger watermill.LoggerAdapter) error {
	registry, stopServer := metrics.CreateRegistryAndServeHTTP(endpoint)
	c.stopExtras = stopServer

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	c.router = router

	go func() {
		if runErr := router.Run(ctx); runErr != nil {
			nlog.Logger().Error().Err(runErr).Msg("mq router stopped with error")
		}
	}()

	builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
	builder.AddPrometheusRouterMetrics(router)

	c.publisher, err = builder.DecoratePublisher(c.publisher)
	if err != nil {
		return fmt.Errorf("decorate publisher: %w", err)
	}

	c.subscriber, err = builder.DecorateSubscriber(c.subscriber)
	if err != nil {
		return fmt.Errorf("decorate subscriber: %w", err)
	}

	nlog.Logger().Info().Str("endpoint", endpoint).Msg("MQ 指标已开启")

	return nil
}
