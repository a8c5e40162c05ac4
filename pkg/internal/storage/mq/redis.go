package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/sujaykar/echovault/pkg/configs"
)

// subscriberBuffer 每个订阅通道的缓冲长度.
const subscriberBuffer = 64

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 基于 Redis Pub/Sub 构建发布者与订阅者，两侧各持自己的连接.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	_ watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	opt := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	pubClient := redis.NewClient(opt)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}

	sub := &redisSubscriber{
		client:  redis.NewClient(opt),
		done:    make(chan struct{}),
	}

	return &redisPublisher{client: pubClient}, sub, nil
}

type redisPublisher struct {
	client *redis.Client
}

func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

type redisSubscriber struct {
	client  *redis.Client
	mu      sync.Mutex
	pubsubs []*redis.PubSub
	closed  bool
	done    chan struct{}
}

// Subscribe 为每个主题开一个独立的 PubSub 与读取协程.
func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("redis subscriber closed")
	}

	pubsub := s.client.Subscribe(ctx, topic)
	s.pubsubs = append(s.pubsubs, pubsub)

	ch := make(chan *message.Message, subscriberBuffer)

	go func() {
		defer close(ch)

		for {
			// Close 会关掉 pubsub，使 ReceiveMessage 返回错误从而退出
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			m := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))

			select {
			case ch <- m:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()

	return ch, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.done)

	for _, pubsub := range s.pubsubs {
		_ = pubsub.Close()
	}

	return s.client.Close()
}
