// Package storage 聚合进程用到的全部存储资源：对象存储、关系库、KV 与消息队列.
//
// 初始化一次后通过 Manager 取各客户端：
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//
//	s3Client := mgr.GetS3Client()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"errors"
	"sync"

	dbc "github.com/sujaykar/echovault/pkg/internal/storage/db"
	kvc "github.com/sujaykar/echovault/pkg/internal/storage/kv"
	mqc "github.com/sujaykar/echovault/pkg/internal/storage/mq"
	s3c "github.com/sujaykar/echovault/pkg/internal/storage/s3"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 按全局配置初始化全部存储，重复调用返回同一实例.
// 任何一个后端初始化失败都会使整体失败.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		if m.DB, err = dbc.New(ctx); err != nil {
			return
		}

		if m.S3, err = s3c.New(ctx); err != nil {
			return
		}

		if m.KV, err = kvc.NewKVClient(ctx); err != nil {
			return
		}

		if m.MQ, err = mqc.New(ctx); err != nil {
			return
		}

		mgr = m

		nlog.Logger().Info().Msg("存储后端全部就绪")
	})

	return mgr, err
}

// GetS3Client 返回对象存储客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 返回关系库客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 返回 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 返回消息队列客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 依次关闭所有存储资源，汇总各自的错误.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
