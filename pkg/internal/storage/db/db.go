// Package db 基于 GORM 管理回声记录所在的关系库连接.
//
// 具体方言由各驱动文件的 init 注册，配合构建标签可以裁掉不需要的驱动.
package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormprom "gorm.io/plugin/prometheus"

	"github.com/sujaykar/echovault/pkg/configs"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// Client 持有 GORM 连接句柄.
type Client struct {
	*gorm.DB
}

type dialectorFactory func(dsn string) gorm.Dialector

var dialectors = map[configs.DBType]dialectorFactory{}

func registerDialector(t configs.DBType, f dialectorFactory) {
	dialectors[t] = f
}

// GetRegisteredDBTypes 返回编译进当前二进制的数据库类型.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectors))
	for t := range dialectors {
		types = append(types, t)
	}

	return types
}

const slowQueryThreshold = 200 * time.Millisecond

// New 按全局配置打开数据库并验证连通性.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().DB

	factory, ok := dialectors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("database type %q not built into this binary", cfg.Type)
	}

	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for database type %q", cfg.Type)
	}

	level := logger.Warn
	if configs.GetConfig().Server.Debug {
		level = logger.Info
	}

	gdb, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger: logger.New(nlog.Logger(), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt: true,
		// 把方言各自的唯一键冲突错误翻译成 gorm.ErrDuplicatedKey，
		// 上层据此区分"重复登记"和其他写入失败.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	client := &Client{DB: gdb}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.registerMetrics(cfg.Database); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("database", cfg.Database).
		Msg("数据库连接就绪")

	return client, nil
}

// GetDB 返回底层 GORM 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// Close 释放底层连接池.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

const metricsRefreshSeconds = 15

// registerMetrics 挂载 GORM 的 prometheus 插件，连接池指标随进程
// 自身的 /metrics 暴露，不单独起端口.
func (c *Client) registerMetrics(dbName string) error {
	err := c.Use(gormprom.New(gormprom.Config{
		DBName:          dbName,
		RefreshInterval: metricsRefreshSeconds,
		StartServer:     false,
	}))
	if err != nil {
		return fmt.Errorf("register gorm prometheus plugin: %w", err)
	}

	return nil
}
