package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/sujaykar/echovault/pkg/context"
)

// 探活必须快速返回，挂掉的后端不值得等太久.
const probeTimeout = 2 * time.Second

func probeDB(ctx context.Context) error {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return errors.New("db client not initialized")
	}

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func probeS3(ctx context.Context) error {
	s3c := ctxPkg.GetS3Client(ctx)
	if s3c == nil || s3c.Client == nil {
		return errors.New("s3 client not initialized")
	}

	return s3c.HealthCheck(ctx)
}

func probeKV(ctx context.Context) error {
	kvc := ctxPkg.GetKVClient(ctx)
	if kvc == nil {
		return errors.New("kv client not initialized")
	}

	_, err := kvc.Exists(ctx, "health:probe")

	return err
}

// probeMQ 只判空：publisher 与 subscriber 在初始化时已建立连接.
func probeMQ(ctx context.Context) error {
	if ctxPkg.GetMQClient(ctx) == nil {
		return errors.New("mq client not initialized")
	}

	return nil
}

func healthy(c *gin.Context, component string) {
	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

func unhealthy(c *gin.Context, component, reason string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": reason})
}

func componentHealth(c *gin.Context, component string, probe func(context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	if err := probe(ctx); err != nil {
		unhealthy(c, component, err.Error())

		return
	}

	healthy(c, component)
}

// HealthDB 检查数据库连通性.
func HealthDB(c *gin.Context) { componentHealth(c, "db", probeDB) }

// HealthS3 检查对象存储连通性.
func HealthS3(c *gin.Context) { componentHealth(c, "s3", probeS3) }

// HealthKV 检查缓存后端连通性.
func HealthKV(c *gin.Context) { componentHealth(c, "kv", probeKV) }

// HealthMQ 检查消息队列客户端状态.
func HealthMQ(c *gin.Context) { componentHealth(c, "mq", probeMQ) }

// Health 聚合全部组件探活，任一组件异常时整体返回 503.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	probes := []struct {
		name  string
		probe func(context.Context) error
	}{
		{"db", probeDB},
		{"s3", probeS3},
		{"kv", probeKV},
		{"mq", probeMQ},
	}

	components := gin.H{}
	status := http.StatusOK

	for _, p := range probes {
		if err := p.probe(ctx); err != nil {
			components[p.name] = err.Error()
			status = http.StatusServiceUnavailable

			continue
		}

		components[p.name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{"status": overall, "components": components})
}
