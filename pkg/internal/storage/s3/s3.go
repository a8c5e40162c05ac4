// Package s3 基于 MinIO SDK 访问回声文件所在的对象存储.
package s3

import (
	"context"
	"fmt"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sujaykar/echovault/pkg/configs"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// Client 包装 MinIO 客户端并记住默认桶.
type Client struct {
	*minio.Client

	bucket string
}

// New 建立对象存储连接，默认桶不存在时自动创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3

	endpoint, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("echovault", configs.AppVersion)

	c := &Client{Client: cli, bucket: cfg.BucketName}
	if err := c.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	nlog.Logger().Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.BucketName).
		Msg("对象存储连接就绪")

	return c, nil
}

// splitEndpoint 接受裸 host:port，也接受带 scheme 的完整 URL，
// https 隐含开启 TLS.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}

	return u.Host, useSSL || u.Scheme == "https"
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	if c.bucket == "" {
		return nil
	}

	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}

	if exists {
		return nil
	}

	if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}

	nlog.Logger().Info().Str("bucket", c.bucket).Msg("bucket created")

	return nil
}

// Bucket 返回默认存储桶名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// HealthCheck 通过列桶验证与对象存储的连通性.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)

	return err
}

// Close 满足存储管理器的关闭约定，minio 客户端没有需要释放的连接.
func (c *Client) Close() error {
	return nil
}
