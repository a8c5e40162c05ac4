// Package client 提供 EchoVault 的 Go SDK.
// 覆盖上传负载、登记记录、查询、删除与进度查询，内置熔断与本地查询缓存.
//
// Example:
//
//	c, err := client.New(client.Config{
//		FileserverURL: "https://vault.example.com",
//		APIURL:        "https://vault.example.com",
//		UserID:        "device-1f3a",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	id := client.NewEchoID()
//
//	echo, err := c.SubmitNewArtifact(ctx, id, bytes.NewReader(blob), "audio/webm")
//	if err != nil {
//		// 上传或登记失败，已上传的负载会被补偿删除
//	}
//
//	list, err := c.ListEchoes(ctx)
package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
)

// 哨兵错误，调用方用 errors.Is 判定失败阶段.
var (
	ErrMissingFileserverURL = errors.New("client: fileserver url not configured")
	ErrMissingAPIURL        = errors.New("client: api url not configured")
	ErrUploadRejected       = errors.New("client: upload rejected")
	ErrRegistrationFailed   = errors.New("client: registration failed")
	ErrNotFound             = errors.New("client: not found")
)

const (
	// DefaultTimeout 普通 API 请求超时.
	DefaultTimeout = 10 * time.Second
	// DefaultUploadTimeout 上传与下载等流式请求超时.
	DefaultUploadTimeout = 5 * time.Minute
	// DefaultListCacheTTL 本地 listEchoes 查询缓存的存活时间.
	DefaultListCacheTTL = 30 * time.Second

	// breakerConsecutiveFailures 连续传输失败多少次后熔断.
	breakerConsecutiveFailures = 5
)

// Config 为显式端点配置，SDK 不读取任何环境变量或全局状态.
type Config struct {
	// FileserverURL 文件服务基地址，如 https://vault.example.com.
	FileserverURL string
	// APIURL 记录 API 基地址（/api/v1 之前的部分），通常与 FileserverURL 相同.
	APIURL string
	// UserID 随请求发送的 X-User-Id，留空则交由服务端按请求头识别.
	UserID string

	// Timeout / UploadTimeout 控制单次调用的 context 超时.
	Timeout       time.Duration
	UploadTimeout time.Duration
	// ListCacheTTL 本地查询缓存 TTL.
	ListCacheTTL time.Duration

	// HTTPClient 可注入自定义 http.Client，nil 时使用零值客户端（超时由各调用的 context 控制）.
	HTTPClient *http.Client
}

// Validate 校验配置，基地址缺失时返回哨兵错误.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FileserverURL) == "" {
		return ErrMissingFileserverURL
	}

	if strings.TrimSpace(c.APIURL) == "" {
		return ErrMissingAPIURL
	}

	return nil
}

// Client 是并发安全的 EchoVault 客户端.
type Client struct {
	cfg   Config
	hc    *http.Client
	brk   *gobreaker.CircuitBreaker
	cache *queryCache
}

// New 构造客户端. 配置校验在此处完成，之后的调用在发起网络请求前不再检查.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.FileserverURL = strings.TrimRight(cfg.FileserverURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}

	if cfg.ListCacheTTL <= 0 {
		cfg.ListCacheTTL = DefaultListCacheTTL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	settings := gobreaker.Settings{
		Name: "echovault-client",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
	}

	return &Client{
		cfg:   cfg,
		hc:    hc,
		brk:   gobreaker.NewCircuitBreaker(settings),
		cache: newQueryCache(cfg.ListCacheTTL),
	}, nil
}

// do 通过熔断器执行请求. 只有传输层错误计入熔断（后端宕机时快速失败）；
// 任何 HTTP 状态码都原样返回给调用方解读.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	v, err := c.brk.Execute(func() (any, error) {
		return c.hc.Do(req)
	})
	if err != nil {
		return nil, err
	}

	return v.(*http.Response), nil
}

// setIdentity 附加用户标识请求头.
func (c *Client) setIdentity(req *http.Request) {
	if c.cfg.UserID != "" {
		req.Header.Set("X-User-Id", c.cfg.UserID)
	}
}

func (c *Client) uploadURL(echoID string) string {
	return c.cfg.FileserverURL + "/upload/" + url.PathEscape(echoID)
}

func (c *Client) progressURL(echoID string) string {
	return c.cfg.FileserverURL + "/upload/" + url.PathEscape(echoID) + "/progress"
}

func (c *Client) downloadURL(echoID string) string {
	return c.cfg.FileserverURL + "/download/" + url.PathEscape(echoID)
}

func (c *Client) apiURL(path string) string {
	return c.cfg.APIURL + "/api/v1" + path
}

// drainClose 读尽并关闭响应体，便于底层连接复用.
func drainClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}

// decodeJSON 读取响应体并反序列化.
func decodeJSON(r io.Reader, out any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return sonic.Unmarshal(b, out)
}

// statusErr 将非预期状态码转为带正文摘要的错误.
func statusErr(resp *http.Response) error {
	const snippetLimit = 512

	b, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
	if len(b) == 0 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}
