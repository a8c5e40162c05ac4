package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
)

// Echo 一条回声记录.
type Echo struct {
	ID             string `json:"id"`
	UserID         string `json:"userId,omitempty"`
	DisplayName    string `json:"displayName"`
	SourceFilePath string `json:"sourceFilePath"`
	MediaType      string `json:"mediaType"`
	Text           string `json:"text"`
	CreatedAt      string `json:"createdAt,omitempty"` // RFC3339
	UpdatedAt      string `json:"updatedAt,omitempty"` // RFC3339
}

// EchoList 记录列表，按创建时间倒序.
type EchoList struct {
	Echoes []Echo `json:"echoes"`
	Total  int    `json:"total"`
}

// UploadProgress 上传进度. 进行中 Total 为 nil，完成后 Done 为 true.
type UploadProgress struct {
	Received     int64  `json:"received"`
	Total        *int64 `json:"total"`
	Done         bool   `json:"done"`
	UploadedFile string `json:"uploaded_file,omitempty"`
}

type updateTextRequest struct {
	Text string `json:"text"`
}

// ListEchoes 列出当前用户的全部记录.
// 结果经本地 TTL 缓存，并发未命中用 singleflight 合并为一次回源.
// 返回的切片在缓存期内可能被多个调用方共享，调用方不应就地修改.
func (c *Client) ListEchoes(ctx context.Context) (*EchoList, error) {
	var cached EchoList
	if c.cache.get(listEchoesKey, &cached) {
		return &cached, nil
	}

	v, err := c.cache.fetch(listEchoesKey, func() (any, error) {
		list, err := c.listEchoes(ctx)
		if err != nil {
			return nil, err
		}

		c.cache.set(listEchoesKey, list)

		return list, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*EchoList), nil
}

// InvalidateListCache 手动移除本地 listEchoes 缓存.
func (c *Client) InvalidateListCache() {
	c.cache.invalidate(listEchoesKey)
}

func (c *Client) listEchoes(ctx context.Context) (*EchoList, error) {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, c.apiURL("/echoes"), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list echoes: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list echoes: %w", statusErr(resp))
	}

	var list EchoList
	if err := decodeJSON(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	return &list, nil
}

// GetEcho 获取单条记录，记录不存在时返回 ErrNotFound.
func (c *Client) GetEcho(ctx context.Context, echoID string) (*Echo, error) {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, c.apiURL("/echoes/"+url.PathEscape(echoID)), nil)
	if err != nil {
		return nil, fmt.Errorf("build get request: %w", err)
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("get echo: %w", err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("get echo %s: %w", echoID, ErrNotFound)
	default:
		return nil, fmt.Errorf("get echo: %w", statusErr(resp))
	}

	var echo Echo
	if err := decodeJSON(resp.Body, &echo); err != nil {
		return nil, fmt.Errorf("decode echo response: %w", err)
	}

	return &echo, nil
}

// DeleteEcho 删除记录及其负载，记录不存在时返回 ErrNotFound.
// 删除成功后本地 listEchoes 缓存同步失效.
func (c *Client) DeleteEcho(ctx context.Context, echoID string) error {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodDelete, c.apiURL("/echoes/"+url.PathEscape(echoID)), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("delete echo: %w", err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("delete echo %s: %w", echoID, ErrNotFound)
	default:
		return fmt.Errorf("delete echo: %w", statusErr(resp))
	}

	c.cache.invalidate(listEchoesKey)

	return nil
}

// UpdateEchoText 更新记录的转写文本，返回更新后的记录.
func (c *Client) UpdateEchoText(ctx context.Context, echoID, text string) (*Echo, error) {
	b, err := sonic.Marshal(updateTextRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode text payload: %w", err)
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodPatch, c.apiURL("/echoes/"+url.PathEscape(echoID)+"/text"), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build text request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("update echo text: %w", err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("update echo %s: %w", echoID, ErrNotFound)
	default:
		return nil, fmt.Errorf("update echo text: %w", statusErr(resp))
	}

	var echo Echo
	if err := decodeJSON(resp.Body, &echo); err != nil {
		return nil, fmt.Errorf("decode echo response: %w", err)
	}

	c.cache.invalidate(listEchoesKey)

	return &echo, nil
}

// DownloadEcho 下载负载内容，返回响应体与内容类型，调用方负责 Close.
func (c *Client) DownloadEcho(ctx context.Context, echoID string) (io.ReadCloser, string, error) {
	dctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)

	req, err := http.NewRequestWithContext(dctx, http.MethodGet, c.downloadURL(echoID), nil)
	if err != nil {
		cancel()

		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		cancel()

		return nil, "", fmt.Errorf("download echo: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		drainClose(resp.Body)
		cancel()

		return nil, "", fmt.Errorf("download echo %s: %w", echoID, ErrNotFound)
	default:
		err := statusErr(resp)
		drainClose(resp.Body)
		cancel()

		return nil, "", fmt.Errorf("download echo: %w", err)
	}

	body := &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}

	return body, resp.Header.Get("Content-Type"), nil
}

// Progress 查询上传进度，未知标识返回 ErrNotFound.
func (c *Client) Progress(ctx context.Context, echoID string) (*UploadProgress, error) {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, c.progressURL(echoID), nil)
	if err != nil {
		return nil, fmt.Errorf("build progress request: %w", err)
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("progress %s: %w", echoID, ErrNotFound)
	default:
		return nil, fmt.Errorf("query progress: %w", statusErr(resp))
	}

	var p UploadProgress
	if err := decodeJSON(resp.Body, &p); err != nil {
		return nil, fmt.Errorf("decode progress response: %w", err)
	}

	return &p, nil
}

// cancelReadCloser 让流式响应体的 Close 一并取消请求 context.
type cancelReadCloser struct {
	io.ReadCloser

	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()

	return err
}
