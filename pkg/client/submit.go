package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/bytedance/sonic"
)

// 登记时的固定字段值.
const (
	// DefaultDisplayName 新记录的展示名，登记后可再改.
	DefaultDisplayName = "My Echo"
	// sourceFilePrefix 登记负载时 sourceFilePath 的固定前缀.
	sourceFilePrefix = "fileserver/"
	// uploadFieldName 上传表单的文件字段名.
	uploadFieldName = "file"
)

// createEchoRequest 与服务端登记接口的请求体一致.
// Text 不带 omitempty：登记时固定携带空文本字段.
type createEchoRequest struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	SourceFilePath string `json:"sourceFilePath"`
	MediaType      string `json:"mediaType"`
	Text           string `json:"text"`
}

// SubmitNewArtifact 两阶段提交一条新回声：
//  1. PUT {FileserverURL}/upload/{echoID}，multipart 字段 "file" 携带负载
//  2. POST {APIURL}/api/v1/echoes 登记记录，displayName 与 text 为固定值
//
// 第一阶段失败则不发起第二阶段；第二阶段失败时尽力删除已上传的负载再返回错误.
// 两阶段都成功后，本地 listEchoes 查询缓存恰好失效一次.
func (c *Client) SubmitNewArtifact(ctx context.Context, echoID string, payload io.Reader, mediaType string) (*Echo, error) {
	if echoID == "" {
		return nil, fmt.Errorf("client: empty echo id")
	}

	if err := c.upload(ctx, echoID, payload, mediaType); err != nil {
		return nil, err
	}

	echo, err := c.register(ctx, echoID, mediaType)
	if err != nil {
		c.cleanupUpload(ctx, echoID)

		return nil, err
	}

	c.cache.invalidate(listEchoesKey)

	return echo, nil
}

// upload 第一阶段：以 multipart 表单上传负载，非 2xx 视为拒绝.
func (c *Client) upload(ctx context.Context, echoID string, payload io.Reader, mediaType string) error {
	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, echoID))

	if mediaType != "" {
		h.Set("Content-Type", mediaType)
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	if _, err := io.Copy(part, payload); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finish multipart: %w", err)
	}

	uctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(uctx, http.MethodPut, c.uploadURL(echoID), &body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %v", ErrUploadRejected, statusErr(resp))
	}

	return nil
}

// register 第二阶段：登记记录.
func (c *Client) register(ctx context.Context, echoID, mediaType string) (*Echo, error) {
	reqBody := createEchoRequest{
		ID:             echoID,
		DisplayName:    DefaultDisplayName,
		SourceFilePath: sourceFilePrefix + echoID,
		MediaType:      mediaType,
		Text:           "",
	}

	b, err := sonic.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode register payload: %w", err)
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, c.apiURL("/echoes"), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build register request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, statusErr(resp))
	}

	var echo Echo
	if err := decodeJSON(resp.Body, &echo); err != nil {
		// 201 即登记成功，响应体解析失败不触发补偿，用本地已知字段兜底
		echo = Echo{
			ID:             echoID,
			DisplayName:    DefaultDisplayName,
			SourceFilePath: reqBody.SourceFilePath,
			MediaType:      mediaType,
		}
	}

	return &echo, nil
}

// cleanupUpload 登记失败后的补偿删除，尽力而为.
// 用 WithoutCancel 派生超时：补偿不应随已失败的主流程一起被取消.
func (c *Client) cleanupUpload(ctx context.Context, echoID string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(dctx, http.MethodDelete, c.uploadURL(echoID), nil)
	if err != nil {
		return
	}

	c.setIdentity(req)

	resp, err := c.do(req)
	if err != nil {
		return
	}

	drainClose(resp.Body)
}
