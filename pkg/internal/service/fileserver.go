package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"github.com/sujaykar/echovault/pkg/configs"
	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/model"
	"github.com/sujaykar/echovault/pkg/internal/storage/db"
	"github.com/sujaykar/echovault/pkg/internal/storage/mq"
	"github.com/sujaykar/echovault/pkg/internal/storage/s3"
	"github.com/sujaykar/echovault/pkg/internal/types"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// 文件服务的业务错误，供 handler 映射到 404/413.
var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrUploadTooLarge = errors.New("upload too large")
)

const (
	metaSuffix      = ".meta"
	metaContentType = "application/json"
)

// uploadTracker 跟踪各记录的上传进度，进程内共享.
type uploadTracker struct {
	mu      sync.RWMutex
	uploads map[string]types.UploadProgress
}

func newUploadTracker() *uploadTracker {
	return &uploadTracker{uploads: make(map[string]types.UploadProgress)}
}

func (t *uploadTracker) begin(echoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.uploads[echoID] = types.UploadProgress{Received: 0, Total: nil, Done: false}
}

func (t *uploadTracker) add(echoID string, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.uploads[echoID]
	p.Received += n
	t.uploads[echoID] = p
}

func (t *uploadTracker) finish(echoID string, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.uploads[echoID] = types.UploadProgress{
		Received:     total,
		Total:        &total,
		Done:         true,
		UploadedFile: echoID,
	}
}

func (t *uploadTracker) forget(echoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.uploads, echoID)
}

func (t *uploadTracker) get(echoID string) (types.UploadProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.uploads[echoID]

	return p, ok
}

// 全局单例的进度跟踪器，service 按请求构造，进度需跨请求可见.
var defaultTracker = newUploadTracker()

// FileServerService 负责负载文件的上传、下载与清理.
type FileServerService struct {
	s3c     *s3.Client
	dbc     *db.Client
	mqc     *mq.Client
	cfg     configs.FileServerConfig
	tracker *uploadTracker
}

// NewFileServerService 创建并返回一个新的 FileServerService 实例.
func NewFileServerService(c context.Context) *FileServerService {
	svc := &FileServerService{
		s3c:     ctxPkg.GetS3Client(c),
		dbc:     ctxPkg.GetDBClient(c),
		mqc:     ctxPkg.GetMQClient(c),
		cfg:     configs.GetConfig().FileServer,
		tracker: defaultTracker,
	}

	if svc.s3c == nil {
		nlog.Logger().Warn().Msg("S3 client not initialized, FileServerService features limited")
	}

	return svc
}

// Upload 分块接收负载并写入对象存储，随后写入 .meta 边车，返回边车内容.
// declaredSize 为客户端声明的大小（未知时传 0），仅用于前置限额检查.
func (f *FileServerService) Upload(ctx context.Context, echoID string, src io.Reader, declaredSize int64, contentType string) (*types.UploadMeta, error) {
	if echoID == "" {
		return nil, fmt.Errorf("echoID is required")
	}

	if f.s3c == nil {
		return nil, errors.New("s3 not initialized")
	}

	maxBytes := f.cfg.MaxUploadSizeBytes()
	if maxBytes > 0 && declaredSize > maxBytes {
		return nil, ErrUploadTooLarge
	}

	f.tracker.begin(echoID)

	total, tmp, err := f.spoolUpload(echoID, src, maxBytes)
	if err != nil {
		f.tracker.forget(echoID)
		return nil, err
	}

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	meta, err := f.storeUpload(ctx, echoID, tmp, total, contentType)
	if err != nil {
		f.tracker.forget(echoID)
		return nil, err
	}

	f.tracker.finish(echoID, total)
	f.publishUploadCompleted(ctx, echoID, meta, contentType)

	return meta, nil
}

// spoolUpload 将请求体分块落到临时文件，期间更新进度.
func (f *FileServerService) spoolUpload(echoID string, src io.Reader, maxBytes int64) (int64, *os.File, error) {
	tmp, err := os.CreateTemp("", "echovault-upload-*")
	if err != nil {
		return 0, nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	chunk := f.cfg.ChunkSize
	if chunk <= 0 {
		chunk = configs.DefaultFSChunkSize
	}

	var total int64

	buf := make([]byte, chunk)

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				cleanup()
				return 0, nil, fmt.Errorf("spool upload: %w", werr)
			}

			total += int64(n)
			f.tracker.add(echoID, int64(n))

			if maxBytes > 0 && total > maxBytes {
				cleanup()
				return 0, nil, ErrUploadTooLarge
			}
		}

		if rerr == io.EOF {
			break
		}

		if rerr != nil {
			cleanup()
			return 0, nil, fmt.Errorf("read upload: %w", rerr)
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return 0, nil, fmt.Errorf("rewind temp file: %w", err)
	}

	return total, tmp, nil
}

// storeUpload 将负载与 .meta 边车写入对象存储；边车写失败时回收已写入的负载.
func (f *FileServerService) storeUpload(ctx context.Context, echoID string, payload io.Reader, total int64, contentType string) (*types.UploadMeta, error) {
	bucket := f.s3c.Bucket()
	payloadKey := f.payloadKey(echoID)

	opts := minio.PutObjectOptions{}
	if contentType != "" {
		opts.ContentType = contentType
	}

	if _, err := f.s3c.PutObject(ctx, bucket, payloadKey, payload, total, opts); err != nil {
		return nil, fmt.Errorf("store payload %s: %w", payloadKey, err)
	}

	meta := &types.UploadMeta{
		OriginalPath: echoID,
		DisplayName:  strings.TrimSuffix(echoID, filepath.Ext(echoID)),
		Size:         total,
		DrivePath:    payloadKey,
	}

	data, err := sonic.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta for %s: %w", echoID, err)
	}

	metaKey := f.metaKey(echoID)
	if _, err := f.s3c.PutObject(ctx, bucket, metaKey, strings.NewReader(string(data)), int64(len(data)),
		minio.PutObjectOptions{ContentType: metaContentType}); err != nil {
		// 避免留下无边车的半成品负载
		if rmErr := f.s3c.RemoveObject(ctx, bucket, payloadKey, minio.RemoveObjectOptions{}); rmErr != nil {
			nlog.Logger().Warn().Err(rmErr).Str("object", payloadKey).Msg("rollback payload after meta failure")
		}

		return nil, fmt.Errorf("store meta %s: %w", metaKey, err)
	}

	return meta, nil
}

// Download 返回负载对象的读取器与基础信息，由 handler 负责流式响应.
// 调用方必须关闭返回的 ReadCloser.
func (f *FileServerService) Download(ctx context.Context, echoID string) (io.ReadCloser, *types.UploadObjectStat, error) {
	if echoID == "" {
		return nil, nil, fmt.Errorf("echoID is required")
	}

	if f.s3c == nil {
		return nil, nil, errors.New("s3 not initialized")
	}

	bucket := f.s3c.Bucket()
	key := f.payloadKey(echoID)

	stat, err := f.s3c.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, nil, mapObjectErr(err, echoID)
	}

	obj, err := f.s3c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get payload %s: %w", key, err)
	}

	return obj, &types.UploadObjectStat{
		Size:        stat.Size,
		ContentType: stat.ContentType,
		ETag:        stat.ETag,
	}, nil
}

// Meta 读取并解析 .meta 边车.
func (f *FileServerService) Meta(ctx context.Context, echoID string) (*types.UploadMeta, error) {
	if echoID == "" {
		return nil, fmt.Errorf("echoID is required")
	}

	if f.s3c == nil {
		return nil, errors.New("s3 not initialized")
	}

	bucket := f.s3c.Bucket()
	key := f.metaKey(echoID)

	obj, err := f.s3c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get meta %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapObjectErr(err, echoID)
	}

	var meta types.UploadMeta
	if err := sonic.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta %s: %w", key, err)
	}

	return &meta, nil
}

// DeleteUpload 幂等删除负载与 .meta 边车，返回实际删除的对象键.
func (f *FileServerService) DeleteUpload(ctx context.Context, echoID string) (*types.DeleteUploadResponse, error) {
	if echoID == "" {
		return nil, fmt.Errorf("echoID is required")
	}

	if f.s3c == nil {
		return nil, errors.New("s3 not initialized")
	}

	removed := removeUploadObjects(ctx, f.s3c, echoID)
	f.tracker.forget(echoID)

	if len(removed) > 0 {
		f.publishUploadRemoved(ctx, echoID, "delete")
	}

	return &types.DeleteUploadResponse{EchoID: echoID, Removed: removed}, nil
}

// Progress 返回指定记录的上传进度，未知标识返回 ErrUploadNotFound.
func (f *FileServerService) Progress(_ context.Context, echoID string) (*types.UploadProgress, error) {
	if echoID == "" {
		return nil, fmt.Errorf("echoID is required")
	}

	p, ok := f.tracker.get(echoID)
	if !ok {
		return nil, ErrUploadNotFound
	}

	return &p, nil
}

// SweepOrphanUploads 清理早于保留期且没有对应记录的负载对象，返回清理条数.
// 上传成功但登记失败、且客户端补偿清理也失败时会留下这类孤儿.
func (f *FileServerService) SweepOrphanUploads(ctx context.Context) (int, error) {
	if f.s3c == nil {
		return 0, errors.New("s3 not initialized")
	}

	if f.dbc == nil || f.dbc.GetDB() == nil {
		return 0, errors.New("db not initialized")
	}

	cutoff := time.Now().UTC().Add(-time.Duration(f.cfg.OrphanAgeMin) * time.Minute)
	bucket := f.s3c.Bucket()
	prefix := f.cfg.ObjectPrefix

	objectCh := f.s3c.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})

	swept := 0

	for object := range objectCh {
		if object.Err != nil {
			return swept, fmt.Errorf("list uploads: %w", object.Err)
		}

		if strings.HasSuffix(object.Key, metaSuffix) {
			continue
		}

		if object.LastModified.After(cutoff) {
			continue
		}

		echoID := strings.TrimPrefix(object.Key, prefix)

		var rec model.Echo
		err := f.dbc.GetDB().WithContext(ctx).Select("id").Where("id = ?", echoID).First(&rec).Error

		if err == nil {
			continue // 已登记，不是孤儿
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return swept, fmt.Errorf("check echo %s: %w", echoID, err)
		}

		removed := removeUploadObjects(ctx, f.s3c, echoID)
		if len(removed) > 0 {
			f.tracker.forget(echoID)
			f.publishUploadRemoved(ctx, echoID, "sweep")

			swept++
		}
	}

	return swept, nil
}

// ---- 内部工具 ----

func (f *FileServerService) payloadKey(echoID string) string { return f.cfg.ObjectPrefix + echoID }

func (f *FileServerService) metaKey(echoID string) string {
	return f.cfg.ObjectPrefix + echoID + metaSuffix
}

// removeUploadObjects 尽力删除负载与边车，返回实际删除的对象键.
func removeUploadObjects(ctx context.Context, s3c *s3.Client, echoID string) []string {
	prefix := configs.GetConfig().FileServer.ObjectPrefix
	bucket := s3c.Bucket()
	keys := []string{prefix + echoID, prefix + echoID + metaSuffix}

	removed := make([]string, 0, len(keys))

	for _, key := range keys {
		if _, err := s3c.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
			continue // 不存在视为已删除
		}

		if err := s3c.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
			nlog.Logger().Warn().Err(err).Str("object", key).Msg("remove upload object failed")
			continue
		}

		removed = append(removed, key)
	}

	return removed
}

// mapObjectErr 将对象存储的 NoSuchKey 映射为 ErrUploadNotFound.
func mapObjectErr(err error, echoID string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return ErrUploadNotFound
	}

	return fmt.Errorf("object storage for %s: %w", echoID, err)
}
