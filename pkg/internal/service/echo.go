package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	appcache "github.com/sujaykar/echovault/pkg/cache"
	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/model"
	"github.com/sujaykar/echovault/pkg/internal/storage/db"
	"github.com/sujaykar/echovault/pkg/internal/storage/kv"
	"github.com/sujaykar/echovault/pkg/internal/storage/mq"
	"github.com/sujaykar/echovault/pkg/internal/storage/s3"
	"github.com/sujaykar/echovault/pkg/internal/types"
	nlog "github.com/sujaykar/echovault/pkg/log"
)

// 记录服务的业务错误，供 handler 映射到 409/404.
var (
	ErrEchoExists   = errors.New("echo already exists")
	ErrEchoNotFound = errors.New("echo not found")
)

// 列表缓存策略常量.
const (
	// listCacheKeyPrefix 与客户端查询缓存键 "listEchoes" 保持同名前缀，便于排查
	listCacheKeyPrefix = "listEchoes:v1:"
	listCacheTTL       = 5 * time.Minute
)

// ListCachePattern 匹配全部用户的列表缓存键，供统计任务查询.
const ListCachePattern = listCacheKeyPrefix + "*"

// EchoService 负责回声记录的登记、查询与删除.
type EchoService struct {
	dbc   *db.Client
	kvc   *kv.Client
	mqc   *mq.Client
	s3c   *s3.Client
	cache *appcache.Cache
}

// NewEchoService 创建并返回一个新的 EchoService 实例.
func NewEchoService(c context.Context) *EchoService {
	svc := &EchoService{
		dbc: ctxPkg.GetDBClient(c),
		kvc: ctxPkg.GetKVClient(c),
		mqc: ctxPkg.GetMQClient(c),
		s3c: ctxPkg.GetS3Client(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, EchoService features limited")
	}

	if svc.kvc != nil {
		svc.cache = appcache.NewCache(svc.kvc)
	}

	return svc
}

// Create 登记一条回声记录，记录标识已存在时返回 ErrEchoExists.
func (e *EchoService) Create(ctx context.Context, user string, req *types.CreateEchoRequest) (*types.EchoInfo, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}

	if req == nil || req.ID == "" {
		return nil, fmt.Errorf("echo id is required")
	}

	if e.dbc == nil || e.dbc.GetDB() == nil {
		return nil, errors.New("db not initialized")
	}

	dbx := e.dbc.GetDB().WithContext(ctx)

	// 主键为客户端生成，重复登记视为冲突
	var exists model.Echo
	if err := dbx.Select("id").Where("id = ?", req.ID).First(&exists).Error; err == nil {
		return nil, ErrEchoExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check echo %s: %w", req.ID, err)
	}

	rec := model.Echo{
		ID:             req.ID,
		UserID:         user,
		DisplayName:    req.DisplayName,
		SourceFilePath: req.SourceFilePath,
		MediaType:      req.MediaType,
		Text:           req.Text,
	}

	if err := dbx.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEchoExists
		}

		return nil, fmt.Errorf("create echo %s: %w", req.ID, err)
	}

	e.invalidateListCache(ctx, user)
	e.publishEchoCreated(ctx, &rec)

	info := echoToInfo(&rec)

	return &info, nil
}

// List 返回用户的记录，按创建时间倒序；全量列表经 KV 读穿缓存，
// limit/offset 窗口在缓存结果上截取，Total 始终为全量条数.
func (e *EchoService) List(ctx context.Context, user string, q *types.ListEchoesQuery) (*types.ListEchoesResponse, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}

	if e.dbc == nil || e.dbc.GetDB() == nil {
		return nil, errors.New("db not initialized")
	}

	if q == nil {
		q = &types.ListEchoesQuery{}
	}

	echoes, err := e.loadEchoes(ctx, user)
	if err != nil {
		return nil, err
	}

	total := len(echoes)

	start := q.Offset
	if start < 0 {
		start = 0
	}

	if start > total {
		start = total
	}

	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}

	return &types.ListEchoesResponse{Echoes: echoes[start:end], Total: total}, nil
}

// loadEchoes 取用户的全量记录，缓存未命中时回源数据库并回填.
func (e *EchoService) loadEchoes(ctx context.Context, user string) ([]types.EchoInfo, error) {
	key := listCacheKey(user)

	if e.cache != nil {
		if echoes, err := appcache.Get[[]types.EchoInfo](ctx, e.cache, key); err == nil {
			return echoes, nil
		}
	}

	var rows []model.Echo
	if err := e.dbc.GetDB().WithContext(ctx).
		Where("user_id = ?", user).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list echoes: %w", err)
	}

	echoes := make([]types.EchoInfo, 0, len(rows))
	for i := range rows {
		echoes = append(echoes, echoToInfo(&rows[i]))
	}

	if e.cache != nil {
		if err := appcache.Set(ctx, e.cache, key, echoes, listCacheTTL); err != nil {
			nlog.Logger().Warn().Err(err).Str("key", key).Msg("cache echo list failed")
		}
	}

	return echoes, nil
}

// Get 返回单条记录，不存在（或已删除）时返回 ErrEchoNotFound.
func (e *EchoService) Get(ctx context.Context, user, echoID string) (*types.EchoInfo, error) {
	rec, err := e.findOwned(ctx, user, echoID)
	if err != nil {
		return nil, err
	}

	info := echoToInfo(rec)

	return &info, nil
}

// Delete 软删除记录，并尽力清理对象存储中的负载与 .meta 边车.
func (e *EchoService) Delete(ctx context.Context, user, echoID string) (*types.DeleteEchoResponse, error) {
	rec, err := e.findOwned(ctx, user, echoID)
	if err != nil {
		return nil, err
	}

	if err := e.dbc.GetDB().WithContext(ctx).Delete(rec).Error; err != nil {
		return nil, fmt.Errorf("delete echo %s: %w", echoID, err)
	}

	// 对象清理失败不阻塞删除，孤儿扫描任务会兜底
	var removed []string
	if e.s3c != nil {
		removed = removeUploadObjects(ctx, e.s3c, echoID)
	}

	e.invalidateListCache(ctx, user)
	e.publishEchoDeleted(ctx, echoID, user, removed)

	return &types.DeleteEchoResponse{ID: echoID, RemovedObjects: removed}, nil
}

// UpdateText 更新记录的转写文本.
func (e *EchoService) UpdateText(ctx context.Context, user, echoID, text string) (*types.EchoInfo, error) {
	rec, err := e.findOwned(ctx, user, echoID)
	if err != nil {
		return nil, err
	}

	if err := e.dbc.GetDB().WithContext(ctx).Model(rec).Update("text", text).Error; err != nil {
		return nil, fmt.Errorf("update echo text %s: %w", echoID, err)
	}

	rec.Text = text

	e.invalidateListCache(ctx, user)
	e.publishEchoTextUpdated(ctx, echoID, user, len(text))

	info := echoToInfo(rec)

	return &info, nil
}

// ---- 内部工具 ----

// findOwned 按用户与标识查询记录，未找到时返回 ErrEchoNotFound.
func (e *EchoService) findOwned(ctx context.Context, user, echoID string) (*model.Echo, error) {
	if user == "" || echoID == "" {
		return nil, fmt.Errorf("user/echoID is required")
	}

	if e.dbc == nil || e.dbc.GetDB() == nil {
		return nil, errors.New("db not initialized")
	}

	var rec model.Echo
	if err := e.dbc.GetDB().WithContext(ctx).
		Where("id = ? AND user_id = ?", echoID, user).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEchoNotFound
		}

		return nil, fmt.Errorf("find echo %s: %w", echoID, err)
	}

	return &rec, nil
}

// invalidateListCache 使该用户的列表缓存失效，失败仅记录日志.
func (e *EchoService) invalidateListCache(ctx context.Context, user string) {
	if e.cache == nil {
		return
	}

	if err := e.cache.Delete(ctx, listCacheKey(user)); err != nil {
		nlog.Logger().Warn().Err(err).Str("user", user).Msg("invalidate echo list cache failed")
	}
}

func listCacheKey(user string) string { return listCacheKeyPrefix + user }

// echoToInfo 转换为对外的 EchoInfo 结构.
func echoToInfo(rec *model.Echo) types.EchoInfo {
	return types.EchoInfo{
		ID:             rec.ID,
		UserID:         rec.UserID,
		DisplayName:    rec.DisplayName,
		SourceFilePath: rec.SourceFilePath,
		MediaType:      rec.MediaType,
		Text:           rec.Text,
		CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
