package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/service"
	"github.com/sujaykar/echovault/pkg/internal/types"
	"github.com/sujaykar/echovault/pkg/log"
	"github.com/sujaykar/echovault/pkg/rule"
)

// CreateEcho 登记一条回声记录.
//
//	@Summary		登记回声记录
//	@Description	上传完成后登记记录元数据；记录标识由客户端生成，重复登记返回 409
//	@Tags			回声记录
//	@Accept			json
//	@Produce		json
//	@Param			echo	body		types.CreateEchoRequest	true	"登记请求"
//	@Success		201		{object}	types.EchoInfo			"登记成功"
//	@Failure		400		{object}	map[string]string		"请求参数错误"
//	@Failure		409		{object}	map[string]string		"记录已存在"
//	@Failure		500		{object}	map[string]string		"服务器内部错误"
//	@Router			/api/v1/echoes [post]
func CreateEcho(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())

	var req types.CreateEchoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Str("echo_id", req.ID).Msg("invalid echo fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fields", "fields": rule.Errors(err)})

		return
	}

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewEchoService(c.Request.Context())

	info, err := svc.Create(c.Request.Context(), user, &req)
	if err != nil {
		if errors.Is(err, service.ErrEchoExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", req.ID).Msg("failed to create echo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	l.Info().Str("echo_id", info.ID).Str("user", user).Msg("echo created")
	c.JSON(http.StatusCreated, info)
}

// 单页最多返回的记录条数.
const maxListLimit = 500

// ListEchoes 列出用户的回声记录.
//
//	@Summary		列出回声记录
//	@Description	按创建时间倒序返回当前用户的记录，limit 为 0 时不分页
//	@Tags			回声记录
//	@Produce		json
//	@Param			limit	query		int							false	"每页条数（0 表示全部，最大 500）"
//	@Param			offset	query		int							false	"跳过条数"
//	@Success		200		{object}	types.ListEchoesResponse	"记录列表"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/echoes [get]
func ListEchoes(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())

	var q types.ListEchoesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		l.Warn().Err(err).Msg("invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	// 合理默认值
	if q.Limit < 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}

	if q.Offset < 0 {
		q.Offset = 0
	}

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewEchoService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user, &q)
	if err != nil {
		l.Error().Err(err).Str("user", user).Msg("failed to list echoes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEcho 获取单条回声记录.
//
//	@Summary		获取回声记录
//	@Description	按记录标识返回单条记录，不存在时返回 404
//	@Tags			回声记录
//	@Produce		json
//	@Param			echoID	path		string				true	"记录标识"
//	@Success		200		{object}	types.EchoInfo		"记录详情"
//	@Failure		404		{object}	map[string]string	"记录不存在"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Router			/api/v1/echoes/{echoID} [get]
func GetEcho(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewEchoService(c.Request.Context())

	info, err := svc.Get(c.Request.Context(), user, echoID)
	if err != nil {
		if errors.Is(err, service.ErrEchoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to get echo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, info)
}

// DeleteEcho 删除回声记录并清理其负载.
//
//	@Summary		删除回声记录
//	@Description	软删除记录，并尽力清理对象存储中的负载与 .meta 边车
//	@Tags			回声记录
//	@Produce		json
//	@Param			echoID	path		string						true	"记录标识"
//	@Success		200		{object}	types.DeleteEchoResponse	"删除结果"
//	@Failure		404		{object}	map[string]string			"记录不存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/echoes/{echoID} [delete]
func DeleteEcho(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewEchoService(c.Request.Context())

	resp, err := svc.Delete(c.Request.Context(), user, echoID)
	if err != nil {
		if errors.Is(err, service.ErrEchoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to delete echo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	l.Info().Str("echo_id", echoID).Str("user", user).Msg("echo deleted")
	c.JSON(http.StatusOK, resp)
}

// UpdateEchoText 更新记录的转写文本.
//
//	@Summary		更新转写文本
//	@Description	替换指定记录的转写文本
//	@Tags			回声记录
//	@Accept			json
//	@Produce		json
//	@Param			echoID	path		string						true	"记录标识"
//	@Param			text	body		types.UpdateEchoTextRequest	true	"文本内容"
//	@Success		200		{object}	types.EchoInfo				"更新后的记录"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		404		{object}	map[string]string			"记录不存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/echoes/{echoID}/text [patch]
func UpdateEchoText(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	var req types.UpdateEchoTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	user, err := checkUser(c)
	if user == "" || err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewEchoService(c.Request.Context())

	info, err := svc.UpdateText(c.Request.Context(), user, echoID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEchoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to update echo text")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, info)
}
