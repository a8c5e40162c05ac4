package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/service"
	"github.com/sujaykar/echovault/pkg/log"
)

// UploadEcho 以 multipart 表单接收负载文件.
//
//	@Summary		上传负载文件
//	@Description	以表单字段 file 直接上传负载，分块落盘并写入对象存储，同时生成 .meta 边车
//	@Tags			文件服务
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			echoID	path		string				true	"记录标识"
//	@Param			file	formData	file				true	"上传的文件"
//	@Success		200		{object}	types.UploadMeta	"边车元数据"
//	@Failure		400		{object}	map[string]string	"请求参数错误"
//	@Failure		413		{object}	map[string]string	"负载超出限额"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Router			/upload/{echoID} [put]
func UploadEcho(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	file, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Str("echo_id", echoID).Msg("failed to get uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})

		return
	}

	src, err := file.Open()
	if err != nil {
		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})

		return
	}
	defer src.Close()

	svc := service.NewFileServerService(c.Request.Context())

	meta, err := svc.Upload(c.Request.Context(), echoID, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to upload file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	l.Info().Str("echo_id", echoID).Int64("size", meta.Size).Msg("upload stored")
	c.JSON(http.StatusOK, meta)
}

// DownloadEcho 流式返回负载文件.
//
//	@Summary		下载负载文件
//	@Description	按记录标识流式返回负载内容
//	@Tags			文件服务
//	@Produce		octet-stream
//	@Param			echoID	path		string				true	"记录标识"
//	@Success		200		{file}		file				"负载内容"
//	@Failure		404		{object}	map[string]string	"负载不存在"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Router			/download/{echoID} [get]
func DownloadEcho(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	svc := service.NewFileServerService(c.Request.Context())

	obj, stat, err := svc.Download(c.Request.Context(), echoID)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to download file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}
	defer func() { _ = obj.Close() }()

	contentType := stat.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, stat.Size, contentType, obj, nil)
}

// DeleteUpload 幂等删除负载与其 .meta 边车.
//
//	@Summary		删除上传负载
//	@Description	删除负载与 .meta 边车；负载不存在时也返回成功（幂等）
//	@Tags			文件服务
//	@Produce		json
//	@Param			echoID	path		string						true	"记录标识"
//	@Success		200		{object}	types.DeleteUploadResponse	"删除结果"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/upload/{echoID} [delete]
func DeleteUpload(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	svc := service.NewFileServerService(c.Request.Context())

	resp, err := svc.DeleteUpload(c.Request.Context(), echoID)
	if err != nil {
		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to delete upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadEchoProgress 查询上传进度.
//
//	@Summary		查询上传进度
//	@Description	返回指定记录的上传进度；上传中 total 为 null，完成后 done 为 true
//	@Tags			文件服务
//	@Produce		json
//	@Param			echoID	path		string					true	"记录标识"
//	@Success		200		{object}	types.UploadProgress	"上传进度"
//	@Failure		404		{object}	map[string]string		"未知的记录标识"
//	@Router			/upload/{echoID}/progress [get]
func UploadEchoProgress(c *gin.Context) {
	echoID := c.Param("echoID")

	svc := service.NewFileServerService(c.Request.Context())

	p, err := svc.Progress(c.Request.Context(), echoID)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, p)
}

// GetUploadMeta 读取 .meta 边车.
//
//	@Summary		读取上传元数据
//	@Description	返回上传完成时写入的 .meta 边车内容
//	@Tags			文件服务
//	@Produce		json
//	@Param			echoID	path		string				true	"记录标识"
//	@Success		200		{object}	types.UploadMeta	"边车元数据"
//	@Failure		404		{object}	map[string]string	"边车不存在"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Router			/meta/{echoID} [get]
func GetUploadMeta(c *gin.Context) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())
	echoID := c.Param("echoID")

	svc := service.NewFileServerService(c.Request.Context())

	meta, err := svc.Meta(c.Request.Context(), echoID)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		l.Error().Err(err).Str("echo_id", echoID).Msg("failed to read upload meta")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, meta)
}
