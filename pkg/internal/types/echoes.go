package types

// CreateEchoRequest 登记回声记录请求.
// 字段名与客户端 SDK 的 JSON 键保持一致（camelCase）.
type CreateEchoRequest struct {
	ID             string `json:"id"             rule:"required,max=64"`   // 客户端生成的记录标识
	DisplayName    string `json:"displayName"    rule:"required,max=128"`  // 展示名
	SourceFilePath string `json:"sourceFilePath" rule:"required,max=1024"` // 客户端侧资源定位（fileserver/<id>）
	MediaType      string `json:"mediaType"      rule:"required,max=255"`  // 媒体类型（audio/webm、video/mp4 等）
	Text           string `json:"text"`                                    // 转写文本，登记时通常为空
}

// ListEchoesQuery 列表查询参数，零值表示不分页.
type ListEchoesQuery struct {
	Limit  int `form:"limit"  json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// UpdateEchoTextRequest 更新转写文本请求.
type UpdateEchoTextRequest struct {
	Text string `json:"text" rule:"max=1048576"`
}

// EchoInfo 单条回声记录详情.
type EchoInfo struct {
	ID             string `json:"id"`
	UserID         string `json:"userId,omitempty"`
	DisplayName    string `json:"displayName"`
	SourceFilePath string `json:"sourceFilePath"`
	MediaType      string `json:"mediaType"`
	Text           string `json:"text"`
	CreatedAt      string `json:"createdAt"` // RFC3339
	UpdatedAt      string `json:"updatedAt"` // RFC3339
}

// ListEchoesResponse 记录列表响应，按创建时间倒序.
type ListEchoesResponse struct {
	Echoes []EchoInfo `json:"echoes"`
	Total  int        `json:"total"`
}

// DeleteEchoResponse 删除记录响应.
type DeleteEchoResponse struct {
	ID string `json:"id"`
	// RemovedObjects 为随记录一并清理的对象键（负载与 .meta 边车）
	RemovedObjects []string `json:"removedObjects,omitempty"`
}
