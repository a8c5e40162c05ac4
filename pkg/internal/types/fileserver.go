package types

// UploadMeta 上传完成后写入对象存储的 .meta 边车内容，同时作为上传响应返回.
// 键名保持 snake_case，便于既有消费方直接解析.
type UploadMeta struct {
	OriginalPath string `json:"original_path"` // 上传时的原始路径（即记录标识）
	DisplayName  string `json:"display_name"`  // 去扩展名后的展示名
	Size         int64  `json:"size"`          // 负载字节数
	DrivePath    string `json:"drive_path"`    // 对象存储中的负载键
}

// UploadProgress 上传进度.
// 上传进行中 Total 为 null（总量未知），完成后 Total == Received 且 Done 为 true.
type UploadProgress struct {
	Received     int64  `json:"received"`
	Total        *int64 `json:"total"`
	Done         bool   `json:"done"`
	UploadedFile string `json:"uploaded_file,omitempty"` // 完成后填充为记录标识
}

// DeleteUploadResponse 删除上传负载响应.
type DeleteUploadResponse struct {
	EchoID string `json:"echo_id"`
	// Removed 为实际删除的对象键，负载不存在时为空（幂等删除）
	Removed []string `json:"removed,omitempty"`
}

// UploadObjectStat 负载对象的基础信息，用于下载响应头.
type UploadObjectStat struct {
	Size        int64
	ContentType string
	ETag        string
}
