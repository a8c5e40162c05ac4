package model

import (
	"time"

	"gorm.io/gorm"
)

// Echo 回声记录模型.
type Echo struct {
	// 标识由客户端生成（ULID 或任意非空串），作为主键
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// 归属用户标识，匿名客户端自带生成的 ID
	UserID      string `gorm:"size:255;index"   json:"user_id"`
	DisplayName string `gorm:"size:512"         json:"display_name"`
	// 客户端侧资源定位（fileserver/<id>），与对象存储键解耦
	SourceFilePath string `gorm:"size:1024"     json:"source_file_path"`
	MediaType      string `gorm:"size:255;index" json:"media_type"`
	// 转写文本，登记时为空，后续通过 PATCH 填充
	Text string `gorm:"type:text" json:"text"`
	// 软删除与审计
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index"      json:"-"`
}
