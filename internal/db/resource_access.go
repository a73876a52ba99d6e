package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	// AccessKindArticle 表示文章阅读事件。
	AccessKindArticle = "ARTICLE"
	// AccessKindMeditation 表示冥想资源播放事件。
	AccessKindMeditation = "MEDITATION"
	// AccessKindMusic 表示音乐资源播放事件。
	AccessKindMusic = "MUSIC"
)

// ResourceAccess 记录学生访问内容的事件
// 徽章统计按 (user_id, kind) 计数，TargetID 指向文章或资源
// AccessedAt 单独存储以便去重窗口判断，不依赖 CreatedAt
type ResourceAccess struct {
	gorm.Model
	UserID     uint   `gorm:"index;index:idx_access_user_kind"`
	Kind       string `gorm:"size:20;not null;index:idx_access_user_kind"`
	TargetID   uint   `gorm:"index"`
	AccessedAt time.Time
}

// TableName 自定义表名以保持命名一致。
func (ResourceAccess) TableName() string {
	return "resource_accesses"
}
