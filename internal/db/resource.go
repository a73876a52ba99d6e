package db

import "gorm.io/gorm"

const (
	// ResourceKindMeditation 表示冥想音频资源。
	ResourceKindMeditation = "meditation"
	// ResourceKindMusic 表示放松音乐资源。
	ResourceKindMusic = "music"
)

// Resource 定义了冥想/音乐资源模型
// MediaURL 指向音频文件，DurationSec 用于播放器展示
type Resource struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	Kind        string `gorm:"size:20;not null;index"`
	MediaURL    string `gorm:"not null"`
	CoverURL    string
	DurationSec int
	Status      string `gorm:"size:20;not null;default:published;index"`
	CategoryID  uint   `gorm:"index"`
	Category    Category
}
