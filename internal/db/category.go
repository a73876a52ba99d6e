package db

import "gorm.io/gorm"

// Category 定义了内容分类模型
// Kind 区分分类服务的内容形态：article（文章）或 resource（冥想/音乐资源）
type Category struct {
	gorm.Model
	Name string `gorm:"size:100;not null;index:idx_category_name_kind,unique"`
	Kind string `gorm:"size:20;not null;index:idx_category_name_kind,unique"`
}
