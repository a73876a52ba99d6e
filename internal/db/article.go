package db

import "gorm.io/gorm"

// Article 定义了自助文章模型
// Content 为 Markdown 原文，渲染与清洗在 handler 层完成
// Status 仅使用 draft/published，学生端只读 published
type Article struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Content     string `gorm:"type:text"`
	Summary     string
	CoverURL    string
	ReadingTime int
	Status      string `gorm:"size:20;not null;default:draft;index"`
	CategoryID  uint   `gorm:"index"`
	Category    Category
	AuthorID    uint
	Author      User
}
