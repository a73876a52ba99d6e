package db

import "gorm.io/gorm"

// MoodCheckin 记录学生的每日心情打卡
// Intensity 取值 1-5，Note 为可选的简短描述
type MoodCheckin struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null"`
	Mood      string `gorm:"size:30;not null"`
	Intensity int
	Note      string
}
