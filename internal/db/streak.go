package db

import (
	"time"

	"gorm.io/gorm"
)

// Streak 定义了每用户的连续活跃天数记录
// Count 表示截至 LastActive 的连续活跃天数；LastActive 仅保留日期部分
// 每个用户至多一条记录，首次活跃时创建，之后只更新不删除
type Streak struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex;not null"`
	Count      int
	LastActive time.Time
}
