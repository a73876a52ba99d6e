package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	// BadgeTypeStreak 按连续活跃天数解锁。
	BadgeTypeStreak = "STREAK"
	// BadgeTypeJournalCount 按日记总数解锁。
	BadgeTypeJournalCount = "JOURNAL_COUNT"
	// BadgeTypeArticleRead 按文章阅读次数解锁。
	BadgeTypeArticleRead = "ARTICLE_READ"
	// BadgeTypeMeditationCount 按冥想播放次数解锁。
	BadgeTypeMeditationCount = "MEDITATION_COUNT"
	// BadgeTypeMusicCount 按音乐播放次数解锁。
	BadgeTypeMusicCount = "MUSIC_COUNT"
	// BadgeTypeMoodCheckin 按心情打卡次数解锁。
	BadgeTypeMoodCheckin = "MOOD_CHECKIN"
)

// Badge 定义了管理员配置的成就徽章模板
// ConditionValue 为数值门槛，IsActive 控制是否参与评定
// Requirement 为展示给学生的解锁条件文案
type Badge struct {
	gorm.Model
	Name           string `gorm:"not null"`
	Icon           string
	Description    string
	Requirement    string
	Type           string `gorm:"size:30;not null;index"`
	ConditionValue int
	IsActive       bool `gorm:"index"`
}

// UserBadge 记录某个用户获得某枚徽章
// user_id + badge_id 采用唯一索引：并发评定产生的重复授予由存储层拒绝，
// 应用层不做加锁，这是整个评定流程唯一的防重保障
type UserBadge struct {
	gorm.Model
	UserID   uint  `gorm:"index;index:idx_user_badge_unique,unique"`
	BadgeID  uint  `gorm:"index:idx_user_badge_unique,unique"`
	Badge    Badge `gorm:"constraint:OnDelete:CASCADE"`
	EarnedAt time.Time
}
