package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

const defaultAccessDedupWindow = 30 * time.Minute

// AccessService 负责记录学生访问文章/冥想/音乐的事件。
// 同一 (用户, 类型, 目标) 在去重窗口内的重复访问不再落库，
// 避免双击或刷新把徽章统计刷高。
type AccessService struct {
	db          *gorm.DB
	dedupWindow time.Duration
}

// NewAccessService 创建 AccessService，默认去重窗口为 30 分钟。
func NewAccessService(gdb *gorm.DB) *AccessService {
	return &AccessService{db: gdb, dedupWindow: defaultAccessDedupWindow}
}

// WithDedupWindow 允许在测试或特定场景下调整去重窗口。
func (s *AccessService) WithDedupWindow(d time.Duration) *AccessService {
	if d <= 0 {
		return s
	}
	s.dedupWindow = d
	return s
}

// RecordAccess 记录一次访问事件，窗口内的重复访问返回 false 且不写入。
func (s *AccessService) RecordAccess(userID uint, kind string, targetID uint, now time.Time) (bool, error) {
	if userID == 0 || targetID == 0 {
		return false, errors.New("invalid user or target id")
	}
	if kind != db.AccessKindArticle && kind != db.AccessKindMeditation && kind != db.AccessKindMusic {
		return false, fmt.Errorf("unsupported access kind: %s", kind)
	}

	var recent db.ResourceAccess
	err := s.db.Where("user_id = ? AND kind = ? AND target_id = ?", userID, kind, targetID).
		Where("accessed_at > ?", now.Add(-s.dedupWindow)).
		Order("accessed_at DESC").
		First(&recent).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check recent access: %w", err)
	}

	access := db.ResourceAccess{
		UserID:     userID,
		Kind:       kind,
		TargetID:   targetID,
		AccessedAt: now,
	}
	if err := s.db.Create(&access).Error; err != nil {
		return false, fmt.Errorf("record access: %w", err)
	}

	return true, nil
}

// CountByKind 返回用户按类型汇总的访问次数。
func (s *AccessService) CountByKind(userID uint, kind string) (int, error) {
	var total int64
	if err := s.db.Model(&db.ResourceAccess{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count accesses: %w", err)
	}
	return int(total), nil
}
