package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

// StreakService 负责维护每用户的连续活跃天数
// 比较一律按日历日进行：同一天内的多次动作不会重复累计
// now 由调用方注入，便于在测试中固定日期边界
type StreakService struct {
	db *gorm.DB
}

// NewStreakService 构造 StreakService
func NewStreakService(gdb *gorm.DB) *StreakService {
	return &StreakService{db: gdb}
}

// UpdateStreak 在用户完成一次有效动作后推进连续天数：
// 无记录时创建 count=1；同日不变；隔一天加一；间隔超过一天或时钟回拨则重置为 1。
func (s *StreakService) UpdateStreak(userID uint, now time.Time) (*db.Streak, error) {
	if userID == 0 {
		return nil, errors.New("user id is required")
	}

	today := normalizeToDate(now)

	var streak db.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = db.Streak{UserID: userID, Count: 1, LastActive: today}
		if err := s.db.Create(&streak).Error; err != nil {
			return nil, fmt.Errorf("create streak: %w", err)
		}
		return &streak, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	lastActive := normalizeToDate(streak.LastActive)
	switch diffDays(lastActive, today) {
	case 0:
		// 同一天已记录过，保持现状
		return &streak, nil
	case 1:
		streak.Count++
	default:
		// 间隔两天以上或日期倒退，连续中断
		streak.Count = 1
	}
	streak.LastActive = today

	if err := s.db.Save(&streak).Error; err != nil {
		return nil, fmt.Errorf("save streak: %w", err)
	}

	return &streak, nil
}

// GetStreak 返回当前记录；尚无记录时返回 count=0 的展示用默认值，不落库。
func (s *StreakService) GetStreak(userID uint, now time.Time) (*db.Streak, error) {
	var streak db.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &db.Streak{UserID: userID, Count: 0, LastActive: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	return &streak, nil
}

// WasActiveToday 判断用户今天是否已有有效动作（按日历日比较）。
func (s *StreakService) WasActiveToday(userID uint, now time.Time) (bool, error) {
	var streak db.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load streak: %w", err)
	}
	return normalizeToDate(streak.LastActive).Equal(normalizeToDate(now)), nil
}

// ResetStreak 管理员强制清零，无视历史状态，不触发徽章评定。
func (s *StreakService) ResetStreak(userID uint, now time.Time) error {
	if userID == 0 {
		return errors.New("user id is required")
	}

	var streak db.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = db.Streak{UserID: userID, Count: 0, LastActive: now}
		if err := s.db.Create(&streak).Error; err != nil {
			return fmt.Errorf("create streak: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}

	streak.Count = 0
	streak.LastActive = now
	if err := s.db.Save(&streak).Error; err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	return nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// diffDays 计算两个零点日期之间的整天差，from 在 to 之后时为负。
func diffDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
