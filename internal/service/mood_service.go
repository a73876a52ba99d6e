package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

// ErrMoodInvalidInput 当心情打卡内容不完整时返回
var ErrMoodInvalidInput = errors.New("invalid mood checkin")

// MoodService 负责心情打卡的记录与查询
type MoodService struct {
	db *gorm.DB
}

// MoodInput 定义心情打卡时可配置字段
type MoodInput struct {
	Mood      string
	Intensity int
	Note      string
}

// NewMoodService 构造 MoodService
func NewMoodService(gdb *gorm.DB) *MoodService {
	return &MoodService{db: gdb}
}

// Checkin 记录一次心情打卡
func (s *MoodService) Checkin(userID uint, input MoodInput) (*db.MoodCheckin, error) {
	mood := strings.TrimSpace(input.Mood)
	if mood == "" {
		return nil, fmt.Errorf("%w: mood is required", ErrMoodInvalidInput)
	}
	if input.Intensity < 1 || input.Intensity > 5 {
		return nil, fmt.Errorf("%w: intensity must be between 1 and 5", ErrMoodInvalidInput)
	}

	checkin := db.MoodCheckin{
		UserID:    userID,
		Mood:      mood,
		Intensity: input.Intensity,
		Note:      strings.TrimSpace(input.Note),
	}

	if err := s.db.Create(&checkin).Error; err != nil {
		return nil, fmt.Errorf("create mood checkin: %w", err)
	}
	return &checkin, nil
}

// ListBetween 返回指定区间内的打卡记录，用于渲染日历/折线图
func (s *MoodService) ListBetween(userID uint, start, end time.Time) ([]db.MoodCheckin, error) {
	var checkins []db.MoodCheckin
	if err := s.db.Where("user_id = ?", userID).
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC").
		Find(&checkins).Error; err != nil {
		return nil, fmt.Errorf("list mood checkins: %w", err)
	}
	return checkins, nil
}

// Recent 返回最近的若干条打卡，供 AI 陪伴对话拼装上下文
func (s *MoodService) Recent(userID uint, limit int) ([]db.MoodCheckin, error) {
	if limit <= 0 {
		limit = 5
	}

	var checkins []db.MoodCheckin
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&checkins).Error; err != nil {
		return nil, fmt.Errorf("list recent mood checkins: %w", err)
	}
	return checkins, nil
}

// CountByUser 返回用户的打卡总数
func (s *MoodService) CountByUser(userID uint) (int, error) {
	var total int64
	if err := s.db.Model(&db.MoodCheckin{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count mood checkins: %w", err)
	}
	return int(total), nil
}
