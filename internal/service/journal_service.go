package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrJournalNotFound 在指定日记不存在或不属于当前用户时返回
	ErrJournalNotFound = errors.New("journal entry not found")
	// ErrJournalInvalidInput 当日记内容不完整时返回
	ErrJournalInvalidInput = errors.New("invalid journal entry")
)

// JournalService 负责学生日记的增删查
// 所有查询都以 userID 限定，学生只能看到自己的日记
type JournalService struct {
	db *gorm.DB
}

// JournalInput 定义写日记时可配置字段
type JournalInput struct {
	Kind     string
	Title    string
	Content  string
	MediaURL string
	Mood     string
}

// JournalFilter 描述列表过滤条件
type JournalFilter struct {
	Kind   string
	Search string
}

// NewJournalService 构造 JournalService
func NewJournalService(gdb *gorm.DB) *JournalService {
	return &JournalService{db: gdb}
}

// Create 保存一篇日记
func (s *JournalService) Create(userID uint, input JournalInput) (*db.JournalEntry, error) {
	if err := validateJournalInput(input); err != nil {
		return nil, err
	}

	entry := db.JournalEntry{
		UserID:   userID,
		Kind:     strings.ToLower(strings.TrimSpace(input.Kind)),
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		MediaURL: strings.TrimSpace(input.MediaURL),
		Mood:     strings.TrimSpace(input.Mood),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return &entry, nil
}

// List 返回用户的日记集合，支持按类型和关键词过滤
func (s *JournalService) List(userID uint, filter JournalFilter) ([]db.JournalEntry, error) {
	var entries []db.JournalEntry

	query := s.db.Model(&db.JournalEntry{}).Where("user_id = ?", userID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", strings.ToLower(filter.Kind))
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

// Get 返回用户自己的单篇日记
func (s *JournalService) Get(userID, id uint) (*db.JournalEntry, error) {
	var entry db.JournalEntry
	if err := s.db.Where("user_id = ?", userID).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return &entry, nil
}

// Delete 删除用户自己的日记
func (s *JournalService) Delete(userID, id uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&db.JournalEntry{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete journal entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJournalNotFound
	}
	return nil
}

// CountByUser 返回用户三种形态日记的合计数量
func (s *JournalService) CountByUser(userID uint) (int, error) {
	var total int64
	if err := s.db.Model(&db.JournalEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return int(total), nil
}

func validateJournalInput(input JournalInput) error {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	switch kind {
	case db.JournalKindWriting:
		if strings.TrimSpace(input.Content) == "" {
			return fmt.Errorf("%w: content is required", ErrJournalInvalidInput)
		}
	case db.JournalKindAudio, db.JournalKindArt:
		if strings.TrimSpace(input.MediaURL) == "" {
			return fmt.Errorf("%w: media url is required", ErrJournalInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrJournalInvalidInput, input.Kind)
	}
	return nil
}
