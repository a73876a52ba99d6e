package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrBadgeNotFound 在指定徽章不存在时返回
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrBadgeInvalidInput 当徽章配置异常时返回
	ErrBadgeInvalidInput = errors.New("invalid badge configuration")
)

var supportedBadgeTypes = []string{
	db.BadgeTypeStreak,
	db.BadgeTypeJournalCount,
	db.BadgeTypeArticleRead,
	db.BadgeTypeMeditationCount,
	db.BadgeTypeMusicCount,
	db.BadgeTypeMoodCheckin,
}

// BadgeService 负责徽章模板管理、成就评定与进度展示
// 评定只新增 user_badges 记录，从不更新或删除；徽章模板对评定流程只读
type BadgeService struct {
	db *gorm.DB
}

// NewBadgeService 构造 BadgeService
func NewBadgeService(gdb *gorm.DB) *BadgeService {
	return &BadgeService{db: gdb}
}

// UserStats 为单次评定使用的统计快照，同一轮所有徽章共用同一份
type UserStats struct {
	StreakCount      int
	JournalCount     int
	ArticleReadCount int
	MeditationCount  int
	MusicCount       int
	MoodCheckinCount int
}

// BadgeProgress 汇总单枚徽章的展示数据
type BadgeProgress struct {
	Badge    db.Badge
	Earned   bool
	Progress int
	EarnedAt *time.Time
}

// BadgeInput 定义创建/更新徽章时可配置字段
type BadgeInput struct {
	Name           string
	Icon           string
	Description    string
	Requirement    string
	Type           string
	ConditionValue int
	IsActive       bool
}

// CollectStats 汇总用户当前的统计快照。
func (s *BadgeService) CollectStats(userID uint) (UserStats, error) {
	var stats UserStats

	var streak db.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		stats.StreakCount = 0
	case err != nil:
		return stats, fmt.Errorf("load streak: %w", err)
	default:
		stats.StreakCount = streak.Count
	}

	var journalCount int64
	if err := s.db.Model(&db.JournalEntry{}).
		Where("user_id = ?", userID).
		Count(&journalCount).Error; err != nil {
		return stats, fmt.Errorf("count journal entries: %w", err)
	}
	stats.JournalCount = int(journalCount)

	accessCounts := map[string]int{}
	var rows []struct {
		Kind  string
		Total int64
	}
	if err := s.db.Model(&db.ResourceAccess{}).
		Select("kind, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("kind").
		Find(&rows).Error; err != nil {
		return stats, fmt.Errorf("count resource accesses: %w", err)
	}
	for _, row := range rows {
		accessCounts[row.Kind] = int(row.Total)
	}
	stats.ArticleReadCount = accessCounts[db.AccessKindArticle]
	stats.MeditationCount = accessCounts[db.AccessKindMeditation]
	stats.MusicCount = accessCounts[db.AccessKindMusic]

	var moodCount int64
	if err := s.db.Model(&db.MoodCheckin{}).
		Where("user_id = ?", userID).
		Count(&moodCount).Error; err != nil {
		return stats, fmt.Errorf("count mood checkins: %w", err)
	}
	stats.MoodCheckinCount = int(moodCount)

	return stats, nil
}

// EvaluateUserBadges 扫描所有启用徽章，对尚未获得且达标的徽章各创建一条授予记录。
// 并发评定可能同时插入同一 (user, badge)，由唯一索引拒绝重复，此处视为无害冲突。
func (s *BadgeService) EvaluateUserBadges(userID uint, now time.Time) error {
	if userID == 0 {
		return errors.New("user id is required")
	}

	var badges []db.Badge
	if err := s.db.Where("is_active = ?", true).Find(&badges).Error; err != nil {
		return fmt.Errorf("list active badges: %w", err)
	}
	if len(badges) == 0 {
		return nil
	}

	earned, err := s.earnedBadgeIDs(userID)
	if err != nil {
		return err
	}

	stats, err := s.CollectStats(userID)
	if err != nil {
		return err
	}

	for _, badge := range badges {
		if _, ok := earned[badge.ID]; ok {
			continue
		}
		if !conditionMet(badge, stats) {
			continue
		}

		record := db.UserBadge{UserID: userID, BadgeID: badge.ID, EarnedAt: now}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("award badge %d: %w", badge.ID, err)
		}
	}

	return nil
}

// GetUserBadges 返回展示用的徽章列表：已获得的为 100%，未获得的启用徽章给出进度。
func (s *BadgeService) GetUserBadges(userID uint) ([]BadgeProgress, error) {
	var earnedRecords []db.UserBadge
	if err := s.db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&earnedRecords).Error; err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}

	earnedIDs := make(map[uint]struct{}, len(earnedRecords))
	result := make([]BadgeProgress, 0, len(earnedRecords))
	for _, record := range earnedRecords {
		earnedAt := record.EarnedAt
		earnedIDs[record.BadgeID] = struct{}{}
		result = append(result, BadgeProgress{
			Badge:    record.Badge,
			Earned:   true,
			Progress: 100,
			EarnedAt: &earnedAt,
		})
	}

	var badges []db.Badge
	if err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("list active badges: %w", err)
	}

	stats, err := s.CollectStats(userID)
	if err != nil {
		return nil, err
	}

	for _, badge := range badges {
		if _, ok := earnedIDs[badge.ID]; ok {
			continue
		}
		result = append(result, BadgeProgress{
			Badge:    badge,
			Earned:   false,
			Progress: progressPercent(badge, stats),
		})
	}

	return result, nil
}

func (s *BadgeService) earnedBadgeIDs(userID uint) (map[uint]struct{}, error) {
	var ids []uint
	if err := s.db.Model(&db.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list earned badge ids: %w", err)
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// currentValue 按徽章类型从快照取对应计数，未知类型返回 -1 表示不可评定。
func currentValue(badge db.Badge, stats UserStats) int {
	switch badge.Type {
	case db.BadgeTypeStreak:
		return stats.StreakCount
	case db.BadgeTypeJournalCount:
		return stats.JournalCount
	case db.BadgeTypeArticleRead:
		return stats.ArticleReadCount
	case db.BadgeTypeMeditationCount:
		return stats.MeditationCount
	case db.BadgeTypeMusicCount:
		return stats.MusicCount
	case db.BadgeTypeMoodCheckin:
		return stats.MoodCheckinCount
	default:
		return -1
	}
}

// conditionMet 判断达标：未知类型永不达标；门槛为 0 视为无条件达标（沿用历史行为）。
func conditionMet(badge db.Badge, stats UserStats) bool {
	value := currentValue(badge, stats)
	if value < 0 {
		return false
	}
	return value >= badge.ConditionValue
}

// progressPercent 计算展示进度，门槛为 0 时直接返回 0 以避免除零。
func progressPercent(badge db.Badge, stats UserStats) int {
	if badge.ConditionValue <= 0 {
		return 0
	}
	value := currentValue(badge, stats)
	if value <= 0 {
		return 0
	}

	percent := int(math.Round(float64(value) * 100 / float64(badge.ConditionValue)))
	if percent > 100 {
		percent = 100
	}
	return percent
}

// List 返回徽章模板集合，onlyActive 为 true 时仅返回启用项
func (s *BadgeService) List(onlyActive bool) ([]db.Badge, error) {
	var badges []db.Badge

	query := s.db.Model(&db.Badge{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Order("created_at DESC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// Get 根据 ID 获取徽章模板
func (s *BadgeService) Get(id uint) (*db.Badge, error) {
	var badge db.Badge
	if err := s.db.First(&badge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadgeNotFound
		}
		return nil, fmt.Errorf("get badge: %w", err)
	}
	return &badge, nil
}

// Create 新建徽章模板
func (s *BadgeService) Create(input BadgeInput) (*db.Badge, error) {
	if err := validateBadgeInput(input); err != nil {
		return nil, err
	}

	badge := db.Badge{
		Name:           strings.TrimSpace(input.Name),
		Icon:           strings.TrimSpace(input.Icon),
		Description:    strings.TrimSpace(input.Description),
		Requirement:    strings.TrimSpace(input.Requirement),
		Type:           strings.ToUpper(strings.TrimSpace(input.Type)),
		ConditionValue: input.ConditionValue,
		IsActive:       input.IsActive,
	}

	if err := s.db.Create(&badge).Error; err != nil {
		return nil, fmt.Errorf("create badge: %w", err)
	}
	return &badge, nil
}

// Update 更新徽章模板
func (s *BadgeService) Update(id uint, input BadgeInput) (*db.Badge, error) {
	if err := validateBadgeInput(input); err != nil {
		return nil, err
	}

	var existing db.Badge
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadgeNotFound
		}
		return nil, fmt.Errorf("find badge: %w", err)
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Icon = strings.TrimSpace(input.Icon)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Requirement = strings.TrimSpace(input.Requirement)
	existing.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	existing.ConditionValue = input.ConditionValue
	existing.IsActive = input.IsActive

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update badge: %w", err)
	}
	return &existing, nil
}

// Delete 删除徽章模板
func (s *BadgeService) Delete(id uint) error {
	if err := s.db.Delete(&db.Badge{}, id).Error; err != nil {
		return fmt.Errorf("delete badge: %w", err)
	}
	return nil
}

func validateBadgeInput(input BadgeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrBadgeInvalidInput)
	}

	badgeType := strings.ToUpper(strings.TrimSpace(input.Type))
	known := false
	for _, t := range supportedBadgeTypes {
		if t == badgeType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unsupported type %s", ErrBadgeInvalidInput, input.Type)
	}

	if input.ConditionValue < 0 {
		return fmt.Errorf("%w: condition value must not be negative", ErrBadgeInvalidInput)
	}

	return nil
}
