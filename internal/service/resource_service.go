package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrResourceNotFound 在指定资源不存在时返回
	ErrResourceNotFound = errors.New("resource not found")
	// ErrResourceInvalidInput 当资源配置异常时返回
	ErrResourceInvalidInput = errors.New("invalid resource input")
)

// ResourceService 负责冥想/音乐资源的增删改查
type ResourceService struct {
	db *gorm.DB
}

// ResourceFilter 描述列表过滤条件
type ResourceFilter struct {
	Kind       string
	Status     string
	CategoryID uint
	Search     string
}

// ResourceInput 定义创建/更新资源时可配置字段
type ResourceInput struct {
	Title       string
	Description string
	Kind        string
	MediaURL    string
	CoverURL    string
	DurationSec int
	Status      string
	CategoryID  uint
}

// NewResourceService 构造 ResourceService
func NewResourceService(gdb *gorm.DB) *ResourceService {
	return &ResourceService{db: gdb}
}

// List 返回资源集合，支持基本筛选
func (s *ResourceService) List(filter ResourceFilter) ([]db.Resource, error) {
	var resources []db.Resource

	query := s.db.Model(&db.Resource{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", strings.ToLower(filter.Kind))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Preload("Category").Order("created_at DESC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// Get 根据 ID 获取资源
func (s *ResourceService) Get(id uint) (*db.Resource, error) {
	var resource db.Resource
	if err := s.db.Preload("Category").First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &resource, nil
}

// GetPublished 返回学生端可见的资源，下架项按不存在处理
func (s *ResourceService) GetPublished(id uint) (*db.Resource, error) {
	resource, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if resource.Status != "published" {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

// Create 新建资源
func (s *ResourceService) Create(input ResourceInput) (*db.Resource, error) {
	if err := validateResourceInput(input); err != nil {
		return nil, err
	}

	resource := db.Resource{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Kind:        strings.ToLower(strings.TrimSpace(input.Kind)),
		MediaURL:    strings.TrimSpace(input.MediaURL),
		CoverURL:    strings.TrimSpace(input.CoverURL),
		DurationSec: input.DurationSec,
		Status:      normalizeResourceStatus(input.Status),
		CategoryID:  input.CategoryID,
	}

	if err := s.db.Create(&resource).Error; err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return &resource, nil
}

// Update 更新资源
func (s *ResourceService) Update(id uint, input ResourceInput) (*db.Resource, error) {
	if err := validateResourceInput(input); err != nil {
		return nil, err
	}

	var existing db.Resource
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Kind = strings.ToLower(strings.TrimSpace(input.Kind))
	existing.MediaURL = strings.TrimSpace(input.MediaURL)
	existing.CoverURL = strings.TrimSpace(input.CoverURL)
	existing.DurationSec = input.DurationSec
	existing.Status = normalizeResourceStatus(input.Status)
	existing.CategoryID = input.CategoryID

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}
	return &existing, nil
}

// Delete 删除资源
func (s *ResourceService) Delete(id uint) error {
	if err := s.db.Delete(&db.Resource{}, id).Error; err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

func validateResourceInput(input ResourceInput) error {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind != db.ResourceKindMeditation && kind != db.ResourceKindMusic {
		return fmt.Errorf("%w: unsupported kind %s", ErrResourceInvalidInput, input.Kind)
	}
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrResourceInvalidInput)
	}
	if strings.TrimSpace(input.MediaURL) == "" {
		return fmt.Errorf("%w: media url is required", ErrResourceInvalidInput)
	}
	if input.DurationSec < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrResourceInvalidInput)
	}
	return nil
}

func normalizeResourceStatus(status string) string {
	status = strings.TrimSpace(strings.ToLower(status))
	if status != "draft" {
		return "published"
	}
	return "draft"
}
