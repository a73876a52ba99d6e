package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound 在指定分类不存在时返回
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInvalidInput 当分类配置异常时返回
	ErrCategoryInvalidInput = errors.New("invalid category input")
	// ErrCategoryInUse 当分类下仍有内容时禁止删除
	ErrCategoryInUse = errors.New("category still referenced")
)

// CategoryService 负责文章/资源分类的维护
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService 构造 CategoryService
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List 返回指定形态的分类，kind 为空时返回全部
func (s *CategoryService) List(kind string) ([]db.Category, error) {
	var categories []db.Category

	query := s.db.Model(&db.Category{})
	if kind != "" {
		query = query.Where("kind = ?", strings.ToLower(kind))
	}

	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Create 新建分类
func (s *CategoryService) Create(name, kind string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	kind = strings.ToLower(strings.TrimSpace(kind))

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrCategoryInvalidInput)
	}
	if kind != "article" && kind != "resource" {
		return nil, fmt.Errorf("%w: unsupported kind %s", ErrCategoryInvalidInput, kind)
	}

	category := db.Category{Name: name, Kind: kind}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// Rename 重命名分类
func (s *CategoryService) Rename(id uint, name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrCategoryInvalidInput)
	}

	var existing db.Category
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	existing.Name = name
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return &existing, nil
}

// Delete 删除分类，分类下仍有文章或资源时拒绝
func (s *CategoryService) Delete(id uint) error {
	var articleCount int64
	if err := s.db.Model(&db.Article{}).Where("category_id = ?", id).Count(&articleCount).Error; err != nil {
		return fmt.Errorf("count category articles: %w", err)
	}
	var resourceCount int64
	if err := s.db.Model(&db.Resource{}).Where("category_id = ?", id).Count(&resourceCount).Error; err != nil {
		return fmt.Errorf("count category resources: %w", err)
	}
	if articleCount > 0 || resourceCount > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.Delete(&db.Category{}, id).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
