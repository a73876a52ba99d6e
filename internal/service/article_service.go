package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mindhaven/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrArticleNotFound 在指定文章不存在时返回
	ErrArticleNotFound = errors.New("article not found")
	// ErrArticleInvalidInput 当文章缺少必填字段时返回
	ErrArticleInvalidInput = errors.New("invalid article input")
)

// 按每分钟约 300 字估算阅读时长
const readingCharsPerMinute = 300

// ArticleService wraps article related database operations.
type ArticleService struct {
	db *gorm.DB
}

// ArticleFilter describes filters for listing articles.
type ArticleFilter struct {
	Search     string
	Status     string
	CategoryID uint
	Page       int
	PerPage    int
}

// ArticleListResult aggregates paginated list data and counters.
type ArticleListResult struct {
	Articles       []db.Article
	Total          int64
	PublishedCount int64
	DraftCount     int64
	TotalPages     int
	Page           int
	PerPage        int
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title      string
	Content    string
	Summary    string
	CoverURL   string
	CategoryID uint
	AuthorID   uint
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// List 返回分页后的文章集合与状态计数
func (s *ArticleService) List(filter ArticleFilter) (*ArticleListResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}

	query := s.db.Model(&db.Article{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("title LIKE ? OR summary LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	var articles []db.Article
	if err := query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	var publishedCount, draftCount int64
	if err := s.db.Model(&db.Article{}).Where("status = ?", "published").Count(&publishedCount).Error; err != nil {
		return nil, fmt.Errorf("count published articles: %w", err)
	}
	if err := s.db.Model(&db.Article{}).Where("status = ?", "draft").Count(&draftCount).Error; err != nil {
		return nil, fmt.Errorf("count draft articles: %w", err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &ArticleListResult{
		Articles:       articles,
		Total:          total,
		PublishedCount: publishedCount,
		DraftCount:     draftCount,
		TotalPages:     totalPages,
		Page:           page,
		PerPage:        perPage,
	}, nil
}

// Get fetches an article by id with category preloaded.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("Category").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &article, nil
}

// GetPublished 返回学生端可见的文章，草稿按不存在处理
func (s *ArticleService) GetPublished(id uint) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if article.Status != "published" {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// Create 保存文章，初始状态为 draft
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}

	article := db.Article{
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		Summary:     strings.TrimSpace(input.Summary),
		CoverURL:    strings.TrimSpace(input.CoverURL),
		Status:      "draft",
		CategoryID:  input.CategoryID,
		AuthorID:    input.AuthorID,
		ReadingTime: calculateReadingTime(input.Content),
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return &article, nil
}

// Update applies updates to an existing article.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}

	var existing db.Article
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Content = input.Content
	existing.Summary = strings.TrimSpace(input.Summary)
	existing.CoverURL = strings.TrimSpace(input.CoverURL)
	existing.CategoryID = input.CategoryID
	existing.ReadingTime = calculateReadingTime(input.Content)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return &existing, nil
}

// SetStatus 切换文章的发布状态
func (s *ArticleService) SetStatus(id uint, status string) (*db.Article, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "draft" && status != "published" {
		return nil, fmt.Errorf("%w: unsupported status %s", ErrArticleInvalidInput, status)
	}

	var existing db.Article
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}

	existing.Status = status
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update article status: %w", err)
	}
	return &existing, nil
}

// Delete 删除文章
func (s *ArticleService) Delete(id uint) error {
	if err := s.db.Delete(&db.Article{}, id).Error; err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrArticleInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrArticleInvalidInput)
	}
	return nil
}

func calculateReadingTime(content string) int {
	chars := utf8.RuneCountInString(content)
	if chars == 0 {
		return 0
	}

	minutes := (chars + readingCharsPerMinute - 1) / readingCharsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
