package service

import (
	"strings"
	"testing"

	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupArticleTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Category{}, &db.Article{}, &db.Resource{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestArticleCreateStartsAsDraft(t *testing.T) {
	cleanup := setupArticleTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)

	article, err := svc.Create(ArticleInput{
		Title:   "考试焦虑自助指南",
		Content: strings.Repeat("深呼吸，把注意力放回当下。", 40),
		Summary: "三个缓解考试焦虑的小练习",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if article.Status != "draft" {
		t.Fatalf("expected draft status, got %s", article.Status)
	}
	if article.ReadingTime < 1 {
		t.Fatalf("expected positive reading time, got %d", article.ReadingTime)
	}

	if _, err := svc.Create(ArticleInput{Title: "", Content: "x"}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestArticlePublishVisibility(t *testing.T) {
	cleanup := setupArticleTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)

	article, err := svc.Create(ArticleInput{Title: "睡眠卫生", Content: "固定作息时间。"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 草稿对学生端不可见
	if _, err := svc.GetPublished(article.ID); err == nil {
		t.Fatal("expected draft to be hidden")
	}

	published, err := svc.SetStatus(article.ID, "published")
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if published.Status != "published" {
		t.Fatalf("expected published status, got %s", published.Status)
	}

	if _, err := svc.GetPublished(article.ID); err != nil {
		t.Fatalf("GetPublished returned error: %v", err)
	}

	if _, err := svc.SetStatus(article.ID, "archived"); err == nil {
		t.Fatal("expected error for unsupported status")
	}
}

func TestArticleListFilterAndPagination(t *testing.T) {
	cleanup := setupArticleTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)

	for i := 0; i < 3; i++ {
		article, err := svc.Create(ArticleInput{Title: "正念练习", Content: "观察呼吸。"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if i < 2 {
			if _, err := svc.SetStatus(article.ID, "published"); err != nil {
				t.Fatalf("SetStatus returned error: %v", err)
			}
		}
	}

	result, err := svc.List(ArticleFilter{Status: "published", Page: 1, PerPage: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Total != 2 {
		t.Fatalf("expected 2 published articles, got %d", result.Total)
	}
	if result.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", result.TotalPages)
	}
	if result.PublishedCount != 2 || result.DraftCount != 1 {
		t.Fatalf("unexpected counters: published=%d draft=%d", result.PublishedCount, result.DraftCount)
	}
	if len(result.Articles) != 1 {
		t.Fatalf("expected 1 article on page, got %d", len(result.Articles))
	}
}

func TestCategoryLifecycle(t *testing.T) {
	cleanup := setupArticleTestDB(t)
	defer cleanup()

	categories := NewCategoryService(db.DB)
	articles := NewArticleService(db.DB)

	category, err := categories.Create("情绪管理", "article")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := categories.Create("", "article"); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := categories.Create("运动", "video"); err == nil {
		t.Fatal("expected error for unsupported kind")
	}

	article, err := articles.Create(ArticleInput{Title: "情绪日志", Content: "记录触发点。", CategoryID: category.ID})
	if err != nil {
		t.Fatalf("Create article returned error: %v", err)
	}

	// 分类仍被引用时拒绝删除
	if err := categories.Delete(category.ID); err == nil {
		t.Fatal("expected error while category is referenced")
	}

	if err := articles.Delete(article.ID); err != nil {
		t.Fatalf("Delete article returned error: %v", err)
	}
	if err := categories.Delete(category.ID); err != nil {
		t.Fatalf("Delete category returned error: %v", err)
	}
}
