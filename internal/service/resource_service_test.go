package service

import (
	"testing"

	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupResourceTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Category{}, &db.Resource{}); err != nil {
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

func TestResourceCreateAndValidation(t *testing.T) {
	cleanup := setupResourceTestDB(t)
	defer cleanup()

	svc := NewResourceService(db.DB)

	resource, err := svc.Create(ResourceInput{
		Title:       "海浪白噪音",
		Description: "适合睡前聆听",
		Kind:        "Music",
		MediaURL:    "/static/uploads/waves.mp3",
		DurationSec: 600,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resource.Kind != db.ResourceKindMusic {
		t.Fatalf("expected kind to normalize, got %s", resource.Kind)
	}
	if resource.Status != "published" {
		t.Fatalf("expected default published status, got %s", resource.Status)
	}

	if _, err := svc.Create(ResourceInput{Title: "x", Kind: "podcast", MediaURL: "/a.mp3"}); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
	if _, err := svc.Create(ResourceInput{Title: "", Kind: db.ResourceKindMusic, MediaURL: "/a.mp3"}); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := svc.Create(ResourceInput{Title: "x", Kind: db.ResourceKindMusic, MediaURL: ""}); err == nil {
		t.Fatal("expected error for empty media url")
	}
}

func TestResourceListFilterByKind(t *testing.T) {
	cleanup := setupResourceTestDB(t)
	defer cleanup()

	svc := NewResourceService(db.DB)

	if _, err := svc.Create(ResourceInput{Title: "身体扫描", Kind: db.ResourceKindMeditation, MediaURL: "/a.mp3"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(ResourceInput{Title: "雨声", Kind: db.ResourceKindMusic, MediaURL: "/b.mp3"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(ResourceInput{Title: "下架冥想", Kind: db.ResourceKindMeditation, MediaURL: "/c.mp3", Status: "draft"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	meditations, err := svc.List(ResourceFilter{Kind: db.ResourceKindMeditation, Status: "published"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(meditations) != 1 {
		t.Fatalf("expected 1 published meditation, got %d", len(meditations))
	}
}

func TestResourcePublishedVisibility(t *testing.T) {
	cleanup := setupResourceTestDB(t)
	defer cleanup()

	svc := NewResourceService(db.DB)

	draft, err := svc.Create(ResourceInput{Title: "晨间冥想", Kind: db.ResourceKindMeditation, MediaURL: "/a.mp3", Status: "draft"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.GetPublished(draft.ID); err == nil {
		t.Fatal("expected draft resource to be hidden")
	}

	updated, err := svc.Update(draft.ID, ResourceInput{Title: "晨间冥想", Kind: db.ResourceKindMeditation, MediaURL: "/a.mp3", Status: "published"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if _, err := svc.GetPublished(updated.ID); err != nil {
		t.Fatalf("GetPublished returned error: %v", err)
	}
}
