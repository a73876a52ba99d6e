package service

import (
	"testing"

	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJournalTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.JournalEntry{}); err != nil {
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

func TestJournalCreateAndValidation(t *testing.T) {
	cleanup := setupJournalTestDB(t)
	defer cleanup()

	svc := NewJournalService(db.DB)

	entry, err := svc.Create(1, JournalInput{
		Kind:    "Writing",
		Title:   "期中周",
		Content: "考试周压力有点大，不过今天跑步之后好多了。",
		Mood:    "平静",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if entry.Kind != db.JournalKindWriting {
		t.Fatalf("expected kind to normalize, got %s", entry.Kind)
	}

	// 文字日记缺正文
	if _, err := svc.Create(1, JournalInput{Kind: db.JournalKindWriting}); err == nil {
		t.Fatal("expected error for empty writing content")
	}
	// 语音日记缺音频
	if _, err := svc.Create(1, JournalInput{Kind: db.JournalKindAudio}); err == nil {
		t.Fatal("expected error for audio entry without media url")
	}
	// 未知形态
	if _, err := svc.Create(1, JournalInput{Kind: "video", Content: "x"}); err == nil {
		t.Fatal("expected error for unsupported kind")
	}

	if _, err := svc.Create(1, JournalInput{Kind: db.JournalKindArt, MediaURL: "/static/uploads/a.png"}); err != nil {
		t.Fatalf("art entry returned error: %v", err)
	}
}

func TestJournalListIsOwnerScoped(t *testing.T) {
	cleanup := setupJournalTestDB(t)
	defer cleanup()

	svc := NewJournalService(db.DB)

	if _, err := svc.Create(1, JournalInput{Kind: db.JournalKindWriting, Content: "我的日记"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(2, JournalInput{Kind: db.JournalKindWriting, Content: "别人的日记"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	entries, err := svc.List(1, JournalFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for user 1, got %d", len(entries))
	}

	// 跨用户读取按不存在处理
	if _, err := svc.Get(1, entries[0].ID+1); err == nil {
		t.Fatal("expected error for foreign entry")
	}

	count, err := svc.CountByUser(1)
	if err != nil {
		t.Fatalf("CountByUser returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestJournalDelete(t *testing.T) {
	cleanup := setupJournalTestDB(t)
	defer cleanup()

	svc := NewJournalService(db.DB)

	entry, err := svc.Create(1, JournalInput{Kind: db.JournalKindWriting, Content: "待删除"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 他人无法删除
	if err := svc.Delete(2, entry.ID); err == nil {
		t.Fatal("expected error when deleting foreign entry")
	}

	if err := svc.Delete(1, entry.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := svc.Get(1, entry.ID); err == nil {
		t.Fatal("expected entry to be gone")
	}
}
