package service

import (
	"testing"
	"time"

	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMoodTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.MoodCheckin{}); err != nil {
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

func TestMoodCheckinAndValidation(t *testing.T) {
	cleanup := setupMoodTestDB(t)
	defer cleanup()

	svc := NewMoodService(db.DB)

	checkin, err := svc.Checkin(1, MoodInput{Mood: "开心", Intensity: 4, Note: "社团活动很顺利"})
	if err != nil {
		t.Fatalf("Checkin returned error: %v", err)
	}
	if checkin.ID == 0 {
		t.Fatal("expected checkin to have ID")
	}

	if _, err := svc.Checkin(1, MoodInput{Mood: "", Intensity: 3}); err == nil {
		t.Fatal("expected error for empty mood")
	}
	if _, err := svc.Checkin(1, MoodInput{Mood: "低落", Intensity: 0}); err == nil {
		t.Fatal("expected error for intensity below range")
	}
	if _, err := svc.Checkin(1, MoodInput{Mood: "低落", Intensity: 6}); err == nil {
		t.Fatal("expected error for intensity above range")
	}
}

func TestMoodRecentOrderAndLimit(t *testing.T) {
	cleanup := setupMoodTestDB(t)
	defer cleanup()

	svc := NewMoodService(db.DB)

	moods := []string{"疲惫", "平静", "开心", "焦虑", "平静", "开心", "放松"}
	for _, mood := range moods {
		if _, err := svc.Checkin(1, MoodInput{Mood: mood, Intensity: 3}); err != nil {
			t.Fatalf("Checkin returned error: %v", err)
		}
	}

	recent, err := svc.Recent(1, 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 recent checkins, got %d", len(recent))
	}

	count, err := svc.CountByUser(1)
	if err != nil {
		t.Fatalf("CountByUser returned error: %v", err)
	}
	if count != len(moods) {
		t.Fatalf("expected count %d, got %d", len(moods), count)
	}
}

func TestMoodListBetween(t *testing.T) {
	cleanup := setupMoodTestDB(t)
	defer cleanup()

	svc := NewMoodService(db.DB)

	if _, err := svc.Checkin(1, MoodInput{Mood: "平静", Intensity: 3}); err != nil {
		t.Fatalf("Checkin returned error: %v", err)
	}
	if _, err := svc.Checkin(2, MoodInput{Mood: "开心", Intensity: 4}); err != nil {
		t.Fatalf("Checkin returned error: %v", err)
	}

	now := time.Now()
	checkins, err := svc.ListBetween(1, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(checkins) != 1 {
		t.Fatalf("expected 1 checkin for user 1, got %d", len(checkins))
	}
}
