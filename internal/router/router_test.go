package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mindhaven/internal/config"
	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&db.User{}, &db.Category{}, &db.Article{},
		&db.Resource{}, &db.ResourceAccess{},
		&db.JournalEntry{}, &db.MoodCheckin{},
		&db.Streak{}, &db.Badge{}, &db.UserBadge{},
		&db.SystemSetting{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		GinMode:       gin.TestMode,
		UploadDir:     t.TempDir(),
		UploadURLPath: "/static/uploads",
	}
	r := SetupRouter(gdb, cfg)

	return r, func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSetupRouterPing(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	rr := doJSON(t, r, http.MethodGet, "/ping", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestSetupRouterServesUploads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db.DB = nil

	uploadDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(uploadDir, "cover.txt"), []byte("hello uploads"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.DB = gdb

	r := SetupRouter(gdb, config.AppConfig{
		SessionSecret: "test-secret",
		GinMode:       gin.TestMode,
		UploadDir:     uploadDir,
		UploadURLPath: "/static/uploads",
	})

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/cover.txt", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "hello uploads" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestStudentLoginRecordsStreak(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	register := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"username": "xiaoming",
		"password": "secret123",
		"nickname": "小明",
	}, nil)
	if register.Code != http.StatusOK {
		t.Fatalf("register failed with status %d: %s", register.Code, register.Body.String())
	}

	login := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "xiaoming",
		"password": "secret123",
	}, nil)
	if login.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", login.Code, login.Body.String())
	}
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie after login")
	}

	streak := doJSON(t, r, http.MethodGet, "/api/streak/me", nil, cookies)
	if streak.Code != http.StatusOK {
		t.Fatalf("streak request failed with status %d: %s", streak.Code, streak.Body.String())
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(streak.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode streak payload: %v", err)
	}
	if payload.Count != 1 {
		t.Fatalf("expected streak count 1 after first login, got %d", payload.Count)
	}
}

func TestStudentCannotAccessAdminAPI(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	register := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"username": "student01",
		"password": "secret123",
	}, nil)
	if register.Code != http.StatusOK {
		t.Fatalf("register failed with status %d: %s", register.Code, register.Body.String())
	}
	cookies := register.Result().Cookies()

	rr := doJSON(t, r, http.MethodGet, "/admin/api/dashboard", nil, cookies)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestAnonymousRequiresLogin(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	rr := doJSON(t, r, http.MethodGet, "/api/journals", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}
