package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ikjunoob/Photomemo/internal/database"
	"github.com/ikjunoob/Photomemo/internal/middleware"
	"github.com/ikjunoob/Photomemo/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// maxAttempts 3, 테스트용 최소 bcrypt cost
func newAuthRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(db, testSecret, 1, 3, 4)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", middleware.Auth(testSecret), h.Me)
	return r
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMe(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":       "Tester@Example.com",
		"password":    "secret123",
		"displayName": "tester",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", w.Code, w.Body)
	}

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "tester@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body)
	}

	var loginResp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("login response missing token")
	}
	if !loginResp.User.IsLoggedIn {
		t.Error("user should be marked logged in")
	}
	if loginResp.User.LastLoginAt == nil {
		t.Error("lastLoginAt should be set on successful login")
	}
	// Set-Cookie로도 토큰이 내려간다
	if !strings.Contains(w.Header().Get("Set-Cookie"), "token=") {
		t.Error("login should set the token cookie")
	}

	w = doJSON(r, http.MethodGet, "/api/auth/me", loginResp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200: %s", w.Code, w.Body)
	}
	var me models.User
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Email != "tester@example.com" {
		t.Errorf("me email = %q, want normalized address", me.Email)
	}
	// 비밀번호 해시는 절대 내려가면 안 된다
	if strings.Contains(w.Body.String(), "passwordHash") || strings.Contains(w.Body.String(), "$2a$") {
		t.Error("me response must not leak the password hash")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	for _, body := range []gin.H{
		{},
		{"email": "a@b.com"},
		{"password": "secret123"},
	} {
		w := doJSON(r, http.MethodPost, "/api/auth/register", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("register %v status = %d, want 400", body, w.Code)
		}
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "not-an-email",
		"password": "secret123",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "dup@example.com", "password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", w.Code)
	}

	// 대소문자만 달라도 중복
	w = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "DUP@Example.COM", "password": "other456",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}
}

func TestRegisterRoleAllowList(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	// 허용 목록 밖의 role은 user로 강제
	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "weird@example.com", "password": "secret123", "role": "superuser",
	})
	var u models.User
	db.Where("email = ?", "weird@example.com").First(&u)
	if u.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", u.Role, models.RoleUser)
	}

	// admin은 보낸 그대로 수용되는 기존 동작 유지
	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "boss@example.com", "password": "secret123", "role": "admin",
	})
	var boss models.User
	db.Where("email = ?", "boss@example.com").First(&boss)
	if boss.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", boss.Role, models.RoleAdmin)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ghost@example.com", "password": "whatever1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLoginLockout(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "lock@example.com", "password": "correct123",
	})

	// 한도(3회) 전까지는 401 + 남은 횟수 안내
	for i := 0; i < 2; i++ {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "lock@example.com", "password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, w.Code)
		}
	}

	// 한도에 닿으면 계정 비활성화 + 403
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "lock@example.com", "password": "wrong",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("final attempt status = %d, want 403: %s", w.Code, w.Body)
	}

	var u models.User
	db.Where("email = ?", "lock@example.com").First(&u)
	if u.IsActive {
		t.Error("account should be deactivated after hitting the attempt ceiling")
	}

	// 잠긴 뒤에는 올바른 비밀번호로도 로그인 불가
	w = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "lock@example.com", "password": "correct123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("locked login status = %d, want 401", w.Code)
	}
}

func TestLoginFailedAttemptSaveError(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "flaky@example.com", "password": "correct123",
	})

	// 조회는 되지만 업데이트는 실패하는 상황 재현
	if err := db.Callback().Update().Before("gorm:update").
		Register("force_update_fail", func(tx *gorm.DB) {
			tx.AddError(errors.New("disk full"))
		}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	// 실패 횟수를 저장하지 못하면 403/401이 아니라 500이어야 한다
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "flaky@example.com", "password": "wrong",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", w.Code, w.Body)
	}

	var u models.User
	db.Where("email = ?", "flaky@example.com").First(&u)
	if !u.IsActive {
		t.Error("account must not be reported/left deactivated when the save failed")
	}
	if u.LoginAttempts != 0 {
		t.Errorf("loginAttempts = %d, want 0 (increment was not persisted)", u.LoginAttempts)
	}
}

func TestLoginAttemptsNotResetOnSuccess(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "count@example.com", "password": "correct123",
	})
	doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "count@example.com", "password": "wrong",
	})
	doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "count@example.com", "password": "correct123",
	})

	var u models.User
	db.Where("email = ?", "count@example.com").First(&u)
	if u.LoginAttempts != 1 {
		t.Errorf("loginAttempts = %d, want 1 (not reset on success)", u.LoginAttempts)
	}
}

func TestMeWithoutToken(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	w := doJSON(r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMeUserGone(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db)

	doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "gone@example.com", "password": "secret123",
	})
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "gone@example.com", "password": "secret123",
	})
	var loginResp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &loginResp)

	db.Unscoped().Where("email = ?", "gone@example.com").Delete(&models.User{})

	w = doJSON(r, http.MethodGet, "/api/auth/me", loginResp.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
