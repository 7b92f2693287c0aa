package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ikjunoob/Photomemo/internal/middleware"
	"github.com/ikjunoob/Photomemo/internal/models"
	"github.com/ikjunoob/Photomemo/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 회원가입/로그인/내 정보 담당
type AuthHandler struct {
	DB          *gorm.DB
	JWTSecret   string
	TokenTTL    time.Duration
	MaxAttempts int
	BcryptCost  int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, maxAttempts, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 7 * 24
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if bcryptCost <= 0 {
		bcryptCost = 10
	}
	return &AuthHandler{
		DB:          db,
		JWTSecret:   jwtSecret,
		TokenTTL:    time.Duration(ttlHours) * time.Hour,
		MaxAttempts: maxAttempts,
		BcryptCost:  bcryptCost,
	}
}

// ---------- 회원가입 ----------

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "이메일/비밀번호 필요")
		return
	}

	if req.Email == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, "이메일/비밀번호 필요")
		return
	}

	email := util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		util.Error(c, http.StatusBadRequest, "유효한 이메일이 아닙니다.")
		return
	}

	// 이메일은 소문자로 저장하므로 유니크 인덱스가 대소문자 무시 중복 검사를 겸한다
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "회원가입 실패")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "이미 가입된 메일")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "회원가입 실패")
		return
	}

	// role 허용 목록: user / admin (클라이언트가 admin을 보내면 그대로 수용됨)
	role := models.RoleUser
	if req.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         role,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "회원가입 실패")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ---------- 로그인 ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "이메일/비밀번호 필요")
		return
	}
	if req.Email == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, "이메일/비밀번호 필요")
		return
	}

	// 활성화된 계정만 조회. 없는 메일과 틀린 비밀번호는 같은 메시지를 돌려준다.
	const invalidMsg = "이메일 또는 비밀번호가 올바르지 않습니다."

	var user models.User
	err := h.DB.Where("email = ? AND is_active = ?", util.NormalizeEmail(req.Email), true).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, invalidMsg)
		} else {
			util.Error(c, http.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.LoginAttempts++

		// 실패 횟수가 한도에 닿으면 계정 비활성화
		if user.LoginAttempts >= h.MaxAttempts {
			user.IsActive = false
			if err := h.DB.Save(&user).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
				return
			}
			util.Error(c, http.StatusForbidden,
				fmt.Sprintf("로그인 시도 횟수(%d회)를 초과하여 계정이 비활성화되었습니다.", h.MaxAttempts))
			return
		}

		if err := h.DB.Save(&user).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
			return
		}
		attemptsLeft := h.MaxAttempts - user.LoginAttempts
		util.Error(c, http.StatusUnauthorized,
			fmt.Sprintf("%s (남은 시도 횟수: %d회)", invalidMsg, attemptsLeft))
		return
	}

	// 성공: 로그인 상태 갱신 (실패 횟수는 초기화하지 않음)
	now := time.Now()
	user.IsLoggedIn = true
	user.LastLoginAt = &now
	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "로그인 상태 갱신 실패")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, user.Email, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(h.TokenTTL.Seconds()), "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// ---------- 내 정보 ----------

// Me returns the sanitized profile of the token's user, loaded fresh so
// a deleted account answers 404 even with a valid token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "인증 필요")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "사용자 없음")
		} else {
			util.Error(c, http.StatusInternalServerError, "사용자 조회 실패")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
