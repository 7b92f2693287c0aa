package models

import "time"

// Role values allowed at registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account. Email is stored lowercased, so the unique
// index doubles as the case-insensitive uniqueness check.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:64" json:"displayName"`
	Role         string    `gorm:"size:16;default:user;index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	IsActive      bool       `gorm:"default:true" json:"isActive"`   // false = 잠긴 계정
	IsLoggedIn    bool       `gorm:"default:false" json:"isLoggedIn"`
	LoginAttempts int        `gorm:"default:0" json:"loginAttempts"` // 연속 로그인 실패 횟수
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}
