package middleware

import (
	"net/http"
	"strings"

	"github.com/ikjunoob/Photomemo/internal/util"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Auth verifies the session token and puts its claims into the context.
// Handlers authorize against the claims alone; only /auth/me goes back
// to the database for the full user record.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) Cookie token (로그인 시 발급되는 httpOnly 쿠키)
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, "인증 필요")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, "토큰 무효")
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the verified session claims set by Auth.
func CurrentClaims(c *gin.Context) (*util.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok && claims != nil
}
