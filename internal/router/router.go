package router

import (
	"net/http"
	"time"

	"github.com/ikjunoob/Photomemo/internal/config"
	"github.com/ikjunoob/Photomemo/internal/handler"
	"github.com/ikjunoob/Photomemo/internal/middleware"
	"github.com/ikjunoob/Photomemo/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine, CORS and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, store *storage.Client) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 지정된 프론트 주소만 허용, 쿠키 포함 요청 허용
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORS.Origin != "" {
		corsCfg.AllowOrigins = []string{cfg.CORS.Origin}
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "PhotoMemo API OK")
	})

	// 프론트 쉘 (로그인/랜딩)
	r.Static("/app", "./web/static")

	baseURL := cfg.Storage.PublicBaseURL()

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Auth.MaxLoginAttempts, cfg.Auth.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	postHandler := handler.NewPostHandler(db, store, baseURL)
	// 전체 목록은 로그인 없이 조회 가능
	api.GET("/posts", postHandler.List)

	// 로그인이 필요한 접근
	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWT.Secret))

	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/posts", postHandler.Create)
	protected.GET("/posts/my", postHandler.ListMine)
	protected.GET("/posts/:id", postHandler.Get)
	protected.PUT("/posts/:id", postHandler.Update)
	protected.DELETE("/posts/:id", postHandler.Delete)

	exportHandler := handler.NewExportHandler(db, baseURL)
	protected.GET("/posts/export/csv", exportHandler.ExportCSV)
	protected.GET("/posts/export/xlsx", exportHandler.ExportXLSX)

	uploadHandler := handler.NewUploadHandler(store)
	protected.POST("/uploads/presign", uploadHandler.Presign)

	// 라우트가 없으면 404가 아니라 500을 돌려준다 (기존 동작 유지)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "서버 오류"})
	})

	return r
}
