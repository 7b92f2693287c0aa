package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/ikjunoob/Photomemo/internal/middleware"
	"github.com/ikjunoob/Photomemo/internal/models"
	"github.com/ikjunoob/Photomemo/internal/storage"
	"github.com/ikjunoob/Photomemo/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostHandler 게시글 CRUD + 첨부 정리 담당
type PostHandler struct {
	DB      *gorm.DB
	Store   storage.ObjectDeleter
	BaseURL string // 첨부 키가 공개되는 URL prefix
}

func NewPostHandler(db *gorm.DB, store storage.ObjectDeleter, baseURL string) *PostHandler {
	return &PostHandler{DB: db, Store: store, BaseURL: baseURL}
}

// postReq covers create and partial update. Pointers distinguish "field
// absent" from "field set to empty"; absent fields are left untouched.
type postReq struct {
	Title    *string          `json:"title"`
	Content  *string          `json:"content"`
	FileURL  *models.FileList `json:"fileUrl"`
	ImageURL *string          `json:"imageUrl"`
}

// resolved returns a copy of the post with attachment keys rewritten to
// public URLs. Legacy records carry a single imageUrl instead of the
// fileUrl list.
func (h *PostHandler) resolved(p models.Post) models.Post {
	raw := p.FileURL
	if len(raw) == 0 && p.ImageURL != "" {
		raw = models.FileList{p.ImageURL}
	}
	p.FileURL = storage.ResolveURLs(h.BaseURL, raw)
	return p
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "잘못된 id 형식입니다.")
		return 0, false
	}
	return uint(id), true
}

// ---------- 작성 ----------

func (h *PostHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "인증 필요")
		return
	}

	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	var files models.FileList
	if req.FileURL != nil {
		files = *req.FileURL
	}
	imageURL := ""
	if req.ImageURL != nil {
		imageURL = *req.ImageURL
	}
	// fileUrl이 비어 있으면 legacy imageUrl을 목록으로 승격
	if len(files) == 0 && imageURL != "" {
		files = models.FileList{imageURL}
	}

	// 작성자별 글 번호: 가장 최근 번호 + 1 (동시 작성 시 중복 가능성은 알려진 한계)
	nextNumber := 1
	var latest models.Post
	err := h.DB.Where("user_id = ?", claims.UserID).
		Order("number DESC").
		First(&latest).Error
	switch err {
	case nil:
		nextNumber = latest.Number + 1
	case gorm.ErrRecordNotFound:
		// 첫 글
	default:
		util.Error(c, http.StatusInternalServerError, "서버 오류가 발생했습니다.")
		return
	}

	post := models.Post{
		UserID:   claims.UserID,
		Number:   nextNumber,
		FileURL:  files,
		ImageURL: imageURL,
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := h.DB.Create(&post).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류가 발생했습니다.")
		return
	}

	// 생성 응답은 저장된 키 그대로 (URL 변환은 조회 쪽에서만)
	c.JSON(http.StatusCreated, post)
}

// ---------- 조회 ----------

func (h *PostHandler) List(c *gin.Context) {
	var posts []models.Post
	if err := h.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류")
		return
	}

	data := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		data = append(data, h.resolved(p))
	}
	c.JSON(http.StatusOK, data)
}

func (h *PostHandler) ListMine(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, "유저 정보 없음")
		return
	}

	var posts []models.Post
	if err := h.DB.Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류")
		return
	}

	data := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		data = append(data, h.resolved(p))
	}
	c.JSON(http.StatusOK, data)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "존재하지 않는 게시글")
		} else {
			util.Error(c, http.StatusInternalServerError, "서버 오류")
		}
		return
	}

	c.JSON(http.StatusOK, h.resolved(post))
}

// ---------- 수정 ----------

func (h *PostHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "인증 필요")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	var before models.Post
	if err := h.DB.First(&before, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "존재하지 않는 게시글")
		} else {
			util.Error(c, http.StatusInternalServerError, "서버 오류")
		}
		return
	}

	// 본인 글만 수정 가능
	if before.UserID != claims.UserID {
		util.Error(c, http.StatusForbidden, "권한이 없습니다.")
		return
	}

	oldVals := before.AttachmentValues()

	// 명시적으로 보낸 필드만 반영하고, 반영 결과 기준으로 새 첨부 목록을 계산
	newFiles := before.FileURL
	if req.FileURL != nil {
		newFiles = *req.FileURL
	}
	newImage := before.ImageURL
	if req.ImageURL != nil {
		newImage = *req.ImageURL
	}

	newVals := make([]string, 0, len(newFiles)+1)
	newVals = append(newVals, newFiles...)
	if newImage != "" {
		newVals = append(newVals, newImage)
	}

	// 옛 목록에만 있는 키는 스토리지에서 제거 (best-effort)
	stale := storage.StaleKeys(h.BaseURL, oldVals, newVals)
	if len(stale) > 0 {
		if failed := storage.DeleteBatch(c.Request.Context(), h.Store, stale); len(failed) > 0 {
			log.Printf("[S3 Delete Partial Fail] %v", failed)
		}
	}

	if req.Title != nil {
		before.Title = *req.Title
	}
	if req.Content != nil {
		before.Content = *req.Content
	}
	before.FileURL = newFiles
	before.ImageURL = newImage

	if err := h.DB.Save(&before).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류")
		return
	}

	c.JSON(http.StatusOK, before)
}

// ---------- 삭제 ----------

func (h *PostHandler) Delete(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "인증 필요")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "존재하지 않는 게시글")
		} else {
			util.Error(c, http.StatusInternalServerError, "서버 오류")
		}
		return
	}

	if post.UserID != claims.UserID {
		util.Error(c, http.StatusForbidden, "권한이 없습니다.")
		return
	}

	// 첨부 전체를 스토리지에서 제거. 일부 실패해도 DB 삭제는 진행한다.
	keys := storage.StaleKeys(h.BaseURL, post.AttachmentValues(), nil)
	if len(keys) > 0 {
		if failed := storage.DeleteBatch(c.Request.Context(), h.Store, keys); len(failed) > 0 {
			log.Printf("[S3 Delete Partial Fail] %v", failed)
		}
	}

	if err := h.DB.Delete(&post).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": post.ID})
}
