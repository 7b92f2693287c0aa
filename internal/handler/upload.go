package handler

import (
	"context"
	"net/http"

	"github.com/ikjunoob/Photomemo/internal/util"

	"github.com/gin-gonic/gin"
)

// Presigner issues presigned upload URLs.
type Presigner interface {
	PresignPutURL(ctx context.Context) (key string, url string, err error)
}

// UploadHandler 프론트가 S3로 직접 업로드할 수 있게 presigned URL 발급
type UploadHandler struct {
	Store Presigner
}

func NewUploadHandler(store Presigner) *UploadHandler {
	return &UploadHandler{Store: store}
}

// Presign returns a storage key and a time-limited PUT URL for it. The
// client uploads the file there, then references the key in a post's
// fileUrl.
func (h *UploadHandler) Presign(c *gin.Context) {
	key, url, err := h.Store.PresignPutURL(c.Request.Context())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "업로드 URL 발급 실패")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":       key,
		"uploadUrl": url,
	})
}
