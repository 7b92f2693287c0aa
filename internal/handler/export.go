package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ikjunoob/Photomemo/internal/middleware"
	"github.com/ikjunoob/Photomemo/internal/models"
	"github.com/ikjunoob/Photomemo/internal/storage"
	"github.com/ikjunoob/Photomemo/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 내 게시글을 CSV/XLSX 파일로 내려받기
type ExportHandler struct {
	DB      *gorm.DB
	BaseURL string
}

func NewExportHandler(db *gorm.DB, baseURL string) *ExportHandler {
	return &ExportHandler{DB: db, BaseURL: baseURL}
}

var exportHeaders = []string{"번호", "제목", "내용", "첨부", "작성일"}

func (h *ExportHandler) myPosts(c *gin.Context) ([]models.Post, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "인증 필요")
		return nil, false
	}

	var posts []models.Post
	if err := h.DB.Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "서버 오류")
		return nil, false
	}
	return posts, true
}

func (h *ExportHandler) attachmentCell(p *models.Post) string {
	raw := p.FileURL
	if len(raw) == 0 && p.ImageURL != "" {
		raw = models.FileList{p.ImageURL}
	}
	return strings.Join(storage.ResolveURLs(h.BaseURL, raw), "\n")
}

// ExportCSV 게시글을 CSV로 내보내기
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	posts, ok := h.myPosts(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"posts_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM (엑셀에서 한글 깨짐 방지)
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range posts {
		p := &posts[i]
		writer.Write([]string{
			fmt.Sprintf("%d", p.Number),
			p.Title,
			p.Content,
			h.attachmentCell(p),
			p.CreatedAt.Format("2006-01-02"),
		})
	}
}

// ExportXLSX 게시글을 XLSX로 내보내기
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	posts, ok := h.myPosts(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "게시글"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "내보내기 실패")
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range posts {
		p := &posts[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.Number)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), p.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.Content)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), h.attachmentCell(p))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), p.CreatedAt.Format("2006-01-02"))
	}

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "D", 40)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"posts_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "내보내기 실패")
	}
}
