package models

import (
	"encoding/json"
	"time"
)

// FileList is the attachment list of a post. Requests historically sent
// it as a JSON array, a bare string, or a JSON-encoded array inside a
// string; all three shapes normalize to a flat list of non-empty keys
// here, and nothing downstream branches on shape again.
type FileList []string

func (f *FileList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = compact(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		// 문자열 안에 JSON 배열이 들어오는 경우도 있음
		var inner []string
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			*f = compact(inner)
			return nil
		}
		if s == "" {
			*f = nil
			return nil
		}
		*f = FileList{s}
		return nil
	}

	// null 또는 알 수 없는 형태는 빈 목록으로
	*f = nil
	return nil
}

func compact(in []string) FileList {
	out := make(FileList, 0, len(in))
	for _, v := range in {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Post is a single memo. FileURL holds attachment storage keys; ImageURL
// is the legacy single-attachment field, still read for old records.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index;not null" json:"user"`
	Number  int    `gorm:"not null" json:"number"` // 작성자별 글 번호
	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text" json:"content"`

	FileURL  FileList `gorm:"serializer:json" json:"fileUrl"`
	ImageURL string   `gorm:"size:512" json:"imageUrl,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttachmentValues returns every stored attachment value of the post,
// FileURL entries first, then the legacy ImageURL when set. Values may
// be bare keys or absolute URLs.
func (p *Post) AttachmentValues() []string {
	vals := make([]string, 0, len(p.FileURL)+1)
	vals = append(vals, p.FileURL...)
	if p.ImageURL != "" {
		vals = append(vals, p.ImageURL)
	}
	return vals
}
