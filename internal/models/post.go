package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostTextLength bounds the post body, counted in characters.
const MaxPostTextLength = 500

// TextPreviewLength is how many characters of the body appear in list views.
const TextPreviewLength = 20

// Post is a short text publication by a profile, optionally labelled with
// shared tags and an attached picture.
type Post struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Text       string  `gorm:"type:text;not null" json:"text"`
	AuthorID   uint    `gorm:"not null;index" json:"author_id"`
	Author     Profile `gorm:"foreignKey:AuthorID" json:"author"`
	Tags       []Tag   `gorm:"many2many:post_tags" json:"tags"`
	PictureURL string  `json:"picture_url"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TextPreview returns the first TextPreviewLength characters of the body,
// with "..." appended when the body was truncated.
func (p *Post) TextPreview() string {
	runes := []rune(p.Text)
	if len(runes) <= TextPreviewLength {
		return p.Text
	}
	return string(runes[:TextPreviewLength]) + "..."
}
