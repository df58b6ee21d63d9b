package models

import (
	"time"
)

// TitleMaxLength is the longest title an article may carry.
const TitleMaxLength = 150

// Article blog post
type Article struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Title         string    `gorm:"size:150;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageFilename string    `gorm:"size:255;not null" json:"image_filename"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Users with articles cannot be deleted.
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author,omitempty"`
}

// TableName returns the table name
func (Article) TableName() string {
	return "articles"
}
