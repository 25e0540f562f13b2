package models

import "time"

// Comment represents authored text attached to exactly one post
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`

	// Relationships
	Post   Post `gorm:"foreignKey:PostID" json:"-"`
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// ShortText returns the first TextPreviewLen runes of the comment text.
func (c Comment) ShortText() string {
	runes := []rune(c.Text)
	if len(runes) <= TextPreviewLen {
		return c.Text
	}
	return string(runes[:TextPreviewLen])
}
