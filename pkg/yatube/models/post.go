package models

import "time"

// TextPreviewLen is the number of leading runes of a post's text used as
// its display title.
const TextPreviewLen = 30

// Post represents an authored text entry, optionally attached to a group
// and illustrated with an uploaded image
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Image     string    `json:"image,omitempty"` // media path, empty when no image

	// Relationships
	Author   User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// ShortText returns the first TextPreviewLen runes of the post text.
func (p Post) ShortText() string {
	runes := []rune(p.Text)
	if len(runes) <= TextPreviewLen {
		return p.Text
	}
	return string(runes[:TextPreviewLen])
}
