package models

import "time"

// Group represents a named category that posts may belong to
type Group struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`

	// Deleting a group detaches its posts rather than deleting them.
	Posts []Post `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"posts,omitempty"`
}
