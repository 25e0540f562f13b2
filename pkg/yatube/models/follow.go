package models

import "time"

// Follow represents a directed edge meaning "UserID's feed includes
// AuthorID's posts". The composite unique index keeps the pair unique at
// the storage layer, so repeated follows through any code path cannot
// create duplicate edges.
type Follow struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"author_id"`

	// Relationships. Both ends cascade on user deletion.
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}
