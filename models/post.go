package models

import "time"

// Post is an entry written by a user, optionally placed in a group and
// optionally carrying one image attachment. CreatedAt is set once and
// never touched by edits; all listings order by it descending.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Image     string    `gorm:"size:512" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group     *Group    `gorm:"constraint:OnDelete:SET NULL;" json:"group,omitempty"`
}
