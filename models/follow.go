package models

import "time"

// Follow is a directed subscription edge from a reader to an author.
// The (user, author) pair is unique at the database level; that index,
// not application logic, is the final arbiter under concurrent follows.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
