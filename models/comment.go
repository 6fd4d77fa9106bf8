package models

import "time"

// Comment is a reply left on a post by an authenticated user.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a comment joined with its author's public details.
type CommentView struct {
	Comment
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"-"`
}
