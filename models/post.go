package models

import "time"

// PostDateLayout renders the human-readable creation date, e.g. "March 07, 2024".
const PostDateLayout = "January 02, 2006"

// Post is a blog post. AuthorID, AuthorName and Date are stamped once at creation.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Slug       string    `gorm:"size:255;index" json:"slug"`
	Subtitle   string    `gorm:"size:250;not null" json:"subtitle"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	ImgURL     string    `gorm:"size:250;not null" json:"img_url"`
	Date       string    `gorm:"size:250;not null" json:"date"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	AuthorName string    `gorm:"size:250;not null" json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
