package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blog/models"
)

// CommentRepository stores comments attached to posts.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a CommentRepository.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListForPost returns the comments of a post in creation order, with author name and email.
func (r *CommentRepository) ListForPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	var views []models.CommentView
	err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.name AS author_name, users.email AS author_email").
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.post_id = ?", postID).
		Order("comments.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return views, nil
}

// Create attaches a comment by author to an existing post.
func (r *CommentRepository) Create(ctx context.Context, author models.Identity, postID uint, text string) (*models.Comment, error) {
	if !author.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	comment := models.Comment{Text: text, AuthorID: author.ID, PostID: postID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the lock keeps a concurrent delete from orphaning the new row
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load post %d: %w", postID, err)
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Count returns the number of comments.
func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error
	return n, err
}
