package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

// PostInput carries the caller-supplied fields of a new post.
type PostInput struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

// PostUpdate lists the only fields an edit may change. Nil means unchanged.
type PostUpdate struct {
	Title    *string
	Subtitle *string
	Body     *string
	ImgURL   *string
}

func (u PostUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Title != nil {
		cols["title"] = *u.Title
		cols["slug"] = slug.Make(*u.Title)
	}
	if u.Subtitle != nil {
		cols["subtitle"] = *u.Subtitle
	}
	if u.Body != nil {
		cols["body"] = *u.Body
	}
	if u.ImgURL != nil {
		cols["img_url"] = *u.ImgURL
	}
	return cols
}

// PostRepository stores posts. It does not check permissions: callers must
// have passed Authorizer.RequireAdmin before Create, Update or Delete.
type PostRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db, now: time.Now}
}

// ListAll returns every post in creation (id) order.
func (r *PostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get loads one post.
func (r *PostRepository) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post %d: %w", id, err)
	}
	return &post, nil
}

// Create stores a post authored by author. Author fields and date come from the server, never from input.
func (r *PostRepository) Create(ctx context.Context, author models.Identity, in PostInput) (*models.Post, error) {
	if !author.Authenticated() {
		return nil, ErrUnauthenticated
	}
	post := models.Post{
		Title:      in.Title,
		Slug:       slug.Make(in.Title),
		Subtitle:   in.Subtitle,
		Body:       in.Body,
		ImgURL:     in.ImgURL,
		Date:       r.now().Format(models.PostDateLayout),
		AuthorID:   author.ID,
		AuthorName: author.Name,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := titleTaken(tx, in.Title, 0); err != nil {
			return err
		} else if taken {
			return ErrDuplicateTitle
		}
		if err := tx.Create(&post).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateTitle
			}
			return fmt.Errorf("create post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Sugar.Infow("post created", "post_id", post.ID, "author_id", author.ID)
	return &post, nil
}

// Update applies the non-nil fields of upd. Author, date and id never change.
func (r *PostRepository) Update(ctx context.Context, id uint, upd PostUpdate) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load post %d: %w", id, err)
		}
		cols := upd.columns()
		if len(cols) == 0 {
			return nil
		}
		if upd.Title != nil && *upd.Title != post.Title {
			if taken, err := titleTaken(tx, *upd.Title, post.ID); err != nil {
				return err
			} else if taken {
				return ErrDuplicateTitle
			}
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(cols).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateTitle
			}
			return fmt.Errorf("update post %d: %w", id, err)
		}
		return tx.First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}

	utils.Sugar.Infow("post updated", "post_id", post.ID)
	return &post, nil
}

// Delete removes a post together with all of its comments in one transaction.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load post %d: %w", id, err)
		}
		res := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{})
		if res.Error != nil {
			return fmt.Errorf("delete comments of post %d: %w", id, res.Error)
		}
		removed = res.RowsAffected
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.Sugar.Infow("post deleted", "post_id", id, "comments_removed", removed)
	return nil
}

// Count returns the number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

func titleTaken(tx *gorm.DB, title string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&models.Post{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return n > 0, nil
}
