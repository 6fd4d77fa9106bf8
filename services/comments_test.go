package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blog/models"
)

func TestCommentsListedInOrderWithAuthor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserService(db, testHashCost)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	ann := mustRegister(t, users, "a@x.com", "Ann")
	bob := mustRegister(t, users, "b@x.com", "Bob")
	post, err := posts.Create(ctx, ann.Identity(), newPostInput("Hello"))
	require.NoError(t, err)

	_, err = comments.Create(ctx, bob.Identity(), post.ID, "first")
	require.NoError(t, err)
	_, err = comments.Create(ctx, ann.Identity(), post.ID, "second")
	require.NoError(t, err)

	views, err := comments.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "first", views[0].Text)
	assert.Equal(t, "Bob", views[0].AuthorName)
	assert.Equal(t, "b@x.com", views[0].AuthorEmail)
	assert.Equal(t, "second", views[1].Text)
	assert.Equal(t, "Ann", views[1].AuthorName)
	assert.Equal(t, post.ID, views[1].PostID)
}

func TestCommentOnMissingPost(t *testing.T) {
	ctx := context.Background()
	comments := NewCommentRepository(setupTestDB(t))

	_, err := comments.Create(ctx, models.Identity{ID: 5, Name: "Eve"}, 42, "hello?")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := comments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRejectsAnonymousAndEmpty(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	post, err := posts.Create(ctx, admin, newPostInput("Hello"))
	require.NoError(t, err)

	_, err = comments.Create(ctx, models.Anonymous, post.ID, "drive-by")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = comments.Create(ctx, admin, post.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConcurrentCommentAndDeleteLeaveNoOrphans(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	post, err := posts.Create(ctx, admin, newPostInput("Doomed"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := comments.Create(ctx, admin, post.ID, fmt.Sprintf("comment %d", i))
			if err != nil {
				assert.ErrorIs(t, err, ErrNotFound)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, posts.Delete(ctx, post.ID))
	}()
	wg.Wait()

	var orphans int64
	require.NoError(t, db.Model(&models.Comment{}).
		Where("post_id NOT IN (?)", db.Model(&models.Post{}).Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}
