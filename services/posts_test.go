package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blog/models"
)

var admin = models.Identity{ID: 1, Name: "Ann", Email: "a@x.com"}

func newPostInput(title string) PostInput {
	return PostInput{
		Title:    title,
		Subtitle: "Sub",
		Body:     "<p>Body</p>",
		ImgURL:   "https://example.com/a.jpg",
	}
}

func TestCreatePostStampsAuthorAndDate(t *testing.T) {
	posts := NewPostRepository(setupTestDB(t))
	posts.now = func() time.Time { return time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC) }

	post, err := posts.Create(context.Background(), admin, newPostInput("Hello, World!"))
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, "March 07, 2024", post.Date)
	assert.Equal(t, admin.ID, post.AuthorID)
	assert.Equal(t, "Ann", post.AuthorName)

	got, err := posts.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", got.Title)
	assert.Equal(t, "March 07, 2024", got.Date)
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(setupTestDB(t))

	_, err := posts.Create(ctx, admin, newPostInput("Hello"))
	require.NoError(t, err)
	_, err = posts.Create(ctx, admin, newPostInput("Hello"))
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	n, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreatePostRequiresAuthor(t *testing.T) {
	posts := NewPostRepository(setupTestDB(t))
	_, err := posts.Create(context.Background(), models.Anonymous, newPostInput("Hello"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListAllInCreationOrder(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(setupTestDB(t))

	list, err := posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := posts.Create(ctx, admin, newPostInput(title))
		require.NoError(t, err)
	}
	list, err = posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "First", list[0].Title)
	assert.Equal(t, "Second", list[1].Title)
	assert.Equal(t, "Third", list[2].Title)
}

func TestUpdatePostKeepsAuthorAndDate(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(setupTestDB(t))
	post, err := posts.Create(ctx, admin, newPostInput("Hello"))
	require.NoError(t, err)

	title := "Hello again"
	updated, err := posts.Update(ctx, post.ID, PostUpdate{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, "hello-again", updated.Slug)
	assert.Equal(t, post.Subtitle, updated.Subtitle)
	assert.Equal(t, post.Body, updated.Body)
	assert.Equal(t, post.Date, updated.Date)
	assert.Equal(t, post.AuthorID, updated.AuthorID)
	assert.Equal(t, post.AuthorName, updated.AuthorName)
}

func TestUpdatePostTitleRules(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(setupTestDB(t))
	first, err := posts.Create(ctx, admin, newPostInput("First"))
	require.NoError(t, err)
	_, err = posts.Create(ctx, admin, newPostInput("Second"))
	require.NoError(t, err)

	taken := "Second"
	_, err = posts.Update(ctx, first.ID, PostUpdate{Title: &taken})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	same, body := "First", "<p>New body</p>"
	updated, err := posts.Update(ctx, first.ID, PostUpdate{Title: &same, Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "<p>New body</p>", updated.Body)

	_, err = posts.Update(ctx, 999, PostUpdate{Body: &body})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserService(db, testHashCost)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	bob := mustRegister(t, users, "b@x.com", "Bob")
	keep, err := posts.Create(ctx, admin, newPostInput("Keep"))
	require.NoError(t, err)
	drop, err := posts.Create(ctx, admin, newPostInput("Drop"))
	require.NoError(t, err)

	for _, id := range []uint{keep.ID, drop.ID, drop.ID} {
		_, err := comments.Create(ctx, bob.Identity(), id, "nice")
		require.NoError(t, err)
	}

	require.NoError(t, posts.Delete(ctx, drop.ID))

	_, err = posts.Get(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	left, err := comments.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)

	views, err := comments.ListForPost(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	assert.ErrorIs(t, posts.Delete(ctx, drop.ID), ErrNotFound)
}
