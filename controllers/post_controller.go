package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/models"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

const postsCachePrefix = "cache:posts:"

type postForm struct {
	Title    string `form:"title" binding:"required,max=250"`
	Subtitle string `form:"subtitle" binding:"required,max=250"`
	ImgURL   string `form:"img_url" binding:"required,url,max=250"`
	Body     string `form:"body" binding:"required"`
}

func (f postForm) clean() postForm {
	return postForm{
		Title:    utils.StripTags(f.Title),
		Subtitle: utils.StripTags(f.Subtitle),
		ImgURL:   strings.TrimSpace(f.ImgURL),
		Body:     utils.Sanitize(f.Body),
	}
}

type commentForm struct {
	Comment string `form:"comment" binding:"required"`
}

// PostController serves the post pages, the comment form and the admin editor.
type PostController struct {
	posts    *services.PostRepository
	comments *services.CommentRepository
	auth     services.Authorizer
	view     *View
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostRepository, comments *services.CommentRepository, auth services.Authorizer, view *View) *PostController {
	return &PostController{posts: posts, comments: comments, auth: auth, view: view}
}

// Index lists every post.
func (p *PostController) Index(ctx *gin.Context) {
	posts, err := p.posts.ListAll(ctx.Request.Context())
	if err != nil {
		p.view.Error(ctx, err)
		return
	}
	p.view.Page(ctx, http.StatusOK, "index.html", gin.H{"Posts": posts})
}

// ShowPost renders one post with its comments.
func (p *PostController) ShowPost(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		p.view.NotFound(ctx)
		return
	}
	p.renderPost(ctx, http.StatusOK, id, "")
}

// AddComment attaches the caller's comment to a post.
func (p *PostController) AddComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		p.view.NotFound(ctx)
		return
	}
	identity := middleware.CurrentIdentity(ctx)
	if !identity.Authenticated() {
		p.view.Error(ctx, services.ErrUnauthenticated)
		return
	}

	var form commentForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		p.renderPost(ctx, http.StatusBadRequest, id, form.Comment)
		return
	}
	text := utils.Sanitize(form.Comment)

	_, err := p.comments.Create(ctx.Request.Context(), identity, id, text)
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.SetFlash(ctx, "Comment is required.")
		p.renderPost(ctx, http.StatusBadRequest, id, form.Comment)
		return
	case err != nil:
		p.view.Error(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, postPath(id))
}

// NewPostPage shows the empty editor. Admin only.
func (p *PostController) NewPostPage(ctx *gin.Context) {
	if err := p.auth.RequireAdmin(middleware.CurrentIdentity(ctx)); err != nil {
		p.view.Error(ctx, err)
		return
	}
	p.renderEditor(ctx, http.StatusOK, "New Post", "/new-post", postForm{})
}

// CreatePost stores a new post authored by the caller. Admin only.
func (p *PostController) CreatePost(ctx *gin.Context) {
	identity := middleware.CurrentIdentity(ctx)
	if err := p.auth.RequireAdmin(identity); err != nil {
		p.view.Error(ctx, err)
		return
	}

	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		p.renderEditor(ctx, http.StatusBadRequest, "New Post", "/new-post", form)
		return
	}
	in := form.clean()

	_, err := p.posts.Create(ctx.Request.Context(), identity, services.PostInput{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Body:     in.Body,
		ImgURL:   in.ImgURL,
	})
	if p.editorFailed(ctx, err, "New Post", "/new-post", form) {
		return
	}
	utils.InvalidateByPrefix(ctx.Request.Context(), postsCachePrefix)
	ctx.Redirect(http.StatusSeeOther, "/")
}

// EditPostPage shows the editor pre-filled with the stored post. Admin only.
func (p *PostController) EditPostPage(ctx *gin.Context) {
	if err := p.auth.RequireAdmin(middleware.CurrentIdentity(ctx)); err != nil {
		p.view.Error(ctx, err)
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		p.view.NotFound(ctx)
		return
	}
	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		p.view.Error(ctx, err)
		return
	}
	p.renderEditor(ctx, http.StatusOK, "Edit Post", editPath(id), postForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	})
}

// UpdatePost replaces the editable fields of a post. Admin only.
// Author and date are never taken from the form.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	if err := p.auth.RequireAdmin(middleware.CurrentIdentity(ctx)); err != nil {
		p.view.Error(ctx, err)
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		p.view.NotFound(ctx)
		return
	}

	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		p.renderEditor(ctx, http.StatusBadRequest, "Edit Post", editPath(id), form)
		return
	}
	in := form.clean()

	_, err := p.posts.Update(ctx.Request.Context(), id, services.PostUpdate{
		Title:    &in.Title,
		Subtitle: &in.Subtitle,
		Body:     &in.Body,
		ImgURL:   &in.ImgURL,
	})
	if p.editorFailed(ctx, err, "Edit Post", editPath(id), form) {
		return
	}
	utils.InvalidateByPrefix(ctx.Request.Context(), postsCachePrefix)
	ctx.Redirect(http.StatusSeeOther, postPath(id))
}

// DeletePost removes a post and its comments. Admin only.
func (p *PostController) DeletePost(ctx *gin.Context) {
	if err := p.auth.RequireAdmin(middleware.CurrentIdentity(ctx)); err != nil {
		p.view.Error(ctx, err)
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		p.view.NotFound(ctx)
		return
	}
	if err := p.posts.Delete(ctx.Request.Context(), id); err != nil {
		p.view.Error(ctx, err)
		return
	}
	utils.InvalidateByPrefix(ctx.Request.Context(), postsCachePrefix)
	ctx.Redirect(http.StatusSeeOther, "/")
}

// ListPostsJSON returns every post as JSON, served from the Redis cache when enabled.
func (p *PostController) ListPostsJSON(ctx *gin.Context) {
	cacheKey := postsCachePrefix + "list"
	var posts []models.Post
	if !utils.CacheGetJSON(ctx.Request.Context(), cacheKey, &posts) {
		var err error
		posts, err = p.posts.ListAll(ctx.Request.Context())
		if err != nil {
			utils.Sugar.Errorw("list posts failed", "request_id", ctx.GetString(utils.RequestIDKey), "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
			return
		}
		utils.CacheSetJSON(ctx.Request.Context(), cacheKey, posts, 10*time.Minute)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	utils.Success(ctx, gin.H{"posts": posts})
}

func (p *PostController) renderPost(ctx *gin.Context, status int, id uint, commentText string) {
	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		p.view.Error(ctx, err)
		return
	}
	comments, err := p.comments.ListForPost(ctx.Request.Context(), id)
	if err != nil {
		p.view.Error(ctx, err)
		return
	}
	p.view.Page(ctx, status, "post.html", gin.H{
		"Title":       post.Title,
		"Post":        post,
		"Comments":    comments,
		"CommentText": commentText,
	})
}

func (p *PostController) renderEditor(ctx *gin.Context, status int, heading, action string, form postForm) {
	p.view.Page(ctx, status, "make-post.html", gin.H{
		"Title":   heading,
		"Heading": heading,
		"Action":  action,
		"Form":    form,
	})
}

// editorFailed renders the outcome of a failed create or update and reports whether it did.
func (p *PostController) editorFailed(ctx *gin.Context, err error, heading, action string, form postForm) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, services.ErrDuplicateTitle):
		utils.SetFlash(ctx, "A post with this title already exists.")
		p.renderEditor(ctx, http.StatusConflict, heading, action, form)
	default:
		p.view.Error(ctx, err)
	}
	return true
}

func postPath(id uint) string {
	return "/post/" + strconv.FormatUint(uint64(id), 10)
}

func editPath(id uint) string {
	return "/edit-post/" + strconv.FormatUint(uint64(id), 10)
}
