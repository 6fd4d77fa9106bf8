package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// StatsController provides blog statistics such as counts and today's page views.
type StatsController struct {
	db       *gorm.DB
	users    *services.UserService
	posts    *services.PostRepository
	comments *services.CommentRepository
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, users *services.UserService, posts *services.PostRepository, comments *services.CommentRepository) *StatsController {
	return &StatsController{db: db, users: users, posts: posts, comments: comments}
}

// GetStats returns aggregate statistics for the blog.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	// a failed count degrades to 0 instead of failing the endpoint
	userCount, err := s.users.Count(rctx)
	if err != nil {
		userCount = 0
	}
	postCount, err := s.posts.Count(rctx)
	if err != nil {
		postCount = 0
	}
	commentCount, err := s.comments.Count(rctx)
	if err != nil {
		commentCount = 0
	}

	var viewsToday int64
	today := time.Now().Format("2006-01-02")
	if err := s.db.WithContext(rctx).Model(&models.PageView{}).
		Where("day = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":       userCount,
		"post_count":       postCount,
		"comment_count":    commentCount,
		"page_views_today": viewsToday,
	})
}
