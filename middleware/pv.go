package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

// PageViewRecorder counts successful page views per day and path.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method != http.MethodGet {
			return
		}
		status := ctx.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		path := ctx.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
			return
		}

		now := time.Now()
		// atomic upsert: concurrent first views of a page must not collide
		err := db.WithContext(ctx.Request.Context()).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": now}),
		}).Create(&models.PageView{Day: now.Format("2006-01-02"), Path: path, Count: 1}).Error
		if err != nil {
			utils.Sugar.Debugw("page view not recorded", "path", path, "error", err)
		}
	}
}
