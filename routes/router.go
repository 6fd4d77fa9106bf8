package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/controllers"
	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
	"github.com/cppla/blog/web"
)

// SetupRouter wires routes, middlewares, and controllers, relaying contact
// messages through the configured SMTP server.
func SetupRouter(db *gorm.DB, cfg config.AppConfig) *gin.Engine {
	contact := services.NewContactService(utils.NewMailer(cfg), cfg.ContactRecipient)
	return NewRouter(db, cfg, contact)
}

// NewRouter builds the engine around an explicit contact notifier.
func NewRouter(db *gorm.DB, cfg config.AppConfig, contact controllers.ContactNotifier) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// access log goes to its own rolling file
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err == nil {
			r.Use(utils.Ginzap(gl, time.RFC3339, true))
			r.Use(utils.RecoveryWithZap(gl, false))
		} else {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
			r.Use(gin.Recovery())
		}
	} else {
		r.Use(utils.RecoveryWithZap(utils.Logger, false))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	tmpl, err := web.Templates()
	if err != nil {
		panic(err)
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	users := services.NewUserService(db, cfg.BcryptCost)
	posts := services.NewPostRepository(db)
	comments := services.NewCommentRepository(db)
	policy := services.Policy{AdminMaxUserID: cfg.AdminMaxUserID}
	sessions := middleware.Sessions{
		Secret: cfg.SecretKey,
		TTL:    time.Duration(cfg.SessionHours) * time.Hour,
		Secure: cfg.CookieSecure,
	}
	view := controllers.NewView(policy)

	var captcha *utils.Captcha
	if cfg.RegisterCaptchaEnabled {
		captcha = utils.NewCaptcha(utils.CaptchaOptions{
			Length: cfg.CaptchaLength,
			Width:  cfg.CaptchaWidth,
			Height: cfg.CaptchaHeight,
			TTL:    time.Duration(cfg.CaptchaTTLMinutes) * time.Minute,
		})
	}
	authController := controllers.NewAuthController(users, sessions, view, captcha)
	postController := controllers.NewPostController(posts, comments, policy, view)
	pageController := controllers.NewPageController(contact, view)
	statsController := controllers.NewStatsController(db, users, posts, comments)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(cors.New(corsCfg))
	api.GET("/stats", statsController.GetStats)
	api.GET("/posts", postController.ListPostsJSON)

	site := r.Group("/")
	site.Use(middleware.CSRF(cfg.CookieSecure))
	site.Use(sessions.LoadIdentity(users))
	site.Use(middleware.PageViewRecorder(db))

	limited := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	site.GET("/", postController.Index)
	site.GET("/register", authController.RegisterPage)
	site.POST("/register", limited, authController.Register)
	site.GET("/login", authController.LoginPage)
	site.POST("/login", limited, authController.Login)
	site.GET("/logout", authController.Logout)

	site.GET("/post/:id", postController.ShowPost)
	site.POST("/post/:id", middleware.AuthRequired(), postController.AddComment)

	site.GET("/about", pageController.About)
	site.GET("/contact", pageController.ContactPage)
	site.POST("/contact", limited, pageController.Contact)

	site.GET("/new-post", postController.NewPostPage)
	site.POST("/new-post", postController.CreatePost)
	site.GET("/edit-post/:id", postController.EditPostPage)
	site.POST("/edit-post/:id", postController.UpdatePost)
	site.GET("/delete/:id", postController.DeletePost)

	r.NoRoute(middleware.CSRF(cfg.CookieSecure), sessions.LoadIdentity(users), view.NotFound)

	return r
}
