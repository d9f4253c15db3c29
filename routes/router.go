package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/cache"
	"github.com/avolkov/postline/config"
	"github.com/avolkov/postline/controllers"
	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(store storage.Storage, pages cache.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.LoadHTMLGlob(cfg.TemplatesGlob)
	r.Static("/static", "./static")

	r.Use(middleware.Identity(store))

	postController := controllers.NewPostController(store)
	followController := controllers.NewFollowController(store)
	authController := controllers.NewAuthController(store)

	homeCacheTTL := time.Duration(cfg.HomeCacheTTLSeconds) * time.Second

	// Public pages. The home listing sits behind the page cache; its
	// output is served verbatim until the TTL runs out.
	r.GET("/", middleware.PageCache(pages, homeCacheTTL), postController.Index)
	r.GET("/group/:slug/", postController.GroupPosts)
	r.GET("/profile/:username/", postController.Profile)
	r.GET("/posts/:id/", postController.PostDetail)

	// Identity subsystem
	authGroup := r.Group("/auth", middleware.RateLimit())
	authGroup.GET("/login/", authController.LoginForm)
	authGroup.POST("/login/", authController.Login)
	authGroup.GET("/signup/", authController.SignupForm)
	authGroup.POST("/signup/", authController.Signup)
	authGroup.GET("/logout/", authController.Logout)

	// Pages needing an authenticated identity; anonymous requests are
	// redirected to login with a next parameter.
	protected := r.Group("", middleware.LoginRequired())
	protected.GET("/create/", postController.Create)
	protected.POST("/create/", postController.Create)
	protected.GET("/posts/:id/edit/", postController.Edit)
	protected.POST("/posts/:id/edit/", postController.Edit)
	protected.GET("/posts/:id/comment/", postController.AddComment)
	protected.POST("/posts/:id/comment/", postController.AddComment)
	protected.GET("/follow/", followController.Feed)
	protected.GET("/profile/:username/follow/", followController.Follow)
	protected.GET("/profile/:username/unfollow/", followController.Unfollow)

	r.NoRoute(controllers.NotFound)

	return r
}
