package router

import (
	"context"
	"net/http"
	"time"

	"github.com/inkwell/blog/internal/config"
	"github.com/inkwell/blog/internal/handler"
	"github.com/inkwell/blog/internal/middleware"
	"github.com/inkwell/blog/internal/repository"
	"github.com/inkwell/blog/internal/service"
	"github.com/inkwell/blog/internal/storage"
	"github.com/inkwell/blog/internal/utils"
	"github.com/inkwell/blog/internal/web"
	"github.com/inkwell/blog/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies everything the router wires into handlers. RedisClient may be nil.
type Dependencies struct {
	Config      *config.Config
	Logger      *logrus.Logger
	DB          *gorm.DB
	Storage     storage.Provider
	RedisClient *redis.Client
}

// App the assembled HTTP application
type App struct {
	Engine      *gin.Engine
	AuthService *service.AuthService
}

// SetupRouter builds services, handlers and routes
func SetupRouter(deps Dependencies) (*App, error) {
	cfg := deps.Config

	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	r.SetHTMLTemplate(web.Templates())

	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	if corsMiddleware := middleware.CORS(cfg.CORS); corsMiddleware != nil {
		r.Use(corsMiddleware)
	}

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	articleRepo := repository.NewArticleRepository(deps.DB)

	var sessionStore service.SessionStore = repository.NewSessionRepository(deps.DB)
	if cfg.Session.Store == "redis" && deps.RedisClient != nil {
		sessionStore = repository.NewRedisSessionRepository(deps.RedisClient)
	}

	// Services
	jwtManager := utils.NewJWTManager(cfg.Session.SecretKey, cfg.Session.GetExpireDuration())
	authService := service.NewAuthService(userRepo, sessionStore, jwtManager)
	uploadService := service.NewUploadService(deps.Storage)
	articleService := service.NewArticleService(articleRepo, uploadService, deps.Logger)

	// Handlers
	cookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		MaxAge: int(cfg.Session.GetExpireDuration().Seconds()),
		Secure: cfg.Session.SecureCookie,
	}
	authHandler := handler.NewAuthHandler(authService, cookie)
	articleHandler := handler.NewArticleHandler(articleService)
	apiHandler := handler.NewAPIHandler(articleService)
	uploadHandler := handler.NewUploadHandler(uploadService)

	uploadGuards := []gin.HandlerFunc{}
	if deps.RedisClient != nil && cfg.Redis.MaxConcurrentUploads > 0 {
		limiter := redis_limiter.NewRedisLimiter(deps.RedisClient, cfg.Redis.MaxConcurrentUploads, "blog:uploads:", cfg.Redis.GetSlotTTL())
		uploadGuards = append(uploadGuards, middleware.UploadLimit(limiter, deps.Logger))
	}

	r.GET("/healthz", healthHandler(deps.DB, deps.RedisClient))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/articles", apiHandler.ListArticles)
		api.GET("/article/:id", apiHandler.GetArticle)
	}

	pages := r.Group("")
	pages.Use(middleware.LoadSession(authService, cookie, deps.Logger))
	{
		pages.GET("/", articleHandler.Index)
		pages.GET("/article/:id", articleHandler.Show)
		pages.GET("/uploads/:filename", uploadHandler.ServeImage)

		pages.GET("/register", authHandler.RegisterPage)
		pages.POST("/register", authHandler.Register)
		pages.GET("/login", authHandler.LoginPage)
		pages.POST("/login", authHandler.Login)

		pages.POST("/upload_image", append(uploadGuards, uploadHandler.UploadImage)...)

		authorized := pages.Group("")
		authorized.Use(middleware.RequireSession())
		{
			authorized.GET("/logout", authHandler.Logout)
			authorized.GET("/create_article", articleHandler.CreatePage)
			authorized.POST("/create_article", append(uploadGuards, articleHandler.Create)...)
		}
	}

	return &App{Engine: r, AuthService: authService}, nil
}

func healthHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}

		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status = http.StatusServiceUnavailable
				checks["redis"] = err.Error()
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
