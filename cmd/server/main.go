package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/inkwell/blog/internal/config"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/router"
	"github.com/inkwell/blog/internal/storage"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const sessionPurgeInterval = time.Hour

func main() {
	configFile := flag.String("config", "./config/config.yaml", "path to the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	logger := newLogger(cfg.Log)

	// Database
	db, err := models.OpenDB(cfg.Database)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	// Upload storage
	provider, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}

	// Redis is optional
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddress(),
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("redis not reachable at %s: %v", cfg.Redis.GetAddress(), err)
		}
	}

	app, err := router.SetupRouter(router.Dependencies{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Storage:     provider,
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatalf("failed to set up router: %v", err)
	}

	go purgeSessions(app, logger)

	addr := cfg.Server.GetAddress()
	logger.WithFields(logrus.Fields{
		"database": cfg.Database.Driver,
		"storage":  cfg.Storage.Provider,
		"sessions": cfg.Session.Store,
		"redis":    cfg.Redis.Enabled,
	}).Infof("server listening on %s", addr)

	if err := app.Engine.Run(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// purgeSessions drops expired sessions at startup and then periodically
func purgeSessions(app *router.App, logger *logrus.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		n, err := app.AuthService.PurgeExpiredSessions(context.Background())
		if err != nil {
			logger.Warnf("failed to purge expired sessions: %v", err)
		} else if n > 0 {
			logger.Infof("purged %d expired sessions", n)
		}
		<-ticker.C
	}
}
