package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/skillforge/quest-backend/internal/config"
	"github.com/skillforge/quest-backend/internal/database"
	"github.com/skillforge/quest-backend/internal/handler"
	"github.com/skillforge/quest-backend/internal/mailer"
	"github.com/skillforge/quest-backend/internal/middleware"
	"github.com/skillforge/quest-backend/internal/queue"
	"github.com/skillforge/quest-backend/internal/repository"
	"github.com/skillforge/quest-backend/internal/router"
	queue_publisher "github.com/skillforge/quest-backend/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db, time.Duration(cfg.SessionTTLDays)*24*time.Hour)
	modules := repository.NewModuleRepo(db)
	activities := repository.NewActivityRepo(db)
	mail := mailer.New(cfg.SMTP)

	// Optional redis-backed response cache for the public module catalog.
	// Writes to the catalog invalidate cached responses so readers never
	// see a replaced document.
	var (
		moduleCache      echo.MiddlewareFunc
		cacheInvalidator func(ctx context.Context)
	)
	if rdb := config.NewRedisClient(); rdb != nil {
		cacheCfg := config.LoadCacheConfig()
		moduleCache = middleware.ResponseCache(cacheCfg, rdb)
		cacheInvalidator = middleware.CacheInvalidator(cacheCfg, rdb)
	} else {
		log.Printf("redis unavailable; module catalog served uncached")
	}

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, sessions),
		Verify:   handler.NewVerifyHandler(users, mail),
		Reset:    handler.NewResetHandler(cfg, users, mail),
		Progress: handler.NewProgressHandler(users),
		Activity: handler.NewActivityHandler(activities, queue_publisher.PublishActivityRecorded),
		Modules:  handler.NewModuleHandler(modules, cacheInvalidator),
		Upload:   handler.NewUploadHandler(cfg.UploadDir),
	}

	// Background consumer mirroring activity events into logs/activity.log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	router.RegisterRoutes(e, h, sessions, cfg.AllowedOrigins, moduleCache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
