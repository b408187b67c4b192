package main // Entry point package

import (
    "context"       // startup deadlines and shutdown signalling
    "errors"        // errors.Is for the server close sentinel
    "net/http"      // http.ErrServerClosed
    "os"            // signal set and exit
    "os/signal"     // graceful shutdown on SIGINT/SIGTERM
    "syscall"       // SIGTERM
    "time"          // shutdown timeout

    "github.com/sirupsen/logrus" // structured logging

    "github.com/iliyamo/resort-booking/internal/config"     // Internal config loader
    "github.com/iliyamo/resort-booking/internal/database"   // MySQL pool and schema
    "github.com/iliyamo/resort-booking/internal/handler"    // HTTP handlers
    "github.com/iliyamo/resort-booking/internal/queue"      // booking events
    "github.com/iliyamo/resort-booking/internal/repository" // MySQL repositories
    "github.com/iliyamo/resort-booking/internal/router"     // Internal router setup
    "github.com/iliyamo/resort-booking/internal/service"    // domain services
    "github.com/iliyamo/resort-booking/internal/storage"    // uploaded images
)

func main() {
    config.LoadDotEnv()
    cfg := config.Load() // Load environment config

    logrus.SetFormatter(&logrus.JSONFormatter{})
    if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
        logrus.SetLevel(lvl)
    }
    log := logrus.WithField("env", cfg.Env)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(cfg)
    if err != nil {
        log.WithError(err).Fatal("database unavailable")
    }
    defer db.Close()

    migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
    err = database.Migrate(migrateCtx, db)
    cancel()
    if err != nil {
        log.WithError(err).Fatal("schema migration failed")
    }

    rooms := repository.NewRoomRepo(db)
    bookings := repository.NewBookingRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    seeded, err := service.EnsureAdmin(ctx, users, service.AdminSeed{
        Name:     cfg.AdminName,
        Email:    cfg.AdminEmail,
        Password: cfg.AdminPassword,
        Cost:     cfg.BcryptCost,
    })
    if err != nil {
        log.WithError(err).Fatal("admin seed failed")
    }
    if seeded {
        log.WithField("email", cfg.AdminEmail).Info("admin account created")
    }

    // Redis is optional: a nil client turns cache and rate limit into no-ops.
    rdb := config.NewRedisClient(config.LoadRedisConfig())
    if rdb != nil {
        defer rdb.Close()
    }

    eventsCfg := config.LoadEventsConfig()
    var events service.EventPublisher = queue.NopPublisher{}
    if eventsCfg.Enabled {
        events = queue.NewPublisher(eventsCfg)
        go func() {
            if err := queue.StartBookingConsumer(ctx, eventsCfg); err != nil && !errors.Is(err, context.Canceled) {
                log.WithError(err).Error("booking consumer stopped")
            }
        }()
    }

    images := storage.NewImageStore(cfg.UploadDir, cfg.UploadURL)
    catalog := service.NewCatalogService(rooms, images, log)
    bookingSvc := service.NewBookingService(bookings, rooms, events, log)
    directory := service.NewDirectoryService(users, bookings, rooms)

    e := router.New(router.Deps{
        Cfg:       cfg,
        Cache:     config.LoadCacheConfig(),
        RateLimit: config.LoadRateLimitConfig(),
        Redis:     rdb,
        Log:       log,
        DB:        db,
        Auth:      handler.NewAuthHandler(cfg, users, tokens),
        Rooms:     handler.NewRoomHandler(catalog),
        Bookings:  handler.NewBookingHandler(bookingSvc, directory),
    })

    addr := ":" + cfg.Port // Address string with port
    go func() {
        log.WithField("addr", addr).Info("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.WithError(err).Fatal("server failed")
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancelShutdown()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.WithError(err).Error("graceful shutdown failed")
    }
    log.Info("server stopped")
}
