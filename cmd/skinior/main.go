package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"
	"github.com/skinior/skinior-api/internal/api"
	"github.com/skinior/skinior-api/internal/cli"
	"github.com/skinior/skinior-api/internal/config"
	"github.com/skinior/skinior-api/internal/db"
	"github.com/skinior/skinior-api/internal/i18n"
	"github.com/skinior/skinior-api/internal/logger"
	"github.com/skinior/skinior-api/internal/observability"
	"github.com/skinior/skinior-api/internal/push"
	"github.com/skinior/skinior-api/internal/services"
	"github.com/skinior/skinior-api/internal/storage"
	"gorm.io/gorm"
)

var version = "dev"

const usage = `usage:
  skinior                          run the API server
  skinior reset-password <email>   set a random temporary password
  skinior set-password <email>     prompt for a new password`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	time.Local = resolveLocation(log, cfg.Timezone)

	if len(os.Args) > 1 {
		if err := runCommand(context.Background(), cfg, os.Args[1:]); err != nil {
			log.Sync()
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg, log); err != nil {
		log.Fatal("server exited", "error", err)
	}
}

func serve(cfg config.Config, log *logger.Logger) error {
	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.OTel.ServiceName,
		Environment: cfg.OTel.Environment,
		Version:     version,
		Endpoint:    cfg.OTel.Endpoint,
		Insecure:    cfg.OTel.Insecure,
		Stdout:      cfg.OTel.Stdout,
		SampleRatio: cfg.OTel.SampleRatio,
	})
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	database, err := db.Open(cfg.DBDriver, cfg.DSN(), db.WithLogger(log))
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.NewEmbeddedManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	deps := api.Dependencies{
		Database:  database,
		SecretKey: cfg.SecretKey,
		TokenTTL:  cfg.TokenTTL,
		I18n:      i18nManager,
		Logger:    log,
	}

	fcmConfig := push.FCMConfig{
		ProjectID:       cfg.FCM.ProjectID,
		CredentialsFile: cfg.FCM.CredentialsFile,
		CredentialsJSON: cfg.FCM.CredentialsJSON,
	}
	if fcmConfig.Enabled() {
		sender, err := push.NewFCMSender(ctx, fcmConfig)
		if err != nil {
			return fmt.Errorf("fcm init failed: %w", err)
		}
		deps.PushSender = sender
		log.Info("fcm push enabled", "project_id", fcmConfig.ProjectID)
	} else {
		log.Warn("fcm not configured, push notifications are only logged")
	}

	archiveConfig := storage.Config{
		Endpoint:      cfg.Export.Endpoint,
		Region:        cfg.Export.Region,
		Bucket:        cfg.Export.Bucket,
		AccessKey:     cfg.Export.AccessKey,
		SecretKey:     cfg.Export.SecretKey,
		UseSSL:        cfg.Export.UseSSL,
		PresignExpiry: cfg.Export.PresignExpiry,
	}
	if archiveConfig.Enabled() {
		archive, err := storage.NewArchiveStore(ctx, archiveConfig)
		if err != nil {
			return fmt.Errorf("export storage init failed: %w", err)
		}
		deps.Archive = archive
		log.Info("export archive enabled", "bucket", archiveConfig.Bucket)
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		client, err := newRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Redis = client
		log.Info("redis login limiter enabled", "addr", cfg.RedisAddr)
	}

	handler, err := api.NewHandler(deps)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("skinior api listening",
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"tz", time.Local.String(),
		"version", version,
	)
	return app.Listen(":" + cfg.Port)
}

func newApp(handler *api.Handler, origins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Skinior API",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(cors.New(corsMiddlewareConfig(origins)))
	app.Use(api.TracingMiddleware)

	api.RegisterRoutes(app, handler)
	return app
}

func corsMiddlewareConfig(origins []string) cors.Config {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}

	corsConfig := cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization, traceparent",
	}
	if len(allowed) > 0 {
		corsConfig.AllowOrigins = strings.Join(allowed, ",")
	}
	return corsConfig
}

func newRedisClient(ctx context.Context, cfg config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func runCommand(ctx context.Context, cfg config.Config, args []string) error {
	command := args[0]
	switch command {
	case "reset-password", "set-password":
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		return fmt.Errorf("%s requires an email\n%s", command, usage)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	users := services.NewAuthService(db.NewUserRepository(database))
	if command == "reset-password" {
		return cli.RunResetPasswordCommand(ctx, users, args[1], os.Stdout)
	}
	return cli.RunSetPasswordCommand(ctx, users, args[1], os.Stdin, os.Stdout)
}

func closeDatabase(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}

func resolveLocation(log *logger.Logger, name string) *time.Location {
	location, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		log.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}
