package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwtauth "pet-adoption-hub/internal/adapters/auth/jwt"
	minioblob "pet-adoption-hub/internal/adapters/blob/minio"
	rediscache "pet-adoption-hub/internal/adapters/cache/redis"
	natsevents "pet-adoption-hub/internal/adapters/events/nats"
	pg "pet-adoption-hub/internal/adapters/storage/postgres"
	"pet-adoption-hub/internal/config"
	"pet-adoption-hub/internal/jobs"
	"pet-adoption-hub/internal/platform/logger"
	"pet-adoption-hub/internal/platform/metrics"
	"pet-adoption-hub/internal/ports/auth"
	"pet-adoption-hub/internal/router"

	goredis "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

// @title Pet Adoption Hub API
// @version 1.0
// @description Marketplace de adopción: mascotas, refugios, solicitudes, notificaciones, favoritos y chat.
// @BasePath /
func main() {
	cfg, err := config.Load(os.Getenv("PETHUB_CONFIG_PATH"))
	if err != nil {
		// Sin logger todavía.
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"error": err})
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Logger:       log,
		Metrics:      metrics.New("pethub"),
		AdminUserIDs: cfg.Auth.AdminUserIDs,
	}

	// Sin secreto => modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		log.Warn("auth running in dev mode: X-Debug-User-ID accepted", nil)
	}
	opts.AuthVerifier = verifier

	if cfg.Database.DSN != "" {
		db, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
		}
		opts.DB = db
		log.Info("using postgres storage", nil)
	} else {
		log.Info("using in-memory storage", nil)
	}

	if cfg.Redis.Enabled {
		client, err := rediscache.NewClient(ctx, rediscache.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func(c *goredis.Client) { _ = c.Close() }(client)
		opts.Redis = client
		opts.RedisTTL = cfg.Redis.TTL
	}

	if cfg.NATS.Enabled {
		conn, err := natsevents.Connect(cfg.NATS.URL, cfg.App.Name, cfg.NATS.ConnectTimeout, log)
		if err != nil {
			return err
		}
		pub := natsevents.NewPublisher(conn)
		defer pub.Close()
		opts.Publisher = pub
	}

	if cfg.Blob.Enabled {
		store, err := minioblob.New(ctx, minioblob.Options{
			Endpoint:  cfg.Blob.Endpoint,
			AccessKey: cfg.Blob.AccessKey,
			SecretKey: cfg.Blob.SecretKey,
			Bucket:    cfg.Blob.Bucket,
			UseSSL:    cfg.Blob.UseSSL,
		}, log)
		if err != nil {
			return err
		}
		opts.Blob = store
	}

	handler, svcs := router.Build(opts)

	if cfg.Retention.Enabled {
		job := jobs.NewRetention(svcs.Adoptions, cfg.Retention.Interval, cfg.Retention.RejectedMaxAgeDays, log)
		job.Start(ctx)
		defer job.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
