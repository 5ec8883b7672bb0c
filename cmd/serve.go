package cmd

import (
	"context"
	"time"

	"github.com/illarion/pph/internal/server"
	"github.com/redis/go-redis/v9"
)

// Serve runs the HTTP front end until ctx is cancelled
func Serve(ctx context.Context, app *App, listen string) {
	if listen == "" {
		listen = app.Config.Listen
	}

	limiter, closeLimiter, err := newLimiter(ctx, app)
	if err != nil {
		HandleError(err)
	}
	defer closeLimiter()

	srv := server.New(server.Options{
		Hardener:       app.Hardener,
		Limiter:        limiter,
		Logger:         app.Logger,
		MaxAttempts:    app.Config.MaxAttempts,
		TrustedProxies: app.Config.TrustedProxies,
	})
	app.Logger.Info("starting server", "iterations", app.Hardener.Iterations(), "trusted_proxies", len(app.Config.TrustedProxies))
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		HandleError(err)
	}
}

// newLimiter returns a Redis fixed-window limiter when Redis is configured,
// otherwise an in-process token bucket. Both allow roughly RateLimit
// requests per second with RateBurst headroom.
func newLimiter(ctx context.Context, app *App) (server.Limiter, func(), error) {
	cfg := app.Config
	window := time.Duration(float64(cfg.RateBurst) / cfg.RateLimit * float64(time.Second))

	var opt *redis.Options
	switch {
	case cfg.RedisURL != "":
		var err error
		if opt, err = redis.ParseURL(cfg.RedisURL); err != nil {
			return nil, nil, err
		}
	case cfg.RedisAddr != "":
		opt = &redis.Options{Addr: cfg.RedisAddr}
	default:
		return server.NewLocalLimiter(cfg.RateLimit, cfg.RateBurst, 10*time.Minute), func() {}, nil
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	app.Logger.Info("using redis rate limiter", "addr", opt.Addr, "window", window)
	return server.NewRedisLimiter(rdb, cfg.RateBurst, window), func() { rdb.Close() }, nil
}
