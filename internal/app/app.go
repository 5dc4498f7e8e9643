package app

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avolkov/linkshort/internal/auth"
	"github.com/avolkov/linkshort/internal/config"
	"github.com/avolkov/linkshort/internal/handlers"
	"github.com/avolkov/linkshort/internal/logger"
	"github.com/avolkov/linkshort/internal/storage"
	"github.com/caarlos0/env"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func router(blacklist *auth.Blacklist) chi.Router {
	r := chi.NewRouter()
	r.Use(logger.Middleware)
	r.Use(gzipMiddleware)

	// Scrapes carry no cookie and must not mint principals, so the metrics
	// endpoint stays outside the auth chain.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(handlers.StoreHandler, blacklist))

		r.Get("/", handlers.Root)
		r.Get("/ping", handlers.PingStore)
		r.Post("/", handlers.Shorten)
		r.Post("/api/shorten", handlers.ShortenAPI)
		r.Post("/api/shorten/batch", handlers.ShortenAPIBatch)
		r.Get("/api/analytics", handlers.Analytics)
		r.Get("/api/user/urls", handlers.UserURLs)
		r.Delete("/api/user/urls", handlers.BatchDeleteURLs)
		r.Route("/api/urls/{code}", func(r chi.Router) {
			r.Delete("/", handlers.DeleteURL)
			r.Put("/", handlers.UpdateURL)
		})
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", handlers.Expand)
		})
	})
	return r
}

// reloadOnSignal re-reads the blacklist file whenever the process receives
// SIGHUP.
func reloadOnSignal(blacklist *auth.Blacklist) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	go func() {
		for range signals {
			if err := blacklist.Load(); err != nil {
				logger.Log.Errorw("blacklist reload", "error", err)
			} else {
				logger.Log.Infow("blacklist reloaded")
			}
		}
	}()
}

func Run() {
	_ = godotenv.Load()

	flag.StringVar(&config.Current.ServerAddress, "a", "", "Server address host:port")
	flag.StringVar(&config.Current.BaseURL, "b", "", "Base for short URL")
	flag.StringVar(&config.Current.FileStoragePath, "r", "", "File path for the no-database store")
	flag.StringVar(&config.Current.DatabaseDSN, "d", "", "Database source string")
	flag.StringVar(&config.Current.BlacklistPath, "l", "", "Path to the blocked-user list")
	flag.Parse()

	if err := env.Parse(&config.Current); err != nil {
		panic(err)
	}

	config.SetDefaults()

	if err := logger.Initialize(); err != nil {
		panic(err)
	}

	if config.Current.DatabaseDSN != "" {
		handlers.StoreHandler = &storage.DatabaseStore{}
	} else {
		handlers.StoreHandler = &storage.MemoryStore{}
	}

	if err := handlers.StoreHandler.Initialize(); err != nil {
		panic(err)
	}

	blacklist := auth.NewBlacklist(config.Current.BlacklistPath)
	if err := blacklist.Load(); err != nil {
		panic(err)
	}
	reloadOnSignal(blacklist)

	err := http.ListenAndServe(config.Current.ServerAddress, router(blacklist))
	if err != nil {
		panic(err)
	}
}
