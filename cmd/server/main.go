package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/lawref/internal/api"
	"github.com/dgallion1/lawref/internal/catalog"
	"github.com/dgallion1/lawref/internal/config"
	"github.com/dgallion1/lawref/internal/library"
	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	laws := os.DirFS(cfg.LawsDir)
	assets := catalog.NewAssetStore(laws)

	// Catalog backend.
	var store catalog.Store = assets
	var db *catalog.SQLiteStore
	if cfg.CatalogBackend == config.BackendSQLite {
		var err error
		db, err = catalog.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Error("failed to open catalog database", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		res, err := db.Sync(ctx, assets)
		if err != nil {
			log.Error("catalog sync failed", "error", err)
			os.Exit(1)
		}
		log.Info("catalog synced", "categories", res.Categories, "laws", res.Laws)
		store = db
	}

	// Parse cache.
	cache := library.NewMemoryCache()
	if cfg.CachePath != "" {
		var err error
		cache, err = library.OpenCache(cfg.CachePath)
		if err != nil {
			log.Error("failed to open parse cache", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
	}

	lib := library.New(laws, cache, library.NewParseStats(cfg.StatsWindow), library.Options{
		Parse:            cfg.ParseOptions(),
		MaxDocumentBytes: cfg.MaxDocumentBytes,
	}, log)

	ix := library.NewIndexer(cfg, lib, store, log)
	ix.Start(ctx)

	srv := api.NewServer(store, lib, ix, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		ix.Stop()

		if err := cache.Close(); err != nil {
			log.Warn("cache close failed", "error", err)
		}
		if db != nil {
			db.Close()
		}
	}()

	log.Info("starting lawref", "port", cfg.Port, "laws_dir", cfg.LawsDir, "catalog", cfg.CatalogBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
