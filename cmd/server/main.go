package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/handler"
	"github.com/weddinggallery/internal/logger"
	"github.com/weddinggallery/internal/router"
)

func main() {
	seedVideos := flag.Bool("seed-videos", false, "insert the default video slots when the table is empty")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	gin.SetMode(cfg.GinMode)

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal().Err(err).Msg("missing configuration")
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseURL, db.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close(gdb)

	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if *seedVideos {
		n, err := db.SeedVideoSlots(gdb)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed video slots")
		}
		log.Info().Int("inserted", n).Msg("video slots seeded")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is empty, every login will be rejected")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := handler.NewAPI(gdb, cfg, log)
	r := router.SetupRouter(api, log, router.NewMetrics(reg))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}
}
