// main.go - Entry point and dependency injection
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mattbolanos/portfolio-api/internal/config"
	"github.com/mattbolanos/portfolio-api/internal/httpx"
	"github.com/mattbolanos/portfolio-api/internal/lastfm"
	"github.com/mattbolanos/portfolio-api/internal/strava"
	"github.com/mattbolanos/portfolio-api/internal/web"
)

type App struct {
	cfg        config.Config
	cron       *cron.Cron
	server     *http.Server
	activities *strava.Service
	shutdown   chan os.Signal
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app := &App{
		shutdown: make(chan os.Signal, 1),
	}
	app.init()
	app.start()

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	app.stop()
}

func (app *App) init() {
	app.cfg = config.Load()

	if !app.cfg.HasStravaCredentials() {
		log.Println("Strava credentials not configured, activities feed disabled")
	}
	if app.cfg.LastFmAPIKey == "" {
		log.Println("Last.fm API key not configured, tracks feed disabled")
	}

	fetcher := httpx.NewClient(&http.Client{})

	tokens := strava.NewTokenManager(
		fetcher,
		app.cfg.StravaTokenURL,
		app.cfg.StravaClientID,
		app.cfg.StravaClientSecret,
		app.cfg.StravaRefreshToken,
	)
	stravaClient := strava.NewClient(fetcher, tokens, app.cfg.StravaBaseURL, app.cfg.FetchRetries, app.cfg.RunSportTypes)
	app.activities = strava.NewService(stravaClient, app.cfg.ActivitiesCacheTTL)

	lastfmClient := lastfm.NewClient(fetcher, app.cfg.LastFmBaseURL, app.cfg.LastFmAPIKey, app.cfg.LastFmUser)
	tracks := lastfm.NewService(lastfmClient, app.cfg.TracksCacheTTL)

	app.cron = cron.New()

	router := gin.Default()
	web.NewHandler(app.activities, tracks).RegisterRoutes(router)

	app.server = &http.Server{
		Addr:    app.cfg.HTTPAddress,
		Handler: router,
	}
}

func (app *App) start() {
	// Warm the activities cache on a schedule so page views stay fast.
	if _, err := app.cron.AddFunc(app.cfg.WarmSchedule, func() {
		log.Println("Warming activities cache...")
		app.activities.Warm(context.Background())
	}); err != nil {
		log.Printf("Failed to schedule cache warming: %v", err)
	}
	app.cron.Start()

	go func() {
		log.Printf("Server starting on %s", app.cfg.HTTPAddress)
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()
}

func (app *App) stop() {
	log.Println("Shutting down...")

	app.cron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
