package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/joefazee/categorical/app"
	"github.com/joefazee/categorical/app/database"
	"github.com/joefazee/categorical/app/journal"
	_ "github.com/joefazee/categorical/docs"
	"github.com/joefazee/categorical/internal/deps"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/internal/nexus"
	"github.com/joefazee/categorical/internal/router"
	"github.com/joefazee/categorical/internal/security"
)

const shutdownTimeout = 10 * time.Second

// @title Categorical Market API
// @version 1.0
// @description Collateral token, LMSR prediction markets, market factory, social ledger and event journal.

// @contact.name API Support Team

// @license.name MIT License
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a PASETO token.
func main() {
	log := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{"service": "categorical"})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(fmt.Errorf("failed to read .env: %w", err), nil)
	}

	cfg, err := app.LoadConfig(nexus.WithFileFlag("config"), nexus.WithDefaultFileName(""))
	if err != nil {
		log.Fatal(fmt.Errorf("failed to load configuration: %w", err), nil)
	}
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if err := run(cfg, log); err != nil {
		log.Fatal(err, nil)
	}
}

func run(cfg *app.Config, log logger.Logger) error {
	var db *gorm.DB
	if cfg.Journal.Backend == journal.PostgresBackend {
		var err error
		if db, err = database.New(&cfg.DB); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	tokenMaker, err := security.NewPasetoMaker(cfg.Security.SymmetricKey)
	if err != nil {
		return fmt.Errorf("cannot create token maker: %w", err)
	}

	container, err := deps.NewContainer(cfg, db, tokenMaker, log)
	if err != nil {
		return err
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(container),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the recorder outlives the server so events from in-flight requests
	// are still queued when it drains
	recorderCtx, stopRecorder := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRecorder()
	var recorder errgroup.Group
	recorder.Go(func() error {
		return container.Recorder.Run(recorderCtx)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting categorical API server", map[string]interface{}{"addr": server.Addr, "env": cfg.Env})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	serveErr := g.Wait()
	stopRecorder()
	if err := errors.Join(serveErr, recorder.Wait()); err != nil {
		return err
	}

	log.Info("server stopped", map[string]interface{}{"dropped_journal_entries": container.Recorder.Dropped()})
	return nil
}
