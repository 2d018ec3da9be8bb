// Package server initializes and runs the application: it opens the
// database, applies migrations, wires the services and starts the HTTP
// server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/poseidon/internal/logging"
	"github.com/dmitrijs2005/poseidon/internal/server/auth"
	"github.com/dmitrijs2005/poseidon/internal/server/config"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/poseidon/internal/server/services"
	"github.com/dmitrijs2005/poseidon/internal/server/web"
)

// sessionPurgeInterval is how often expired sessions are swept from the
// database. Expired sessions are already rejected on read; the sweep only
// keeps the table from growing.
const sessionPurgeInterval = 15 * time.Minute

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	sessionService *services.SessionService
	httpServer     *web.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	us := services.NewUserService(db, rm, hasher)
	ss := services.NewSessionService(db, rm, cfg)
	rs := services.NewRefDataService(db, rm)

	srv := web.NewServer(cfg.EndpointAddrHTTP, logger, us, ss, rs, cfg.SessionValidityDuration)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		sessionService: ss,
		httpServer:     srv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSessionJanitor periodically removes expired session rows.
func (app *App) startSessionJanitor(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.sessionService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "session purge failed", "error", err.Error())
				continue
			}
			if removed > 0 {
				app.logger.Info(ctx, "expired sessions purged", "count", removed)
			} else {
				app.logger.Debug(ctx, "session sweep found nothing to purge")
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSessionJanitor(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
