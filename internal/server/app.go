// Package server initializes and runs the application server: opens the
// database pool, applies migrations, wires the Cognito client and token
// verifiers into the services, and starts the HTTP endpoint with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sergeyk-dev/authgate/internal/logging"
	"github.com/sergeyk-dev/authgate/internal/server/auth"
	"github.com/sergeyk-dev/authgate/internal/server/cognito"
	"github.com/sergeyk-dev/authgate/internal/server/config"
	"github.com/sergeyk-dev/authgate/internal/server/httpapi"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/repomanager"
	"github.com/sergeyk-dev/authgate/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	keyfunc, err := auth.PoolKeyfunc(ctx, cfg.AWSRegion, cfg.UserPoolID)
	if err != nil {
		return nil, err
	}
	issuer := auth.PoolIssuer(cfg.AWSRegion, cfg.UserPoolID)
	idVerifier := auth.NewVerifier(keyfunc, issuer, cfg.ClientID, auth.TokenUseID)
	accessVerifier := auth.NewVerifier(keyfunc, issuer, cfg.ClientID, auth.TokenUseAccess)

	provider, err := cognito.NewClient(ctx, cognito.Options{
		Region:          cfg.AWSRegion,
		ClientID:        cfg.ClientID,
		ClientSecret:    cfg.ClientSecret,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	accounts := services.NewAccountService(db, rm, provider, accessVerifier)
	profiles := services.NewProfileService(db, rm)
	admin := services.NewAdminService(db, rm)

	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, accounts, profiles, admin,
		auth.NewDualVerifier(idVerifier, accessVerifier),
		auth.NewAuthorizer(db, rm),
		cfg.CORSOrigin,
	)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancel)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
