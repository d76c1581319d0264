package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/pomorix/service-core-go/internal/auth"
	badgerepo "github.com/pomorix/service-core-go/internal/badge/repo"
	bugreportrepo "github.com/pomorix/service-core-go/internal/bugreport/repo"
	"github.com/pomorix/service-core-go/internal/router"
	sessionrepo "github.com/pomorix/service-core-go/internal/session/repo"
	settingsrepo "github.com/pomorix/service-core-go/internal/settings/repo"
	streakrepo "github.com/pomorix/service-core-go/internal/streak/repo"
	taskrepo "github.com/pomorix/service-core-go/internal/task/repo"
	userrepo "github.com/pomorix/service-core-go/internal/user/repo"
	"github.com/pomorix/service-core-go/pkg/database"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting pomorix service-core")

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ensureSchemas(startupCtx, db); err != nil {
		sugar.Fatalf("schema setup: %v", err)
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "pomorix"
	}
	tokens, err := auth.NewTokenService(issuer, 0)
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: router.RegisterRoutes(db, tokens, sugar),
	}

	go func() {
		sugar.Infow("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

// ensureSchemas creates tables and seeds the badge catalog. Every step is
// idempotent so startup is safe to repeat.
func ensureSchemas(ctx context.Context, db *sqlx.DB) error {
	if err := userrepo.NewUserRepo(db).EnsureSchema(ctx); err != nil {
		return err
	}
	if err := taskrepo.NewTaskRepo(db).EnsureSchema(ctx); err != nil {
		return err
	}
	if err := sessionrepo.NewSessionStore(db).EnsureSchema(ctx); err != nil {
		return err
	}
	if err := settingsrepo.NewSettingsRepo(db).EnsureSchema(ctx); err != nil {
		return err
	}
	if err := streakrepo.NewStreakRepo(db).EnsureSchema(ctx); err != nil {
		return err
	}
	badges := badgerepo.NewBadgeRepo(db)
	if err := badges.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := badges.SeedDefinitions(ctx); err != nil {
		return err
	}
	return bugreportrepo.NewBugReportRepo(db).EnsureSchema(ctx)
}
