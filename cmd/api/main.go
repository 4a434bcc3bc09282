// Package main runs the TalentLink API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/config"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/db"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/logging"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/realtime"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "api",
	Short:   "TalentLink marketplace API",
	Version: version,
	RunE:    runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// bootstrap loads config and opens the logger and database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	gdb, err := db.Connect(cfg.DBDSN, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := db.Migrate(gdb); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr, err)
	}

	hub := realtime.NewHub(log)
	go hub.Run(ctx)
	go realtime.Bridge(ctx, rdb, hub, log)

	app := handlers.NewApp(handlers.Deps{
		DB:              gdb,
		Log:             log,
		Hub:             hub,
		Pusher:          realtime.NewRedisPusher(rdb),
		JWTSecret:       cfg.JWTSecret,
		JWTExpiresMin:   cfg.JWTExpiresMin,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.AppPort))
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
