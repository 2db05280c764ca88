package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"petcare-plus/internal/adapters/platform"
	pg "petcare-plus/internal/adapters/storage/postgres"
	"petcare-plus/internal/config"
	"petcare-plus/internal/domain/calendar"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/auth"
	"petcare-plus/internal/router"

	"github.com/spf13/cobra"
)

// @title PetCare+ API
// @version 1.0
// @description Backend-for-frontend de PetCare+: recordatorios, agenda .ics, invitaciones a veterinarios y uploads.
// @BasePath /
func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "petcare-plus",
		Short: "PetCare+ API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config (optional)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(exportICSCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return errors.New("db.dsn is empty, nothing to migrate")
			}
			db, err := pg.Open(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if err := pg.Migrate(db); err != nil {
				return err
			}
			log.Info("migrations applied", nil)
			return nil
		},
	}
}

func exportICSCmd(configPath *string) *cobra.Command {
	var (
		petID  string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Write the pet agenda as " + calendar.FileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			opts, cleanup, err := buildOptions(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svcs := router.NewServices(opts)
			defer svcs.Close()

			dl := &calendar.FileDownloader{Dir: outDir}
			n, err := svcs.Calendar.ExportPet(cmd.Context(), petID, dl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d event(s) written to %s\n", n, dl.Written)
			return nil
		},
	}
	cmd.Flags().StringVar(&petID, "pet", "", "pet id")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	_ = cmd.MarkFlagRequired("pet")
	return cmd
}

func runServer(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	opts, cleanup, err := buildOptions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svcs := router.NewServices(opts)
	defer svcs.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router.Mount(svcs, opts),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTP.Addr, "dev_auth": opts.AuthVerifier == nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setup(configPath string) (config.Application, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Application{}, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	return cfg, log, nil
}

// buildOptions arma cliente de plataforma, verifier y DB (opcional).
func buildOptions(ctx context.Context, cfg config.Application, log logger.Logger) (router.Options, func(), error) {
	pc, err := platform.NewClient(platform.Config{
		BaseURL:      cfg.Platform.BaseURL,
		AppID:        cfg.Platform.AppID,
		APIKey:       cfg.Platform.APIKey,
		APIKeyHeader: cfg.Platform.APIKeyHeader,
		Timeout:      cfg.Platform.Timeout,
	})
	if err != nil {
		return router.Options{}, nil, fmt.Errorf("platform client: %w", err)
	}

	// Sin plataforma configurada => modo dev (X-Debug-User-ID)
	var verifier auth.AuthVerifier
	if pc.IsConfigured() {
		verifier = platform.NewVerifier(pc)
	} else {
		log.Warn("platform not configured, running in dev auth mode", nil)
	}

	var db *sql.DB
	cleanup := func() {}
	if cfg.Database.DSN != "" {
		db, err = pg.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return router.Options{}, nil, fmt.Errorf("open db: %w", err)
		}
		if err := pg.Migrate(db); err != nil {
			_ = db.Close()
			return router.Options{}, nil, err
		}
		cleanup = func() { _ = db.Close() }
	}

	return router.Options{
		Config:       cfg,
		Logger:       log,
		Platform:     pc,
		AuthVerifier: verifier,
		DB:           db,
	}, cleanup, nil
}
