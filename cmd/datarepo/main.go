/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command datarepo serves the member repository over HTTP and manages its
// database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomoncle/datarepo"
	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/config"
	"github.com/tomoncle/datarepo/controller"
	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/repository"
)

var (
	configFile string
	seedCount  int
	logger     = database.NewDefaultLogger("DATAREPO")
)

var rootCmd = &cobra.Command{
	Use:           "datarepo",
	Short:         "Typed repository demo over bun",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the members HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and foreign keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := database.InitDatabaseWithOptions(cmd.Context(), cfg.ConfigLoader(), true); err != nil {
			return err
		}
		defer database.CloseDB()
		logger.Info("Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo members into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer database.CloseDB()

		n := seedCount
		if !cmd.Flags().Changed("count") {
			n = cfg.Database.DataInitConfig.SeedMembers
		}
		created, err := svc.SeedMembers(cmd.Context(), n)
		if err != nil {
			return err
		}
		logger.Info("Seed finished", "created", created)
		return nil
	},
}

var fkExportCmd = &cobra.Command{
	Use:   "fk-export <file>",
	Short: "Write the built-in foreign key constraints as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		constraints := database.NewForeignKeyManager(logger).ListAllConstraints()
		if err := database.ExportForeignKeyConfig(args[0], constraints); err != nil {
			return err
		}
		logger.Info("Foreign keys exported", "file", args[0], "count", len(constraints))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 100, "number of members to create")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, fkExportCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyLogging()
	return cfg, nil
}

// open connects the global database and builds the services. The actor is
// taken from the request, then the configured default, then a random id.
func open(ctx context.Context, cfg *config.Config) (*datarepo.Services, error) {
	if _, err := database.InitDB(ctx, cfg.ConfigLoader()); err != nil {
		return nil, err
	}
	auditor := audit.Chain(audit.ContextAuditor, audit.StaticAuditor(cfg.Server.DefaultAuditor), audit.RandomAuditor)
	svc, err := datarepo.Default(repository.WithAuditor(auditor))
	if err != nil {
		_ = database.CloseDB()
		return nil, err
	}
	return svc, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB()

	if cfg.Database.DataInitConfig.SeedOnStartup {
		created, err := svc.SeedMembers(ctx, cfg.Database.DataInitConfig.SeedMembers)
		if err != nil {
			return err
		}
		logger.Info("Seeded members", "created", created)
	}

	router := controller.NewRouter(svc, controller.Options{
		Mode:           cfg.Server.Mode,
		DefaultAuditor: cfg.Server.DefaultAuditor,
		Health:         database.GetHealthStatus,
		Stats:          database.GetDatabaseStats,
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
