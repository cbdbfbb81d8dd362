package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/habiliai/inbox/config"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/events"
	"github.com/habiliai/inbox/internal/db"
	"github.com/habiliai/inbox/internal/mylog"
	"github.com/habiliai/inbox/rest"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inbox",
		Short:         "Threaded direct messaging server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newTokenCmd(),
		newThreadCmd(),
	)

	return cmd
}

func newServeCmd() *cobra.Command {
	flags := &struct {
		port int
	}{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			cfg, err := din.GetT[*config.ServerConfig](c)
			if err != nil {
				return err
			}
			if flags.port != 0 {
				cfg.Port = flags.port
			}
			logger, err := din.GetT[*mylog.Logger](c)
			if err != nil {
				return err
			}

			if _, err := din.GetT[*gorm.DB](c); err != nil {
				return err
			}
			if err := events.LogNotifier(c, din.MustGetT[events.Subscriber](c), logger); err != nil {
				return err
			}
			handler, err := din.GetT[*rest.Handler](c)
			if err != nil {
				return err
			}

			server := http.Server{
				Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("failed to shutdown server", mylog.Err(err))
				}
			}()

			logger.Info("Starting server", "addr", cfg.Host, "port", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("server stopped")

			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (overrides PORT)")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			gormDB, err := din.GetT[*gorm.DB](c)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(c, gormDB); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}
}
