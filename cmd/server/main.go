// Command server runs the HTTP façade that serves previously analyzed
// workspaces out of PostgreSQL, for callers that want to poll results
// instead of running awrctl analyze themselves.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbaworks/awr-advisor/internal/config"
	"github.com/dbaworks/awr-advisor/internal/database"
	"github.com/dbaworks/awr-advisor/internal/store"
	"github.com/dbaworks/awr-advisor/internal/webapi"
	"github.com/dbaworks/awr-advisor/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("starting awr-advisor server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", logger.Error(err))
	}
	log.Info("configuration loaded successfully")

	log.Info("connecting to postgres")
	st, err := store.New(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		log.Fatal("failed to connect to postgres", logger.Error(err))
	}
	defer st.Close()
	log.Info("postgres connected successfully")

	srv := webapi.New(st, log)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(cfg.JWT.Secret),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(fmt.Sprintf("server listening on http://%s", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}

	log.Info("server stopped")
}
