package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodkaki/makanbot/internal/logging"
	"github.com/foodkaki/makanbot/internal/server"
	"github.com/foodkaki/makanbot/internal/session"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		Long: `Start the HTTP chat API.

Endpoints:
  POST /api/session   create a conversation session
  POST /api/chat      send a message, get a recommendation
  GET  /api/health    liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			logger := newLogger(cfg)
			decisions := logging.NewDecisionLogger(cfg.Server.DataDir, cfg.Logging.Level)
			defer decisions.Close()

			engine, store, err := buildEngine(cfg, logger, decisions)
			if err != nil {
				return err
			}
			defer store.Close()

			// Resume sessions from the previous run when a snapshot exists.
			if err := os.MkdirAll(cfg.Server.DataDir, 0700); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
			sessions, err := session.Load(cfg.Server.DataDir, cfg.Session)
			if err != nil {
				logger.Warn("failed to load session snapshot, starting fresh", "error", err)
				sessions = session.NewManager(cfg.Session)
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(engine, sessions, logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// Idle sessions are rejected lazily; the sweep reclaims memory.
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if n := sessions.Sweep(); n > 0 {
							logger.Debug("evicted idle sessions", "count", n)
						}
					}
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("makanbot listening", "addr", cfg.Server.Addr, "llm", cfg.LLM.String())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("graceful shutdown failed", "error", err)
				}
			}

			if err := session.Save(sessions, cfg.Server.DataDir); err != nil {
				logger.Warn("failed to save session snapshot", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")

	return cmd
}
