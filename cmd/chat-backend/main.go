// Command chat-backend serves the chat endpoint the widget talks to.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chatwidget/config"
	"chatwidget/internal/backend"
)

func main() {
	cmd := &cobra.Command{
		Use:          "chat-backend",
		Short:        "Reference chat endpoint for the chat widget",
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().String("addr", "", "listen address (env CHAT_BACKEND_ADDR)")
	cmd.Flags().Bool("migrate", false, "create the bots table before serving")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadBackend()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	logger := cfg.Logger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var store backend.BotStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if _, err := db.ExecContext(ctx, backend.Schema); err != nil {
				return err
			}
		}
		store = backend.NewBotRepo(db)
		logger.Info().Msg("bot registry: postgres")
	} else {
		logger.Info().Msg("bot registry: disabled, every bot id is accepted")
	}

	var replier backend.Replier = backend.EchoReplier{}
	if cfg.OpenAIKey != "" {
		replier = backend.NewOpenAIReplier(cfg.OpenAIKey, cfg.OpenAIModel)
		logger.Info().Str("model", cfg.OpenAIModel).Msg("replies: openai")
	} else {
		logger.Info().Msg("replies: echo")
	}

	svc := backend.NewService(store, replier, logger)
	h := backend.NewHandler(svc, cfg.ScriptBase, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           backend.NewRouter(h, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server error")
		return err
	}
	return nil
}
