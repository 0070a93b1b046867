package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	"github.com/tanutchapol/backend-ChatBot/internal/handler"
	authHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/health"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/session"
	sheetsHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/sheets"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/typhoon"
	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	"github.com/tanutchapol/backend-ChatBot/internal/service/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/service/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/chatlog"
	"github.com/tanutchapol/backend-ChatBot/internal/service/conversation"
	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

type upstream interface {
	typhoon.Upstream
	conversation.Completer
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := auth.NewTokenStore(ctx, cfg.Auth.TokenStore, auth.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			log.Warn("failed to close token store", "err", err)
		}
	}()

	// An interface holding a nil *sheets.Service would defeat the nil checks downstream.
	var store sheets.Store
	if svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile); err != nil {
		log.Warn("google sheets unavailable, sheet routes will fail", "err", err)
	} else {
		store = svc
		log.Info("google sheets client ready", "credentials", cfg.Sheets.CredentialsFile)
	}
	if cfg.Sheets.SpreadsheetID == "" {
		log.Warn("GOOGLE_SPREADSHEET_ID is not set, login and chat logging are disabled")
	}

	var client upstream
	if c, err := ai.NewClient(cfg.Upstream); err != nil {
		log.Warn("typhon client not configured", "err", err)
		client = ai.Unconfigured{Err: err}
	} else {
		client = c
		log.Info("typhon client ready", "model", c.Model(), "paths", cfg.Upstream.CandidatePaths)
	}

	authority := auth.NewAuthority(tokens, cfg.Auth.TokenTTL())
	login := auth.NewLoginService(auth.NewSheetDirectory(store, cfg.Sheets.SpreadsheetID, cfg.Sheets.UsersSheet), authority)

	sink := chatlog.NewSink(store, cfg.Sheets.SpreadsheetID, cfg.Sheets.ChatSheet)
	logs, err := chatlog.NewDispatcher(cfg.ChatLog, sink)
	if err != nil {
		return err
	}

	conv := conversation.NewService(authority, chat.NewService(), client, logs, cfg.Upstream.Model)

	router := handler.NewRouter(handler.Routes{
		Health:  health.New(cfg.Server.Port),
		Sheets:  sheetsHandler.New(store, cfg.Sheets.SpreadsheetID, cfg.Sheets.ProtectedSheets),
		Auth:    authHandler.New(login, authority),
		Typhoon: typhoon.New(client, cfg.Upstream),
		Session: session.New(conv),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("chat gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down chat gateway")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.ChatLog.Driver == chatlog.DriverAMQP {
		consumer := chatlog.NewConsumer(cfg.ChatLog.AMQPURL, cfg.ChatLog.Queue, sink, cfg.ChatLog.Timeout)
		group.Go(func() error {
			log.Info("chat-log consumer started", "queue", cfg.ChatLog.Queue)
			return consumer.Run(groupCtx)
		})
	}

	err = group.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closeErr := logs.Close(drainCtx); closeErr != nil {
		log.Warn("chat log did not drain", "err", closeErr)
	}
	return err
}
