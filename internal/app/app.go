package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"contactsheet/internal/config"
	"contactsheet/internal/logger"
	"contactsheet/internal/middleware"
	"contactsheet/internal/routes"
	"contactsheet/internal/service/scanner"
	"contactsheet/internal/service/session"
	"contactsheet/internal/service/sheet"
	"contactsheet/internal/service/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	store      *session.Store
	hubService *websocket.HubService
	tokens     *middleware.Tokens
}

// Components builds the scanner, compositor and selector shared by every
// session, as configured.
func Components(cfg *config.Config, logger *logger.Logger) (*scanner.Scanner, *sheet.Compositor, *sheet.Selector, error) {
	labeler := sheet.NewLabeler(cfg.LabelFont, logger)
	compositor, err := sheet.NewCompositor(logger, labeler, cfg.ThumbnailCacheSize)
	if err != nil {
		return nil, nil, nil, err
	}
	return scanner.NewScanner(logger), compositor, sheet.NewSelector(logger), nil
}

func NewApp(cfg *config.Config, logger *logger.Logger) (*App, error) {
	scan, compositor, selector, err := Components(cfg, logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.SessionExpiration(), func() *session.Session {
		return session.New(scan, compositor, selector)
	})

	return &App{
		config:     cfg,
		logger:     logger,
		store:      store,
		hubService: websocket.NewHubService(logger),
		tokens:     middleware.NewTokens(),
	}, nil
}

// Handler returns the routed HTTP handler.
func (a *App) Handler() http.Handler {
	return routes.SetupRoutes(a.config, a.logger, a.store, a.hubService, a.tokens)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.hubService.Run()
	defer a.hubService.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Contact sheet server on http://localhost:%d", a.config.Port)
	a.logger.Info("Default folder: %s, %d row(s) of %dpx thumbnails", a.config.DefaultFolder, a.config.Rows, a.config.ThumbnailSize)
	if a.config.Password != "" {
		a.logger.Info("Password protection enabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("Shutting down")
		return server.Shutdown(shutdownCtx)
	}
}
