package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/metrics"
	"transitcatalogue.org/internal/requests"
	"transitcatalogue.org/internal/restapi"
	"transitcatalogue.org/internal/router"
	"transitcatalogue.org/internal/search"
	"transitcatalogue.org/internal/webui"
)

const dbStatsInterval = 15 * time.Second

// BuildApplication loads the configured network, indexes its names and
// wires metrics into the router.
func BuildApplication(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*app.Application, error) {
	m := metrics.NewWithLogger(logger)

	doc, err := app.LoadDocument(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	network, err := requests.Build(doc, logger, router.WithObserver(m))
	if err != nil {
		return nil, fmt.Errorf("failed to build catalogue: %w", err)
	}
	c := network.Catalogue()
	m.CatalogueLoaded(c.StopCount(), c.BusCount())
	if rt := network.Router(); rt != nil {
		if err := rt.BuildContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to build route graph: %w", err)
		}
	}

	idx, err := search.NewIndex(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	if err := idx.Build(ctx, c); err != nil {
		logging.SafeCloseWithLogging(idx, logger, "search_index")
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}
	m.StartDBStatsCollector(idx.DB, dbStatsInterval)

	return &app.Application{
		Config:      cfg,
		Logger:      logger,
		Clock:       clock.RealClock{},
		Metrics:     m,
		Network:     network,
		SearchIndex: idx,
	}, nil
}

// CreateServer wires the API and web UI into one http.Server.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	ui := &webui.WebUI{Application: coreApp}

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	ui.SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.WithMiddleware(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api
}

// Run serves until ctx is done, then shuts the server down gracefully.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	defer coreApp.Close()
	defer api.Shutdown()

	errCh := make(chan error, 1)
	go func() {
		logging.LogOperation(coreApp.Logger, "server_starting",
			slog.String("addr", srv.Addr),
			slog.String("env", coreApp.Config.Env.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logging.LogOperation(coreApp.Logger, "server_stopped")
	return nil
}
