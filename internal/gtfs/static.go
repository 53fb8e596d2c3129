// Package gtfs imports a GTFS static feed as a request document: every stop
// becomes an AddStop and every route an AddBus over its longest trip.
package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/OneBusAway/go-gtfs"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/requests"
	"transitcatalogue.org/internal/router"
)

const maxStaticSize = 200 * 1024 * 1024

func rawGtfsData(ctx context.Context, config Config) ([]byte, error) {
	if config.isLocalFile() {
		b, err := os.ReadFile(config.Source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GTFS request: %w", err)
	}
	if config.StaticAuthHeaderKey != "" && config.StaticAuthHeaderValue != "" {
		req.Header.Set(config.StaticAuthHeaderKey, config.StaticAuthHeaderValue)
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download GTFS data: received HTTP status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	if int64(len(b)) > maxStaticSize {
		return nil, fmt.Errorf("static GTFS response exceeds size limit of %d bytes", maxStaticSize)
	}
	return b, nil
}

// Import reads and converts the feed named by config.
func Import(ctx context.Context, config Config) (*requests.Document, error) {
	logger := slog.Default().With(slog.String("component", "gtfs_importer"))

	b, err := rawGtfsData(ctx, config)
	if err != nil {
		return nil, err
	}
	doc, err := ImportBytes(b, config.Routing)
	if err != nil {
		return nil, err
	}

	logging.LogOperation(logger, "gtfs_imported",
		slog.String("source", config.Source),
		slog.Int("base_requests", len(doc.BaseRequests)))
	return doc, nil
}

// ImportBytes converts a GTFS zip held in memory. A zero routing settings
// value is replaced by DefaultRoutingSettings.
func ImportBytes(b []byte, routing router.Settings) (*requests.Document, error) {
	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	if routing == (router.Settings{}) {
		routing = DefaultRoutingSettings
	}
	return &requests.Document{
		BaseRequests:    Convert(staticData),
		RoutingSettings: &routing,
	}, nil
}
