package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/gtfs"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/requests"
)

// LoadDocument reads the network the service answers queries about. A JSON
// file is a request document whose stat requests are ignored; a GTFS feed
// is converted with default routing settings.
func LoadDocument(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*requests.Document, error) {
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("no data path configured")
	}

	start := time.Now()
	var (
		doc *requests.Document
		err error
	)
	switch cfg.DataFormat {
	case appconf.FormatGTFS:
		doc, err = gtfs.Import(ctx, gtfs.Config{Source: cfg.DataPath, Routing: gtfs.DefaultRoutingSettings})
	case appconf.FormatJSON, "":
		doc, err = decodeFile(cfg.DataPath, logger)
	default:
		err = fmt.Errorf("unsupported data format %q", cfg.DataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("loading network from %s: %w", cfg.DataPath, err)
	}

	logging.LogOperation(logger, "network_document_loaded",
		slog.String("path", cfg.DataPath),
		slog.String("format", cfg.DataFormat),
		slog.Int("base_requests", len(doc.BaseRequests)),
		slog.Duration("elapsed", time.Since(start)))
	return doc, nil
}

func decodeFile(path string, logger *slog.Logger) (*requests.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(f, logger, "network_document")
	return requests.Decode(f)
}
