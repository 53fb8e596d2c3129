package gtfs

import (
	"strings"

	"transitcatalogue.org/internal/router"
)

// DefaultRoutingSettings are attached to imported documents, since GTFS
// carries no wait time or average bus speed.
var DefaultRoutingSettings = router.Settings{BusWaitTime: 2, BusVelocity: 30}

// Config controls where a static feed is read from.
type Config struct {
	// Source is a local path or an http(s) URL of a GTFS zip.
	Source                string
	StaticAuthHeaderKey   string
	StaticAuthHeaderValue string
	Routing               router.Settings
}

func (c Config) isLocalFile() bool {
	return !strings.HasPrefix(c.Source, "http://") && !strings.HasPrefix(c.Source, "https://")
}
