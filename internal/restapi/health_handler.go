package restapi

import (
	"encoding/json"
	"net/http"

	"transitcatalogue.org/internal/logging"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Stops  int    `json:"stops,omitempty"`
	Buses  int    `json:"buses,omitempty"`
}

// healthHandler reports 200 once the network is loaded and the search index
// answers pings.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !api.Application.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "unavailable",
			Detail: "network not loaded",
		})
		return
	}

	if err := api.SearchIndex.DB.PingContext(r.Context()); err != nil {
		logging.LogError(api.Logger, "search index ping failed", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "unavailable",
			Detail: "search index unreachable",
		})
		return
	}

	c := api.Network.Catalogue()
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status: "ok",
		Stops:  c.StopCount(),
		Buses:  c.BusCount(),
	})
}
