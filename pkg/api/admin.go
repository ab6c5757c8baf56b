// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminInfo is reported by the ops /info endpoint.
type AdminInfo struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	Simulation bool   `json:"simulation"`
	Uptime     string `json:"uptime"`
}

// AdminRouter serves the operational endpoints on a separate listener:
// liveness, build info and Prometheus metrics.
func (s *Server) AdminRouter(version string, started time.Time) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	}).Methods("GET")

	r.HandleFunc("/info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AdminInfo{
			Service:    "precised",
			Version:    version,
			Simulation: s.sim.Running(),
			Uptime:     time.Since(started).Round(time.Second).String(),
		})
	}).Methods("GET")

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.GetGatherer(), promhttp.HandlerOpts{})).Methods("GET")
	}

	return r
}
