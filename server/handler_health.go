package server

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

type providerHealth struct {
	Healthy bool `json:"healthy"`

	LatencyMS int64 `json:"latency_ms"`

	Error string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`

	Providers map[string]providerHealth `json:"providers"`
}

// handleHealth probes every configured provider concurrently and reports
// per-provider latency. Degraded providers turn the overall status without
// failing the endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clients := s.Clients()

	results := make(map[string]providerHealth, len(clients))

	var g errgroup.Group

	type entry struct {
		name string

		health providerHealth
	}

	resultCh := make(chan entry, len(clients))

	for name, client := range clients {
		g.Go(func() error {
			health, err := client.HealthCheck(ctx)

			if err != nil {
				resultCh <- entry{name, providerHealth{Error: err.Error()}}
				return nil
			}

			resultCh <- entry{name, providerHealth{
				Healthy: health.Healthy,

				LatencyMS: health.Latency.Milliseconds(),

				Error: health.Error,
			}}

			return nil
		})
	}

	g.Wait()
	close(resultCh)

	for e := range resultCh {
		results[e.name] = e.health
	}

	status := "ok"

	for _, health := range results {
		if !health.Healthy {
			status = "degraded"
			break
		}
	}

	resp := healthResponse{
		Status: status,

		Providers: results,
	}

	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJson(w, resp)
}
