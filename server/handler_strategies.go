package server

import (
	"net/http"

	"github.com/docrelay/docrelay/pkg/extractor"
)

type strategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Available bool `json:"available"`
}

type strategiesResponse struct {
	Strategies []strategyInfo `json:"strategies"`

	Routed string `json:"routed,omitempty"`
}

// handleStrategies lists the strategy catalog and, given ?query=, previews
// which strategy the router would pick.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	registered := map[extractor.Strategy]bool{}

	for _, strategy := range s.Orchestrator.Registered() {
		registered[strategy] = true
	}

	resp := strategiesResponse{}

	for _, strategy := range extractor.Strategies() {
		resp.Strategies = append(resp.Strategies, strategyInfo{
			Name:        string(strategy),
			Description: extractor.Describe(strategy),

			Available: registered[strategy],
		})
	}

	if query := r.URL.Query().Get("query"); query != "" {
		resp.Routed = string(extractor.Route(query))
	}

	writeJson(w, resp)
}
