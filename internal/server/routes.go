package server

import "net/http"

// setupRoutes registers the REST surface spec.md §6 names over C10's
// façade, the way the teacher's setupRoutes builds its ServeMux.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/statement", s.handleStatement)
	mux.HandleFunc("/api/revenue", s.handleRevenue)
	mux.HandleFunc("/api/pledge", s.handlePledge)
	mux.HandleFunc("/api/dividend", s.handleDividend)
	mux.HandleFunc("/api/disclosure", s.handleDisclosure)

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	return mux
}
