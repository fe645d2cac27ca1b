package server

import (
	"net/http"
	"strconv"

	"github.com/novis10813/mops-financial-api/internal/common"
	"github.com/novis10813/mops-financial-api/internal/models"
	"github.com/novis10813/mops-financial-api/internal/service"
)

// queryBool parses "force_refresh=true"-style flags, defaulting to
// false on absence or parse failure.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return v
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

// handleStatement serves get_financial_statement (spec.md §6).
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	query := service.StatementQuery{
		StockID:      q.Get("stock_id"),
		Year:         queryInt(r, "year"),
		Quarter:      queryInt(r, "quarter"),
		ReportType:   models.ReportType(q.Get("report_type")),
		ForceRefresh: queryBool(r, "force_refresh"),
	}
	stmt, err := s.app.Facade.GetStatement(r.Context(), query)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

// handleRevenue serves get_monthly_revenue.
func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	query := service.RevenueQuery{
		Market:       q.Get("market"),
		Year:         queryInt(r, "year"),
		Month:        queryInt(r, "month"),
		Type:         q.Get("type"),
		ForceRefresh: queryBool(r, "force_refresh"),
	}
	rows, err := s.app.Facade.GetRevenue(r.Context(), query)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlePledge serves get_share_pledging.
func (s *Server) handlePledge(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	query := service.PledgeQuery{
		Year:         queryInt(r, "year"),
		Month:        queryInt(r, "month"),
		Market:       q.Get("market"),
		CoID:         q.Get("stock_id"),
		ForceRefresh: queryBool(r, "force_refresh"),
	}
	rows, err := s.app.Facade.GetPledge(r.Context(), query)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleDividend serves get_dividend.
func (s *Server) handleDividend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	query := service.DividendQuery{
		StockID:      q.Get("stock_id"),
		YearStart:    queryInt(r, "year_start"),
		YearEnd:      queryInt(r, "year_end"),
		QueryType:    queryInt(r, "query_type"),
		ForceRefresh: queryBool(r, "force_refresh"),
	}
	rows, err := s.app.Facade.GetDividend(r.Context(), query)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleDisclosure serves get_disclosure.
func (s *Server) handleDisclosure(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	query := service.DisclosureQuery{
		Year:         queryInt(r, "year"),
		Month:        queryInt(r, "month"),
		Market:       q.Get("market"),
		CoID:         q.Get("stock_id"),
		ForceRefresh: queryBool(r, "force_refresh"),
	}
	result, err := s.app.Facade.GetDisclosure(r.Context(), query)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleHealth reports liveness; no upstream or storage calls.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion reports the build version, set via -ldflags.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": common.GetVersion()})
}

// RequireMethod validates that r uses method, writing a 405 otherwise.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
