package http

import "net/http"

// handleTotalsByPerson returns the full report, or a window of it when page
// parameters are present. totalGeral always covers every person.
func (s *Server) handleTotalsByPerson(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.TotalsByPerson(r.Context())
	if err != nil {
		writeError(w, r, "totals_by_person", err)
		return
	}
	if hasPageParams(r) {
		NewJSONResponse().Body(report.Paged(parsePageRequest(r))).Write(w)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleTotalsByCategory(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.TotalsByCategory(r.Context())
	if err != nil {
		writeError(w, r, "totals_by_category", err)
		return
	}
	if hasPageParams(r) {
		NewJSONResponse().Body(report.Paged(parsePageRequest(r))).Write(w)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}
