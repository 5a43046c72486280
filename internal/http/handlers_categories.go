package http

import (
	"net/http"

	"gastos/internal/log"
)

const entityCategory = "category"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := s.ledger.ListCategories(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, "list_categories", err)
		return
	}
	NewJSONResponse().Body(page).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		NotFoundError("category not found").Write(w)
		return
	}
	c, err := s.ledger.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, "get_category", err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.observeWrite(entityCategory, log.OpCreate, err)
		writeError(w, r, "create_category", err)
		return
	}

	c, err := s.ledger.CreateCategory(r.Context(), sanitizeInput(req.Description), req.Purpose)
	s.observeWrite(entityCategory, log.OpCreate, err)
	if err != nil {
		writeError(w, r, "create_category", err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(resourcePath(s.prefix, "categories", c.ID)).
		Body(c).
		Write(w)
}
