package http

import (
	"net/http"

	"gastos/internal/log"
)

const entityPerson = "person"

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	page, err := s.ledger.ListPeople(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, "list_people", err)
		return
	}
	NewJSONResponse().Body(page).Write(w)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		NotFoundError("person not found").Write(w)
		return
	}
	p, err := s.ledger.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, r, "get_person", err)
		return
	}
	NewJSONResponse().Body(p).Write(w)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.observeWrite(entityPerson, log.OpCreate, err)
		writeError(w, r, "create_person", err)
		return
	}
	age, err := req.age()
	if err != nil {
		s.observeWrite(entityPerson, log.OpCreate, err)
		writeError(w, r, "create_person", err)
		return
	}

	p, err := s.ledger.CreatePerson(r.Context(), sanitizeInput(req.Name), age)
	s.observeWrite(entityPerson, log.OpCreate, err)
	if err != nil {
		writeError(w, r, "create_person", err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(resourcePath(s.prefix, "people", p.ID)).
		Body(p).
		Write(w)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		NotFoundError("person not found").Write(w)
		return
	}
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.observeWrite(entityPerson, log.OpUpdate, err)
		writeError(w, r, "update_person", err)
		return
	}
	age, err := req.age()
	if err != nil {
		s.observeWrite(entityPerson, log.OpUpdate, err)
		writeError(w, r, "update_person", err)
		return
	}

	_, err = s.ledger.UpdatePerson(r.Context(), id, sanitizeInput(req.Name), age)
	s.observeWrite(entityPerson, log.OpUpdate, err)
	if err != nil {
		writeError(w, r, "update_person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeletePerson removes the person together with every transaction they own.
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		NotFoundError("person not found").Write(w)
		return
	}
	_, err := s.ledger.DeletePerson(r.Context(), id)
	s.observeWrite(entityPerson, log.OpDelete, err)
	if err != nil {
		writeError(w, r, "delete_person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
