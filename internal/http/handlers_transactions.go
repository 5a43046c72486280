package http

import (
	"net/http"

	"gastos/internal/log"
)

const entityTransaction = "transaction"

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := s.ledger.ListTransactions(r.Context(), parsePageRequest(r))
	if err != nil {
		writeError(w, r, "list_transactions", err)
		return
	}
	NewJSONResponse().Body(page).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, "get_transaction", err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

// handleCreateTransaction records a transaction after the business rules pass.
// The response carries the resolved category and person.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.observeWrite(entityTransaction, log.OpCreate, err)
		writeError(w, r, "create_transaction", err)
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), req.input())
	s.observeWrite(entityTransaction, log.OpCreate, err)
	if err != nil {
		writeError(w, r, "create_transaction", err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(resourcePath(s.prefix, "transactions", tx.ID)).
		Body(tx).
		Write(w)
}
