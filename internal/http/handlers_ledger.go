package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"financas/internal/core"
	"financas/internal/services"

	"github.com/shopspring/decimal"
)

type categoryRequest struct {
	Name  string `json:"nome"`
	Kind  string `json:"tipo"`
	Color string `json:"cor"`
}

type categoryResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"nome"`
	Kind  core.Kind `json:"tipo"`
	Color string    `json:"cor"`
}

func categoryOf(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Kind: c.Kind, Color: c.Color}
}

// transactionRequest accepts valor as a JSON number or as text, including
// the "1.234,56" notation.
type transactionRequest struct {
	Date          string          `json:"data"`
	Description   string          `json:"descricao"`
	CategoryID    string          `json:"categoria_id"`
	Category      string          `json:"categoria"`
	Amount        json.RawMessage `json:"valor"`
	ReceiptMethod string          `json:"forma_recebimento"`
	PaymentMethod string          `json:"forma_pagamento"`
}

type transactionResponse struct {
	ID            string          `json:"id"`
	Kind          core.Kind       `json:"tipo"`
	Date          core.Date       `json:"data"`
	Description   string          `json:"descricao"`
	CategoryID    string          `json:"categoria_id"`
	Category      string          `json:"categoria"`
	Amount        decimal.Decimal `json:"valor"`
	ReceiptMethod string          `json:"forma_recebimento,omitempty"`
	PaymentMethod string          `json:"forma_pagamento,omitempty"`
}

func transactionOf(tx core.Transaction) transactionResponse {
	out := transactionResponse{
		ID:          tx.ID,
		Kind:        tx.Kind,
		Date:        tx.Date,
		Description: tx.Description,
		CategoryID:  tx.CategoryID,
		Category:    tx.Category,
		Amount:      tx.Amount,
	}
	if tx.Kind == core.Income {
		out.ReceiptMethod = tx.Method
	} else {
		out.PaymentMethod = tx.Method
	}
	return out
}

// ledgerEndpoint describes one of the two transaction collections.
type ledgerEndpoint struct {
	path     string
	kind     core.Kind
	notFound string
}

var ledgerEndpoints = []ledgerEndpoint{
	{path: "/api/receitas", kind: core.Income, notFound: "Receita não encontrada"},
	{path: "/api/despesas", kind: core.Expense, notFound: "Despesa não encontrada"},
}

func (req transactionRequest) input(kind core.Kind) (services.TransactionInput, error) {
	amount, err := amountText(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	method := req.PaymentMethod
	if kind == core.Income {
		method = req.ReceiptMethod
	}
	return services.TransactionInput{
		Date:        req.Date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Category:    req.Category,
		Amount:      amount,
		Method:      method,
	}, nil
}

func amountText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.New("valor inválido")
		}
		return s, nil
	}
	return string(raw), nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Ledger.ListCategories(r.Context(), session(r), r.URL.Query().Get("tipo"))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryOf(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.deps.Ledger.CreateCategory(r.Context(), session(r), services.CategoryInput(req))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, categoryOf(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.deps.Ledger.UpdateCategory(r.Context(), session(r), r.PathValue("id"), services.CategoryInput(req))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, categoryOf(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteCategory(r.Context(), session(r), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(ep ledgerEndpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := queryInt(r, "mes")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		year, err := queryInt(r, "ano")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		txs, err := s.deps.Ledger.ListTransactions(r.Context(), session(r), ep.kind, month, year)
		if err != nil {
			s.writeServiceError(w, r, err, ep.notFound)
			return
		}
		out := make([]transactionResponse, len(txs))
		for i, tx := range txs {
			out[i] = transactionOf(tx)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleCreateTransaction(ep ledgerEndpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := s.readTransaction(w, r, ep.kind)
		if !ok {
			return
		}
		tx, err := s.deps.Ledger.CreateTransaction(r.Context(), session(r), ep.kind, in)
		if err != nil {
			s.writeServiceError(w, r, err, ep.notFound)
			return
		}
		writeJSON(w, http.StatusCreated, transactionOf(tx))
	}
}

func (s *Server) handleUpdateTransaction(ep ledgerEndpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := s.readTransaction(w, r, ep.kind)
		if !ok {
			return
		}
		tx, err := s.deps.Ledger.UpdateTransaction(r.Context(), session(r), ep.kind, r.PathValue("id"), in)
		if err != nil {
			s.writeServiceError(w, r, err, ep.notFound)
			return
		}
		writeJSON(w, http.StatusOK, transactionOf(tx))
	}
}

func (s *Server) handleDeleteTransaction(ep ledgerEndpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Ledger.DeleteTransaction(r.Context(), session(r), ep.kind, r.PathValue("id")); err != nil {
			s.writeServiceError(w, r, err, ep.notFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) readTransaction(w http.ResponseWriter, r *http.Request, kind core.Kind) (services.TransactionInput, bool) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return services.TransactionInput{}, false
	}
	in, err := req.input(kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return services.TransactionInput{}, false
	}
	return in, true
}
