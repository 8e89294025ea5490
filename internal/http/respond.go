package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"financas/internal/analytics"
	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string   `json:"erro"`
	Errors []string `json:"erros,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ForComponent(log.ComponentHTTP).Error("Failed to write JSON response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Errors: details})
}

// decodeJSON reads a single JSON object into target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("corpo da requisição vazio")
		}
		return fmt.Errorf("JSON inválido: %w", err)
	}
	if decoder.More() {
		return errors.New("JSON inválido: conteúdo extra")
	}
	return nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser um número inteiro", name)
	}
	return n, nil
}

// writeServiceError maps domain and service errors to responses. notFound
// overrides the message for core.ErrNotFound.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, "Dados inválidos", verr.Errors...)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Email ou senha incorretos")
	case errors.Is(err, auth.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, "Token expirado")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Token inválido")
	case errors.Is(err, analytics.ErrUnknownPeriod), errors.Is(err, analytics.ErrInvalidWindow),
		errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Requisição inválida", err.Error())
	case errors.Is(err, core.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Categoria não encontrada")
	case errors.Is(err, core.ErrNotFound):
		if notFound == "" {
			notFound = "Recurso não encontrado"
		}
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, core.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email já cadastrado")
	case errors.Is(err, core.ErrCategoryExists):
		writeError(w, http.StatusConflict, "Já existe uma categoria com esse nome")
	case errors.Is(err, core.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "Categoria possui lançamentos vinculados")
	case errors.Is(err, core.ErrCategoryKindMismatch):
		writeError(w, http.StatusUnprocessableEntity, "Categoria não corresponde ao tipo do lançamento")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithError(err, log.ErrorTypeInternal).ToSlice()...)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}
