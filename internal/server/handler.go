package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mklzl/rollsync/internal/engine"
	"github.com/mklzl/rollsync/internal/parser"
)

// QueryHandler handles HTTP query requests.
type QueryHandler struct {
	exec *engine.Executor
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(exec *engine.Executor) *QueryHandler {
	return &QueryHandler{exec: exec}
}

// HandleQuery processes admin SQL received via HTTP.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		query = strings.TrimSpace(string(body))
	}

	if query == "" {
		http.Error(w, "empty query", http.StatusBadRequest)
		return
	}

	format := ParseFormat(r.URL.Query().Get("format"))

	stmt, err := parser.ParseSQL(query)
	if err != nil {
		http.Error(w, fmt.Sprintf("parse error: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.exec.Execute(stmt)
	if err != nil {
		http.Error(w, fmt.Sprintf("execution error: %v", err), http.StatusInternalServerError)
		return
	}

	if len(result.Columns) > 0 {
		switch format {
		case FormatJSON:
			w.Header().Set("Content-Type", "application/json")
		case FormatCSV:
			w.Header().Set("Content-Type", "text/csv")
		default:
			w.Header().Set("Content-Type", "text/tab-separated-values")
		}
		if err := FormatResult(w, result, format); err != nil {
			http.Error(w, fmt.Sprintf("format error: %v", err), http.StatusInternalServerError)
		}
	} else {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, result.Message)
	}
}

// HandlePing responds with "Ok." for health checks.
func (h *QueryHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Ok.")
}
