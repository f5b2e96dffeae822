package graph

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/sirupsen/logrus"
)

//go:embed schema.graphql
var schemaSDL string

const maxDepth = 8

// ErrorObserver is told the code of every error returned to a client
type ErrorObserver interface {
	ObserveGraphQLError(code int)
}

// Error is the wire shape of a GraphQL error
type Error struct {
	Message   string               `json:"message"`
	Code      int                  `json:"code"`
	Data      []apperr.Detail      `json:"data,omitempty"`
	Locations []gqlerrors.Location `json:"locations,omitempty"`
	Path      []interface{}        `json:"path,omitempty"`
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// Handler serves GraphQL over HTTP
type Handler struct {
	schema   *graphql.Schema
	log      *logrus.Logger
	observer ErrorObserver
}

// NewHandler parses the schema against the service resolvers
func NewHandler(svc *service.Service, log *logrus.Logger, observer ErrorObserver) (*Handler, error) {
	schema, err := graphql.ParseSchema(schemaSDL, NewResolver(svc), graphql.MaxDepth(maxDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return &Handler{schema: schema, log: log, observer: observer}, nil
}

// FormatError flattens a query error into {message, code, data}. Errors that
// did not come from a resolver keep their message and report code 500.
func FormatError(qe *gqlerrors.QueryError) Error {
	out := Error{
		Message:   qe.Message,
		Code:      http.StatusInternalServerError,
		Locations: qe.Locations,
		Path:      qe.Path,
	}
	var ae *apperr.Error
	if errors.As(qe.ResolverError, &ae) {
		out.Message = ae.Message
		out.Code = ae.Kind.Code()
		out.Data = ae.Details
	}
	if out.Message == "" {
		out.Message = "error occurred"
	}
	return out
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid variables"})
				return
			}
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
			return
		}
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "query is required"})
		return
	}

	result := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)

	resp := response{Data: result.Data}
	for _, qe := range result.Errors {
		formatted := FormatError(qe)
		if formatted.Code == http.StatusInternalServerError {
			h.log.WithError(qe).Error("GraphQL request failed")
		}
		if h.observer != nil {
			h.observer.ObserveGraphQLError(formatted.Code)
		}
		resp.Errors = append(resp.Errors, formatted)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
