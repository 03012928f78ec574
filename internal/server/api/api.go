// Package api implements the HTTP surface of the Vitrine content server:
// JSON CRUD for every content collection, authentication endpoints, and the
// liveness probe the client's connectivity check targets.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/avetrovs/vitrine/internal/logging"
	"github.com/avetrovs/vitrine/internal/server/storage"
	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20 // 1MB

// Store is the repository surface the handlers need; *storage.Repository
// implements it.
type Store interface {
	List(ctx context.Context, collection string) ([]map[string]any, error)
	GetByID(ctx context.Context, collection, id string) (map[string]any, bool, error)
	FindByField(ctx context.Context, collection, field, value string) (map[string]any, bool, error)
	Create(ctx context.Context, collection, id string, fields map[string]any) (map[string]any, error)
	CreateUnique(ctx context.Context, collection, id, field, value string, fields map[string]any) (map[string]any, bool, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) (map[string]any, bool, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
}

var _ Store = (*storage.Repository)(nil)

// Deps bundles what the handlers need.
type Deps struct {
	Store         Store
	Logger        logging.Logger
	SecretKey     []byte
	TokenValidity time.Duration
}

// NewHandler builds the router. Reads are public; so is posting a contact
// inquiry, which is the site's public form. Every other mutation requires a
// bearer session token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Post("/api/auth/register", handleRegister(deps))
	r.Post("/api/auth/login", handleLogin(deps))

	for _, schema := range catalog.Collections {
		schema := schema
		base := "/api/" + schema.Name

		r.Get(base, handleList(deps, schema))
		r.Get(base+"/{id}", handleGet(deps, schema))

		create := handleCreate(deps, schema)
		if schema.Name == "contacts" {
			r.Post(base, create)
		} else {
			r.With(bearerAuth(deps)).Post(base, create)
		}
		r.With(bearerAuth(deps)).Put(base+"/{id}", handleUpdate(deps, schema))
		r.With(bearerAuth(deps)).Delete(base+"/{id}", handleDelete(deps, schema))
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}
