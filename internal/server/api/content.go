package api

import (
	"net/http"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func handleList(deps Deps, schema catalog.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Store.List(r.Context(), schema.Name)
		if err != nil {
			deps.Logger.Error(r.Context(), "list failed", "collection", schema.Name, "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not list %s", schema.Name)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func handleGet(deps Deps, schema catalog.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, ok, err := deps.Store.GetByID(r.Context(), schema.Name, id)
		if err != nil {
			deps.Logger.Error(r.Context(), "get failed", "collection", schema.Name, "id", id, "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not load document")
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no such document")
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleCreate(deps Deps, schema catalog.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]any
		if !decodeBody(w, r, &fields) {
			return
		}

		fields = schema.ApplyDefaults(fields)
		if err := schema.Validate(fields); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		doc, err := deps.Store.Create(r.Context(), schema.Name, uuid.NewString(), fields)
		if err != nil {
			deps.Logger.Error(r.Context(), "create failed", "collection", schema.Name, "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not store document")
			return
		}
		writeJSON(w, http.StatusCreated, doc)
	}
}

func handleUpdate(deps Deps, schema catalog.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var fields map[string]any
		if !decodeBody(w, r, &fields) {
			return
		}

		if err := schema.Validate(schema.ApplyDefaults(fields)); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		doc, ok, err := deps.Store.Update(r.Context(), schema.Name, id, fields)
		if err != nil {
			deps.Logger.Error(r.Context(), "update failed", "collection", schema.Name, "id", id, "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not update document")
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no such document")
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleDelete(deps Deps, schema catalog.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		removed, err := deps.Store.Delete(r.Context(), schema.Name, id)
		if err != nil {
			deps.Logger.Error(r.Context(), "delete failed", "collection", schema.Name, "id", id, "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not delete document")
			return
		}
		if !removed {
			httpError(w, http.StatusNotFound, "not_found", "no such document")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
