// Package services holds the client-side application services: schema-aware
// CRUD over the local document store.
package services

import (
	"context"
	"fmt"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/docstore"
)

// ContentService wraps the document engine with catalog validation: every
// write is checked against the collection's schema before it is persisted.
type ContentService struct {
	engine *docstore.Engine
}

func NewContentService(engine *docstore.Engine) *ContentService {
	return &ContentService{engine: engine}
}

func schemaFor(collection string) (catalog.Schema, error) {
	schema, ok := catalog.Lookup(collection)
	if !ok {
		return catalog.Schema{}, fmt.Errorf("%w: unknown collection %q", common.ErrValidation, collection)
	}
	return schema, nil
}

// List returns every document in a collection, in insertion order.
func (s *ContentService) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	if _, err := schemaFor(collection); err != nil {
		return nil, err
	}
	return s.engine.Find(ctx, collection, nil)
}

// Get fetches a single document by id. Absence is reported via ok, not error.
func (s *ContentService) Get(ctx context.Context, collection, id string) (docstore.Document, bool, error) {
	if _, err := schemaFor(collection); err != nil {
		return nil, false, err
	}
	return s.engine.FindOne(ctx, collection, docstore.Query{docstore.FieldID: id})
}

// Add validates fields against the collection schema, applies declared
// defaults and inserts the document.
func (s *ContentService) Add(ctx context.Context, collection string, fields docstore.Document) (docstore.Document, error) {
	schema, err := schemaFor(collection)
	if err != nil {
		return nil, err
	}

	fields = schema.ApplyDefaults(fields)
	if err := schema.Validate(fields); err != nil {
		return nil, err
	}

	return s.engine.InsertOne(ctx, collection, fields)
}

// Edit merges patch into the identified document. The merged result must
// still satisfy the schema, so a patch cannot blank out a required field.
func (s *ContentService) Edit(ctx context.Context, collection, id string, patch docstore.Document) (docstore.Document, bool, error) {
	schema, err := schemaFor(collection)
	if err != nil {
		return nil, false, err
	}

	current, ok, err := s.engine.FindOne(ctx, collection, docstore.Query{docstore.FieldID: id})
	if err != nil || !ok {
		return nil, false, err
	}

	merged := current.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	if err := schema.Validate(merged); err != nil {
		return nil, false, err
	}

	return s.engine.FindOneAndUpdate(ctx, collection, docstore.Query{docstore.FieldID: id}, patch)
}

// Delete removes a document by id. The bool reports whether one was removed.
func (s *ContentService) Delete(ctx context.Context, collection, id string) (bool, error) {
	if _, err := schemaFor(collection); err != nil {
		return false, err
	}
	return s.engine.DeleteOne(ctx, collection, docstore.Query{docstore.FieldID: id})
}

// Seed inserts each collection's catalog seed documents, but only into
// collections that are still empty, so running it twice changes nothing.
// It returns the number of documents inserted per seeded collection.
func (s *ContentService) Seed(ctx context.Context) (map[string]int, error) {
	inserted := make(map[string]int)

	for _, schema := range catalog.Collections {
		if len(schema.Seed) == 0 {
			continue
		}

		n, err := s.engine.Count(ctx, schema.Name)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", schema.Name, err)
		}
		if n > 0 {
			continue
		}

		for _, doc := range schema.Seed {
			fields := schema.ApplyDefaults(doc)
			if _, err := s.engine.InsertOne(ctx, schema.Name, fields); err != nil {
				return nil, fmt.Errorf("seed %s: %w", schema.Name, err)
			}
			inserted[schema.Name]++
		}
	}

	return inserted, nil
}
