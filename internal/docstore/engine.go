package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/kvstore"
)

// keyPrefix namespaces collection blobs inside the key–value store.
const keyPrefix = "collection:"

// Engine provides collection-scoped CRUD over a kvstore.Store.
//
// Every operation on a collection is a read-modify-write-replace of the whole
// serialized collection, so the engine serializes all operations per
// collection behind a mutex. This single-writer discipline is a hard
// invariant: without it, two interleaved writers would each rewrite the full
// snapshot and one update would be lost.
//
// Absence ("no matching document") is a normal result, reported through a
// boolean, never an error. Errors mean the persistence substrate failed and
// wrap common.ErrStorageFailure.
type Engine struct {
	store kvstore.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time // test seam
}

// NewEngine returns an Engine persisting into the given store.
func NewEngine(store kvstore.Store) *Engine {
	return &Engine{
		store: store,
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

// lock returns the mutex guarding the named collection, creating it on first
// use.
func (e *Engine) lock(collection string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		e.locks[collection] = l
	}
	return l
}

// load reads and decodes the collection sequence. A missing key is an empty
// collection, not an error.
func (e *Engine) load(ctx context.Context, collection string) ([]Document, error) {
	blob, ok, err := e.store.Get(ctx, keyPrefix+collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var docs []Document
	if err := json.Unmarshal(blob, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode collection %q: %v", common.ErrStorageFailure, collection, err)
	}
	return docs, nil
}

// save serializes and replaces the whole collection sequence.
func (e *Engine) save(ctx context.Context, collection string, docs []Document) error {
	blob, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("%w: encode collection %q: %v", common.ErrStorageFailure, collection, err)
	}
	return e.store.Set(ctx, keyPrefix+collection, blob)
}

// matches reports whether doc satisfies every equality constraint in q.
// Values are compared through their JSON encoding, so a query written with
// an int matches a document value decoded as float64.
func matches(doc Document, q Query) bool {
	for field, want := range q {
		got, ok := doc[field]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Find returns all documents in the collection matching q, in stored order.
// A missing collection yields an empty result, not an error.
func (e *Engine) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return nil, err
	}

	var out []Document
	for _, d := range docs {
		if matches(d, q) {
			out = append(out, d)
		}
	}
	return out, nil
}

// FindOne returns the first document matching q. The boolean reports whether
// a match was found.
func (e *Engine) FindOne(ctx context.Context, collection string, q Query) (Document, bool, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return nil, false, err
	}
	for _, d := range docs {
		if matches(d, q) {
			return d, true, nil
		}
	}
	return nil, false, nil
}

// Count returns the number of documents in the collection.
func (e *Engine) Count(ctx context.Context, collection string) (int, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// InsertOne assigns a fresh id and timestamps, appends the document to the
// collection and persists the whole sequence. The caller's map is not
// mutated; the stored document is returned.
func (e *Engine) InsertOne(ctx context.Context, collection string, fields Document) (Document, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return nil, err
	}

	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("%w: generate id: %v", common.ErrStorageFailure, err)
	}

	doc := fields.Clone()
	now := e.now().UTC().Format(time.RFC3339Nano)
	doc[FieldID] = id
	doc[FieldCreatedAt] = now
	doc[FieldUpdatedAt] = now

	docs = append(docs, doc)
	if err := e.save(ctx, collection, docs); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateOne merges patch into the first document matching q, refreshes
// "updatedAt" and persists. Patch fields overwrite; "id" and "createdAt"
// stay immutable. When nothing matches, the collection is left untouched and
// the boolean is false.
func (e *Engine) UpdateOne(ctx context.Context, collection string, q Query, patch Document) (Document, bool, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return nil, false, err
	}

	for i, d := range docs {
		if !matches(d, q) {
			continue
		}
		updated := d.Clone()
		for k, v := range patch {
			if k == FieldID || k == FieldCreatedAt {
				continue
			}
			updated[k] = v
		}
		updated[FieldUpdatedAt] = e.now().UTC().Format(time.RFC3339Nano)
		docs[i] = updated
		if err := e.save(ctx, collection, docs); err != nil {
			return nil, false, err
		}
		return updated, true, nil
	}
	return nil, false, nil
}

// DeleteOne removes the first document matching q and reports whether a
// removal occurred.
func (e *Engine) DeleteOne(ctx context.Context, collection string, q Query) (bool, error) {
	_, removed, err := e.findOneAndDelete(ctx, collection, q)
	return removed, err
}

// FindOneAndUpdate is UpdateOne returning the affected document; it exists
// to mirror the store's query API surface.
func (e *Engine) FindOneAndUpdate(ctx context.Context, collection string, q Query, patch Document) (Document, bool, error) {
	return e.UpdateOne(ctx, collection, q, patch)
}

// FindOneAndDelete removes the first document matching q and returns it.
func (e *Engine) FindOneAndDelete(ctx context.Context, collection string, q Query) (Document, bool, error) {
	return e.findOneAndDelete(ctx, collection, q)
}

func (e *Engine) findOneAndDelete(ctx context.Context, collection string, q Query) (Document, bool, error) {
	l := e.lock(collection)
	l.Lock()
	defer l.Unlock()

	docs, err := e.load(ctx, collection)
	if err != nil {
		return nil, false, err
	}

	for i, d := range docs {
		if !matches(d, q) {
			continue
		}
		docs = append(docs[:i], docs[i+1:]...)
		if err := e.save(ctx, collection, docs); err != nil {
			return nil, false, err
		}
		return d, true, nil
	}
	return nil, false, nil
}
