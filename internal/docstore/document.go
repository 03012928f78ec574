// Package docstore implements a miniature embedded document database over a
// key–value persistence substrate.
//
// Each collection is a named sequence of schema-less documents, serialized
// as one JSON array under a namespaced key. Queries are equality-only and
// conjunctive, evaluated by linear scan. There are no transactions spanning
// collections and no indexes; this is deliberate — collections here hold at
// most a few hundred records of site content.
package docstore

import (
	"fmt"
	"time"

	"github.com/avetrovs/vitrine/internal/common"
)

// Engine-assigned document fields.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is a schema-less field mapping. The engine assigns "id",
// "createdAt" and "updatedAt" on insert; "id" and "createdAt" are immutable
// afterwards.
type Document map[string]any

// ID returns the document's identifier, or "" if it has none yet.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a shallow copy of the document. Field values are shared;
// documents coming out of the engine only hold JSON scalar/array/map values,
// which callers are expected to treat as read-only.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Query is an equality-only, conjunctive filter: every listed field must
// match exactly. A missing field on a document means no match for that key.
// An empty query matches every document.
type Query map[string]any

// NewID produces a collection-unique identifier: millisecond timestamp in
// hex, then a random hex suffix. The timestamp prefix keeps ids sortable by
// insertion time, so sequence order can be recovered if storage order is
// ever lost; the suffix makes reuse after deletion vanishingly unlikely.
func NewID() (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%012x%s", time.Now().UnixMilli(), suffix), nil
}
