package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEngine(t *testing.T) (*Engine, *kvstore.MemoryStore) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	return NewEngine(kv), kv
}

func TestInsertOne_AssignsIdentityAndTimestamps(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	doc, err := e.InsertOne(ctx, "services", Document{"title": "Landscaping"})
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID())
	assert.NotEmpty(t, doc[FieldCreatedAt])
	assert.Equal(t, doc[FieldCreatedAt], doc[FieldUpdatedAt])
	assert.Equal(t, "Landscaping", doc["title"])
}

func TestInsertOne_DoesNotMutateCallerMap(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	fields := Document{"title": "A"}
	_, err := e.InsertOne(ctx, "services", fields)
	require.NoError(t, err)
	assert.NotContains(t, fields, FieldID)
}

func TestFind_ByIDReturnsExactlyInsertedDocument(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	inserted, err := e.InsertOne(ctx, "services", Document{"title": "Landscaping", "price": 120})
	require.NoError(t, err)
	_, err = e.InsertOne(ctx, "services", Document{"title": "Snow removal"})
	require.NoError(t, err)

	got, err := e.Find(ctx, "services", Query{FieldID: inserted.ID()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inserted.ID(), got[0].ID())
	assert.Equal(t, "Landscaping", got[0]["title"])
}

func TestFind_MissingCollectionIsEmptyNotError(t *testing.T) {
	e, _ := setupEngine(t)

	got, err := e.Find(context.Background(), "nowhere", Query{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_EmptyQueryMatchesAll(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := e.InsertOne(ctx, "services", Document{"title": title})
		require.NoError(t, err)
	}

	got, err := e.Find(ctx, "services", Query{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// stored order is insertion order
	assert.Equal(t, "a", got[0]["title"])
	assert.Equal(t, "c", got[2]["title"])
}

func TestFind_MissingFieldMeansNoMatch(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	_, err := e.InsertOne(ctx, "services", Document{"title": "a"})
	require.NoError(t, err)

	got, err := e.Find(ctx, "services", Query{"category": "yard"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_NumericQueryMatchesDecodedFloat(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	_, err := e.InsertOne(ctx, "products", Document{"name": "rake", "price": 25})
	require.NoError(t, err)

	// after JSON round-trip the stored price is float64(25); an int query
	// must still match
	got, err := e.Find(ctx, "products", Query{"price": 25})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFindOne_AbsenceIsNotAnError(t *testing.T) {
	e, _ := setupEngine(t)

	doc, ok, err := e.FindOne(context.Background(), "services", Query{"title": "ghost"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestUpdateOne_MergesPatchAndRefreshesUpdatedAt(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	inserted, err := e.InsertOne(ctx, "services", Document{"title": "a", "active": true})
	require.NoError(t, err)

	updated, ok, err := e.UpdateOne(ctx, "services", Query{FieldID: inserted.ID()}, Document{"title": "b"})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "b", updated["title"])
	assert.Equal(t, true, updated["active"])
	assert.Equal(t, inserted.ID(), updated.ID())
	assert.Equal(t, inserted[FieldCreatedAt], updated[FieldCreatedAt])
}

func TestUpdateOne_PatchCannotOverrideIdentity(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	inserted, err := e.InsertOne(ctx, "services", Document{"title": "a"})
	require.NoError(t, err)

	updated, ok, err := e.UpdateOne(ctx, "services", Query{FieldID: inserted.ID()},
		Document{FieldID: "forged", FieldCreatedAt: "1970-01-01T00:00:00Z"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inserted.ID(), updated.ID())
	assert.Equal(t, inserted[FieldCreatedAt], updated[FieldCreatedAt])
}

func TestUpdateOne_NoMatchLeavesCollectionUntouched(t *testing.T) {
	e, kv := setupEngine(t)
	ctx := context.Background()

	_, err := e.InsertOne(ctx, "services", Document{"title": "a"})
	require.NoError(t, err)

	before, ok, err := kv.Get(ctx, "collection:services")
	require.NoError(t, err)
	require.True(t, ok)

	doc, matched, err := e.UpdateOne(ctx, "services", Query{"title": "ghost"}, Document{"title": "b"})
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Nil(t, doc)

	after, _, err := kv.Get(ctx, "collection:services")
	require.NoError(t, err)
	assert.Equal(t, before, after, "collection must be byte-for-byte unchanged")
}

func TestDeleteOne_RestoresPriorLength(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	_, err := e.InsertOne(ctx, "services", Document{"title": "keep"})
	require.NoError(t, err)
	lenBefore, err := e.Count(ctx, "services")
	require.NoError(t, err)

	inserted, err := e.InsertOne(ctx, "services", Document{"title": "temp"})
	require.NoError(t, err)

	removed, err := e.DeleteOne(ctx, "services", Query{FieldID: inserted.ID()})
	require.NoError(t, err)
	assert.True(t, removed)

	lenAfter, err := e.Count(ctx, "services")
	require.NoError(t, err)
	assert.Equal(t, lenBefore, lenAfter)
}

func TestDeleteOne_NoMatchReportsFalse(t *testing.T) {
	e, _ := setupEngine(t)

	removed, err := e.DeleteOne(context.Background(), "services", Query{"title": "ghost"})
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteOne_DoesNotTouchOtherCollections(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	svc, err := e.InsertOne(ctx, "services", Document{"title": "svc"})
	require.NoError(t, err)
	_, err = e.InsertOne(ctx, "testimonials", Document{"author": "Ann", "text": "great"})
	require.NoError(t, err)

	removed, err := e.DeleteOne(ctx, "services", Query{FieldID: svc.ID()})
	require.NoError(t, err)
	require.True(t, removed)

	others, err := e.Find(ctx, "testimonials", Query{})
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Ann", others[0]["author"])
}

func TestFindOneAndDelete_ReturnsRemovedDocument(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	inserted, err := e.InsertOne(ctx, "awards", Document{"name": "Best of 2024"})
	require.NoError(t, err)

	doc, ok, err := e.FindOneAndDelete(ctx, "awards", Query{FieldID: inserted.ID()})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inserted.ID(), doc.ID())

	n, err := e.Count(ctx, "awards")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// failingStore always errors, to verify storage faults surface as
// ErrStorageFailure instead of empty results.
type failingStore struct{ kvstore.MemoryStore }

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, common.ErrStorageFailure
}

func TestFind_StorageFaultIsNotAnEmptyResult(t *testing.T) {
	e := NewEngine(&failingStore{})

	_, err := e.Find(context.Background(), "services", Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorageFailure))
}

func TestCorruptCollectionBlobIsStorageFailure(t *testing.T) {
	e, kv := setupEngine(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "collection:services", []byte("{not json")))

	_, err := e.Find(ctx, "services", Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorageFailure))
}
