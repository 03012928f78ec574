package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/docstore"
	"github.com/avetrovs/vitrine/internal/kvstore"
	"github.com/avetrovs/vitrine/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalOnlyChecker(t *testing.T) (*Checker, *docstore.Engine) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	engine := docstore.NewEngine(kv)
	c := &Checker{kv: kv, engine: engine, remote: &stubRemote{pingErr: context.DeadlineExceeded}, remoteTimeout: 50 * time.Millisecond}
	return c, engine
}

type stubRemote struct {
	pingErr error
	listErr error
	docs    []map[string]any
}

func (s *stubRemote) Ping(ctx context.Context) error { return s.pingErr }
func (s *stubRemote) List(ctx context.Context, collection string) ([]map[string]any, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.docs, nil
}

func TestCheckLocal_CountsDocuments(t *testing.T) {
	c, engine := newLocalOnlyChecker(t)
	ctx := context.Background()

	_, err := engine.InsertOne(ctx, "services", docstore.Document{"title": "a"})
	require.NoError(t, err)
	_, err = engine.InsertOne(ctx, "testimonials", docstore.Document{"author": "b"})
	require.NoError(t, err)

	report := c.CheckLocal(ctx)
	assert.True(t, report.Connected)
	assert.Equal(t, BackendLocal, report.Backend)
	assert.Contains(t, report.Message, "2 documents")
}

type brokenStore struct{ kvstore.MemoryStore }

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	return common.ErrStorageFailure
}

func TestCheckLocal_FailureIsReportNotError(t *testing.T) {
	kv := &brokenStore{}
	c := &Checker{kv: kv, engine: docstore.NewEngine(kv), remoteTimeout: time.Second}

	report := c.CheckLocal(context.Background())
	assert.False(t, report.Connected)
	assert.Equal(t, BackendLocal, report.Backend)
	assert.Contains(t, report.Message, "write failed")
}

func TestCheckRemote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/api/services":
			_, _ = w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	kv := kvstore.NewMemoryStore()
	c := NewChecker(kv, docstore.NewEngine(kv), remote.NewClient(srv.URL), time.Second)

	report := c.CheckRemote(context.Background())
	assert.True(t, report.Connected)
	assert.Equal(t, BackendRemote, report.Backend)
	assert.Contains(t, report.Message, "2 services")
}

func TestCheckRemote_HungServerRespectsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	kv := kvstore.NewMemoryStore()
	c := NewChecker(kv, docstore.NewEngine(kv), remote.NewClient(srv.URL), 50*time.Millisecond)

	start := time.Now()
	report := c.CheckRemote(context.Background())
	elapsed := time.Since(start)

	assert.False(t, report.Connected)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond, "probe must return promptly after the deadline")
	assert.Contains(t, report.Message, "did not answer within")
}

func TestCheckRemote_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	kv := kvstore.NewMemoryStore()
	c := NewChecker(kv, docstore.NewEngine(kv), remote.NewClient(addr), time.Second)

	report := c.CheckRemote(context.Background())
	assert.False(t, report.Connected)
	assert.Contains(t, report.Message, "unreachable")
}

func TestCheckRemote_ProcessUpButPersistenceBroken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.Error(w, "database down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	kv := kvstore.NewMemoryStore()
	c := NewChecker(kv, docstore.NewEngine(kv), remote.NewClient(srv.URL), time.Second)

	report := c.CheckRemote(context.Background())
	assert.False(t, report.Connected)
	assert.True(t, strings.Contains(report.Message, "backend error"), report.Message)
}

func TestCheck_LocalWins(t *testing.T) {
	c, _ := newLocalOnlyChecker(t)

	status := c.Check(context.Background())
	assert.True(t, status.Local.Connected)
	assert.False(t, status.Remote.Connected)
	assert.Equal(t, BackendLocal, status.ActiveBackend)
}

func TestCheck_RemoteFallback(t *testing.T) {
	kv := &brokenStore{}
	c := &Checker{
		kv:            kv,
		engine:        docstore.NewEngine(kv),
		remote:        &stubRemote{docs: []map[string]any{{"id": "1"}}},
		remoteTimeout: time.Second,
	}

	status := c.Check(context.Background())
	assert.False(t, status.Local.Connected)
	assert.True(t, status.Remote.Connected)
	assert.Equal(t, BackendRemote, status.ActiveBackend)
}

func TestCheck_BothDownYieldsNone(t *testing.T) {
	kv := &brokenStore{}
	c := &Checker{
		kv:            kv,
		engine:        docstore.NewEngine(kv),
		remote:        &stubRemote{pingErr: context.DeadlineExceeded},
		remoteTimeout: 50 * time.Millisecond,
	}

	status := c.Check(context.Background())
	assert.False(t, status.Local.Connected)
	assert.False(t, status.Remote.Connected)
	assert.Equal(t, BackendNone, status.ActiveBackend)
}
