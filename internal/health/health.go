// Package health answers "is persistence available right now, and through
// which backend?" without ever raising: every failure mode is folded into a
// negative report. The two probes touch independent resources and run
// concurrently in Check.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/docstore"
	"github.com/avetrovs/vitrine/internal/kvstore"
	"github.com/avetrovs/vitrine/internal/remote"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Backend identifies a persistence path.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
	BackendNone   Backend = "none"
)

// Report is the verdict for a single backend.
type Report struct {
	Connected bool    `json:"connected"`
	Backend   Backend `json:"backend"`
	Message   string  `json:"message"`
}

// Status combines both verdicts and the derived active backend: local when
// the local store works, otherwise remote when it works, otherwise none.
// Callers seeing BackendNone must degrade gracefully, not crash.
type Status struct {
	Local         Report  `json:"local"`
	Remote        Report  `json:"remote"`
	ActiveBackend Backend `json:"activeBackend"`
}

// remoteProbe is the slice of the remote client the checker needs.
type remoteProbe interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, collection string) ([]map[string]any, error)
}

var _ remoteProbe = (*remote.Client)(nil)

// Checker probes the local key–value store and the remote content API.
type Checker struct {
	kv            kvstore.Store
	engine        *docstore.Engine
	remote        remoteProbe
	remoteTimeout time.Duration
}

// NewChecker builds a Checker. remoteTimeout bounds every remote probe.
func NewChecker(kv kvstore.Store, engine *docstore.Engine, rc *remote.Client, remoteTimeout time.Duration) *Checker {
	return &Checker{kv: kv, engine: engine, remote: rc, remoteTimeout: remoteTimeout}
}

// CheckLocal verifies the local store with a write-then-delete probe and, on
// success, counts documents across the content collections for diagnostics.
// It never returns an error; all failures produce a negative report.
func (c *Checker) CheckLocal(ctx context.Context) Report {
	probeKey := "health:probe:" + uuid.NewString()

	if err := c.kv.Set(ctx, probeKey, []byte("ok")); err != nil {
		return Report{Backend: BackendLocal, Message: fmt.Sprintf("local store write failed: %v", err)}
	}
	if err := c.kv.Delete(ctx, probeKey); err != nil {
		return Report{Backend: BackendLocal, Message: fmt.Sprintf("local store delete failed: %v", err)}
	}

	total := 0
	for _, name := range catalog.Names() {
		n, err := c.engine.Count(ctx, name)
		if err != nil {
			return Report{Backend: BackendLocal, Message: fmt.Sprintf("local store read failed: %v", err)}
		}
		total += n
	}

	return Report{
		Connected: true,
		Backend:   BackendLocal,
		Message:   fmt.Sprintf("local store ok, %d documents across %d collections", total, len(catalog.Collections)),
	}
}

// CheckRemote probes the remote API under the configured timeout: first a
// liveness request, then one substantive read to confirm persistence works
// end to end. Failures are classified into timeout, network-unreachable and
// remote application error, each with a distinct message. It never returns
// an error and never outlives the timeout.
func (c *Checker) CheckRemote(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()

	if err := c.remote.Ping(ctx); err != nil {
		return c.remoteFailure(err)
	}

	docs, err := c.remote.List(ctx, "services")
	if err != nil {
		return c.remoteFailure(err)
	}

	return Report{
		Connected: true,
		Backend:   BackendRemote,
		Message:   fmt.Sprintf("remote store ok (%d services)", len(docs)),
	}
}

func (c *Checker) remoteFailure(err error) Report {
	kind := remote.ClassifyError(err)
	var msg string
	switch {
	case errors.Is(kind, common.ErrTimeout):
		msg = fmt.Sprintf("remote did not answer within %s", c.remoteTimeout)
	case errors.Is(kind, common.ErrNetworkUnreachable):
		msg = fmt.Sprintf("remote unreachable: %v", err)
	default:
		msg = fmt.Sprintf("remote backend error: %v", err)
	}
	return Report{Backend: BackendRemote, Message: msg}
}

// Check runs both probes concurrently and derives the active backend.
func (c *Checker) Check(ctx context.Context) Status {
	var status Status

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status.Local = c.CheckLocal(ctx)
		return nil
	})
	g.Go(func() error {
		status.Remote = c.CheckRemote(ctx)
		return nil
	})
	_ = g.Wait()

	switch {
	case status.Local.Connected:
		status.ActiveBackend = BackendLocal
	case status.Remote.Connected:
		status.ActiveBackend = BackendRemote
	default:
		status.ActiveBackend = BackendNone
	}
	return status
}
