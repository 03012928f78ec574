// Package cli implements the interactive admin console: a REPL over the
// local document store with connectivity tracking against the remote API.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/avetrovs/vitrine/internal/client/config"
	"github.com/avetrovs/vitrine/internal/client/services"
	"github.com/avetrovs/vitrine/internal/docstore"
	"github.com/avetrovs/vitrine/internal/health"
	"github.com/avetrovs/vitrine/internal/kvstore"
	"github.com/avetrovs/vitrine/internal/remote"
	"github.com/avetrovs/vitrine/internal/session"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config   *config.Config
	kv       kvstore.Store
	sessions *session.Service
	content  *services.ContentService
	checker  *health.Checker
	remote   *remote.Client
	account  *session.Account
	reader   *bufio.Reader

	// mode is read by the REPL and written by the status watcher goroutine.
	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	kv, err := kvstore.OpenSQLite(ctx, c.LocalDBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	engine := docstore.NewEngine(kv)
	rc := remote.NewClient(c.ServerEndpointAddr)

	return &App{
		config:   c,
		kv:       kv,
		sessions: session.NewService(engine, kv, []byte(c.SecretKey), c.TokenValidity),
		content:  services.NewContentService(engine),
		checker:  health.NewChecker(kv, engine, rc, c.RemoteTimeout),
		remote:   rc,
		mode:     ModeOffline,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.account != nil {
		s = a.account.Email + " "
	}
	if mode := a.currentMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

// restoreSession picks up the persisted session, if any, so a restart does
// not force a fresh login.
func (a *App) restoreSession(ctx context.Context) {
	account, ok, err := a.sessions.CurrentSession(ctx)
	if err != nil {
		log.Printf("could not restore session: %s", err.Error())
		return
	}
	if ok {
		a.account = account
		log.Printf("Welcome back, %s", account.Email)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.kv.Close(); err != nil {
			log.Printf("error closing database: %s", err.Error())
		}
	}()

	log.Println("Welcome to Vitrine CLI (type 'help' for commands)")

	a.restoreSession(ctx)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// StartOnlineStatusWatcher periodically probes the remote API and flips the
// Mode between online and offline. It returns when ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), a.config.RemoteTimeout)
			err := a.remote.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.currentMode() == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
