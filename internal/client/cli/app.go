package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/client/cache"
	"github.com/mgallardo/freightdeck/internal/client/config"
	"github.com/mgallardo/freightdeck/internal/client/drawer"
	"github.com/mgallardo/freightdeck/internal/client/repositories/snapshots"
	"github.com/mgallardo/freightdeck/internal/client/schema"
	"github.com/mgallardo/freightdeck/internal/client/storage"
	"github.com/mgallardo/freightdeck/internal/logging"
)

// sessionToken is a mutable api.TokenSource, so the user can swap the bearer
// credential mid-session via the token command.
type sessionToken struct {
	mu    sync.RWMutex
	value string
}

func (s *sessionToken) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = token
}

func (s *sessionToken) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

// App owns the console's long-lived state: the entity cache, the overlay
// stack, and the terminal reader.
type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	tokens    *sessionToken
	api       api.Client
	snapshots snapshots.Repository
	store     *cache.Store
	stack     *drawer.Manager
	registry  *schema.Registry
	reader    *bufio.Reader
}

// NewApp wires the console from configuration: local database, snapshot
// repository, API client, and the cache seeded from the stored snapshot.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewZap(logging.Config{Level: c.LogLevel, Format: "console"})

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing local database: %w", err)
	}

	repo := snapshots.NewSQLiteRepository(db)

	tokens := &sessionToken{}
	tokens.Set(c.AuthToken)

	apiClient := api.NewHTTPClient(c.ServerBaseURL, tokens)

	return &App{
		config:    c,
		log:       log,
		db:        db,
		tokens:    tokens,
		api:       apiClient,
		snapshots: repo,
		store:     cache.New(ctx, apiClient, repo, log),
		stack:     drawer.NewManager(),
		registry:  schema.Default(),
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// getStatus renders the prompt suffix: the local cache version, or a syncing
// marker while a load is in flight.
func (a *App) getStatus() string {
	if a.store.IsLoading() {
		return "(syncing)"
	}
	if v, ok := a.store.Version(); ok {
		return fmt.Sprintf("(v%d)", v)
	}
	return "(empty)"
}

// Run performs the initial cache load and starts the REPL. It blocks until
// the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	if err := a.store.Load(ctx, false); err != nil {
		a.log.Warn(ctx, "initial load failed, serving cached data", "error", err)
		printlnFn("Could not reach the server; showing cached data. Use 'refresh' to retry.")
	}
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// Close releases the local database handle.
func (a *App) Close() error {
	return a.db.Close()
}
