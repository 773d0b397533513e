package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chatterm/internal/client/api"
	"chatterm/internal/client/config"
	"chatterm/internal/client/credstore"
	"chatterm/internal/client/history"
	"chatterm/internal/client/services"
	"chatterm/internal/client/session"
	"chatterm/internal/logging"
)

// App wires the client together: credential store plus watcher, session
// machine, auth service, chat history database, and the REPL on top.
type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *credstore.Store
	watcher *credstore.Watcher
	session *session.Manager
	auth    services.AuthService
	client  api.Client
	repo    history.Repository
	db      *sql.DB
	reader  *bufio.Reader
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewDefault(cfg.LogLevel)

	durable, err := credstore.NewFileBackend(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return nil, fmt.Errorf("failed to open state dir: %w", err)
	}
	store := credstore.New(durable, credstore.NewMemoryBackend(), logger)

	watcher, err := credstore.NewWatcher(store, durable, logger)
	if err != nil {
		return nil, err
	}

	// The transport carries no hard timeout of its own: auth calls are
	// bounded per request (see reqCtx), the chat session applies its own
	// bound and discards late replies.
	client := api.NewHTTPClient(cfg.ServerBaseURL, func() string {
		if cred := store.Read(); cred != nil {
			return cred.Token
		}
		return ""
	}, 0)

	db, err := history.InitDatabase(ctx, filepath.Join(cfg.DataDir, "chat.db"))
	if err != nil {
		logger.Error(ctx, "error initializing chat database", "error", err)
		return nil, err
	}

	return &App{
		config:  cfg,
		logger:  logger,
		store:   store,
		watcher: watcher,
		session: session.NewManager(store, logger),
		auth:    services.NewAuthService(client, store, logger),
		client:  client,
		repo:    history.NewSQLiteRepository(db),
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the watcher, derives the initial session state, revalidates a
// restored token, and hands control to the REPL until EOF or exit.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.watcher.Start(ctx); err != nil {
		a.logger.Warn(ctx, "cross-process sync disabled", "error", err)
	}

	if a.session.Refresh() == session.StateAuthenticated {
		rctx, cancel := a.reqCtx(ctx)
		err := a.auth.Validate(rctx)
		cancel()
		if err == nil {
			printlnFn("Welcome back!")
		} else {
			printlnFn("Your session has expired. Please log in again.")
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// Close releases everything Run acquired. Safe to call once.
func (a *App) Close() {
	a.session.Close()
	_ = a.watcher.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// status renders the prompt suffix: the account email when logged in.
func (a *App) status() string {
	if !a.isLoggedIn() {
		return "anonymous"
	}
	if cred := a.store.Read(); cred != nil && cred.User != nil && cred.User.Email != "" {
		return cred.User.Email
	}
	return "signed in"
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

// reqCtx bounds one auth/profile round trip.
func (a *App) reqCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// currentUserID returns the cached user's id for chat log scoping, or ""
// for anonymous chat.
func (a *App) currentUserID() string {
	if cred := a.store.Read(); cred != nil && cred.User != nil {
		return string(cred.User.ID)
	}
	return ""
}
