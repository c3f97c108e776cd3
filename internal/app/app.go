// Package app wires the editing engine to its collaborators: configuration
// with live reload, Lua handler scripts, the sqlite change store and
// logging. Library packages return errors; this package logs them.
package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dshills/blockstorm/internal/config"
	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/event"
	"github.com/dshills/blockstorm/internal/plugin/lua"
	"github.com/dshills/blockstorm/internal/store"
)

// DefaultDocID keys the change log when no document file is given.
const DefaultDocID = "default"

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults and
	// environment overrides.
	ConfigPath string

	// DocumentPath is the JSON document file to load and save.
	DocumentPath string

	// DocID keys the document in the change store. Defaults to the base
	// name of DocumentPath.
	DocID string

	// StorePath overrides the [store] path setting.
	StorePath string

	// LogLevel overrides the [log] level setting.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// ReadOnly opens the document in read-only mode.
	ReadOnly bool

	// Watch reloads ConfigPath when it changes.
	Watch bool
}

// Application owns an engine and its collaborators.
type Application struct {
	mu sync.Mutex

	opts   Options
	cfg    *config.Config
	logger *Logger

	engine     *engine.Engine
	scripts    *lua.Host
	store      *store.Store
	attachment *store.Attachment
	watcher    *config.Watcher
	commitSub  event.Subscription

	layoutOpts dnd.StackOptions
	initOrder  []string
	closed     bool
}

// New creates and starts an Application.
func New(ctx context.Context, opts Options) (*Application, error) {
	app := &Application{
		opts:       opts,
		layoutOpts: dnd.DefaultStackOptions(),
	}
	if app.opts.DocID == "" {
		app.opts.DocID = docIDFor(opts.DocumentPath)
	}
	if err := app.bootstrap(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func docIDFor(documentPath string) string {
	if documentPath == "" {
		return DefaultDocID
	}
	base := filepath.Base(documentPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Engine returns the editing engine.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Store returns the change store, or nil when persistence is off.
func (app *Application) Store() *store.Store {
	return app.store
}

// DocID returns the document's key in the change store.
func (app *Application) DocID() string {
	return app.opts.DocID
}

// Revision maps an engine revision to the document's revision in the change
// store, which keeps counting across sessions. Without a store the two are
// the same.
func (app *Application) Revision(engineRev uint64) uint64 {
	if app.attachment == nil {
		return engineRev
	}
	return app.attachment.Base() + engineRev
}

// Scripts returns the node types registered by handler scripts.
func (app *Application) Scripts() []string {
	if app.scripts == nil {
		return nil
	}
	return app.scripts.Types()
}

// ApplyConfig switches to cfg: drag thresholds and the log level take
// effect immediately. History size and scripts apply on the next start.
func (app *Application) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := app.engine.SetDragConfig(cfg.Drag.Resolver()); err != nil {
		return err
	}
	level := cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	app.logger.SetLevel(ParseLogLevel(level))

	app.mu.Lock()
	app.cfg = cfg
	app.mu.Unlock()
	return nil
}

// History returns the last n recorded changes of the document.
func (app *Application) History(ctx context.Context, n int) ([]store.Change, error) {
	if app.store == nil {
		return nil, ErrNoStore
	}
	return app.store.Tail(ctx, app.opts.DocID, n)
}

// Close stops the watcher, flushes the change log and releases every
// component in reverse start order.
func (app *Application) Close(ctx context.Context) error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	app.mu.Unlock()

	var errs []error
	for i := len(app.initOrder) - 1; i >= 0; i-- {
		if err := app.closeComponent(ctx, app.initOrder[i]); err != nil {
			errs = append(errs, &OperationError{Op: "close", Target: app.initOrder[i], Err: err})
		}
	}
	app.initOrder = nil
	return errors.Join(errs...)
}

func (app *Application) closeComponent(ctx context.Context, component string) error {
	switch component {
	case "watcher":
		return app.watcher.Close()
	case "attachment":
		return app.attachment.Detach(ctx)
	case "subscriptions":
		return app.engine.Unsubscribe(app.commitSub)
	case "scripts":
		return app.scripts.Close()
	case "engine":
		app.engine.Close()
	case "store":
		return app.store.Close()
	}
	return nil
}

// logCommit runs after every commit. It refreshes the stand-in layout and
// logs the change.
func (app *Application) logCommit(ev engine.ChangeEvent) {
	app.engine.SetLayout(dnd.StackLayout(app.engine.Document(), app.layoutOpts))
	app.logger.WithComponent("engine").WithFields(map[string]any{
		"revision":   ev.Revision,
		"operations": len(ev.Operations),
		"reason":     ev.Reason,
	}).Debug("committed %q", ev.Description)
}

// Layout returns the rectangles of the current document in the stacked
// stand-in rendering.
func (app *Application) Layout() dnd.Layout {
	return dnd.StackLayout(app.engine.Document(), app.layoutOpts)
}

const closeTimeout = 5 * time.Second
