package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/blockstorm/internal/config"
	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/event"
	"github.com/dshills/blockstorm/internal/plugin/lua"
	"github.com/dshills/blockstorm/internal/store"
)

// bootstrap initializes all components in dependency order. On failure it
// releases the components already started.
func (app *Application) bootstrap(ctx context.Context) error {
	steps := []struct {
		name string
		init func(context.Context) error
	}{
		{"config", app.initConfig},
		{"store", app.initStore},
		{"engine", app.initEngine},
		{"scripts", app.initScripts},
		{"subscriptions", app.initSubscriptions},
		{"attachment", app.initAttachment},
		{"watcher", app.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(ctx); err != nil {
			cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			_ = app.Close(cctx)
			cancel()
			return &InitError{Component: step.name, Err: err}
		}
	}
	app.logger.Info("document %q ready at revision %d", app.opts.DocID, app.engine.Revision())
	return nil
}

// started records a component that Close must release.
func (app *Application) started(component string) {
	app.initOrder = append(app.initOrder, component)
}

func (app *Application) initConfig(_ context.Context) error {
	cfg := config.Default()
	if app.opts.ConfigPath != "" {
		loaded, err := config.Load(app.opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if app.opts.StorePath != "" {
		cfg.Store.Path = app.opts.StorePath
	}
	level := cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}

	lc := DefaultLoggerConfig()
	lc.Level = ParseLogLevel(level)
	if app.opts.LogOutput != nil {
		lc.Output = app.opts.LogOutput
	}
	app.logger = NewLogger(lc).WithField("doc", app.opts.DocID)
	app.cfg = cfg
	return nil
}

func (app *Application) initStore(ctx context.Context) error {
	if app.cfg.Store.Path == "" {
		return nil
	}
	p := app.cfg.Store.Path
	if app.opts.StorePath == "" {
		p = app.resolve(p)
	}
	s, err := store.Open(ctx, p)
	if err != nil {
		return err
	}
	app.store = s
	app.started("store")
	return nil
}

func (app *Application) initEngine(ctx context.Context) error {
	doc, err := app.loadDocument(ctx)
	if err != nil {
		return err
	}
	opts := []engine.Option{
		engine.WithDocument(doc),
		engine.WithMaxUndoEntries(app.cfg.History.MaxEntries),
		engine.WithDragConfig(app.cfg.Drag.Resolver()),
		engine.WithLayout(dnd.StackLayout(doc, app.layoutOpts)),
		engine.WithNotifyErrorHandler(func(err error) {
			app.logger.WithComponent("events").Error("subscriber failed: %v", err)
		}),
	}
	if app.opts.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	app.engine = engine.New(opts...)
	app.started("engine")
	return nil
}

// loadDocument prefers the change store when it has history for the
// document, then the document file, then an empty document.
func (app *Application) loadDocument(ctx context.Context) (*node.Document, error) {
	if app.store != nil {
		head, err := app.store.Head(ctx, app.opts.DocID)
		if err != nil {
			return nil, err
		}
		if head > 0 {
			doc, rev, err := app.store.Restore(ctx, app.opts.DocID)
			if err != nil {
				return nil, err
			}
			app.logger.WithComponent("store").Info("restored revision %d", rev)
			return doc, nil
		}
	}
	if app.opts.DocumentPath == "" {
		return node.NewDocument(), nil
	}
	data, err := os.ReadFile(app.opts.DocumentPath)
	if errors.Is(err, os.ErrNotExist) {
		return node.NewDocument(), nil
	}
	if err != nil {
		return nil, &OperationError{Op: "load", Target: app.opts.DocumentPath, Err: err}
	}
	doc, err := node.DecodeDocument(data)
	if err != nil {
		return nil, &OperationError{Op: "load", Target: app.opts.DocumentPath, Err: err}
	}
	return doc, nil
}

func (app *Application) initScripts(_ context.Context) error {
	if len(app.cfg.Handlers.Scripts) == 0 {
		return nil
	}
	log := app.logger.WithComponent("lua")
	host, err := lua.NewHost(app.engine.Handlers(), lua.WithLogFunc(func(msg string) {
		log.Info("%s", msg)
	}))
	if err != nil {
		return err
	}
	app.scripts = host
	app.started("scripts")
	for _, script := range app.cfg.Handlers.Scripts {
		if err := host.LoadFile(app.resolve(script)); err != nil {
			return err
		}
	}
	log.Debug("registered handlers for %v", host.Types())
	return nil
}

func (app *Application) initSubscriptions(_ context.Context) error {
	sub, err := app.engine.Subscribe(app.logCommit, event.WithPriority(event.PriorityLow))
	if err != nil {
		return err
	}
	app.commitSub = sub
	app.started("subscriptions")
	return nil
}

func (app *Application) initAttachment(ctx context.Context) error {
	if app.store == nil {
		return nil
	}
	log := app.logger.WithComponent("store")
	att, err := app.store.Attach(ctx, app.engine, app.opts.DocID, store.WithErrorHandler(func(err error) {
		log.Error("recording change: %v", err)
	}))
	if err != nil {
		return err
	}
	app.attachment = att
	app.started("attachment")
	return nil
}

func (app *Application) initWatcher(_ context.Context) error {
	if !app.opts.Watch || app.opts.ConfigPath == "" {
		return nil
	}
	log := app.logger.WithComponent("config")
	w, err := config.NewWatcher(app.opts.ConfigPath, func(cfg *config.Config) {
		if err := app.ApplyConfig(cfg); err != nil {
			log.Warn("ignoring reloaded config: %v", err)
			return
		}
		log.Info("reloaded %s", app.opts.ConfigPath)
	}, config.WithErrorHandler(func(err error) {
		log.Warn("config reload failed: %v", err)
	}))
	if err != nil {
		return fmt.Errorf("watching %s: %w", app.opts.ConfigPath, err)
	}
	app.watcher = w
	app.started("watcher")
	return nil
}

// resolve makes p relative to the configuration file's directory.
func (app *Application) resolve(p string) string {
	if filepath.IsAbs(p) || app.opts.ConfigPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(app.opts.ConfigPath), p)
}
