package lua

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockstorm/internal/engine/handler"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

// ModuleName is the global table scripts use to register handlers.
const ModuleName = "blockstorm"

// HostOption configures a Host.
type HostOption func(*Host)

// WithStateOptions passes options to the underlying State.
func WithStateOptions(opts ...StateOption) HostOption {
	return func(h *Host) {
		h.stateOpts = append(h.stateOpts, opts...)
	}
}

// WithLogFunc receives messages from blockstorm.log.
func WithLogFunc(fn func(msg string)) HostOption {
	return func(h *Host) {
		h.logFn = fn
	}
}

// Host runs handler scripts and installs their registrations into a
// handler registry.
type Host struct {
	state     *State
	bridge    *Bridge
	registry  *handler.Registry
	stateOpts []StateOption
	logFn     func(string)

	mu      sync.Mutex
	types   map[string]bool
	pending []registration
}

type registration struct {
	typ string
	fn  *lua.LFunction
}

// NewHost creates a host whose scripts register into reg.
func NewHost(reg *handler.Registry, opts ...HostOption) (*Host, error) {
	if reg == nil {
		return nil, fmt.Errorf("lua host: %w", handler.ErrNilHandler)
	}
	h := &Host{
		registry: reg,
		types:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.state = NewState(h.stateOpts...)
	h.bridge = NewBridge(h.state.L)
	h.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"register": h.luaRegister,
		"log":      h.luaLog,
	})
	return h, nil
}

// luaRegister implements blockstorm.register(type, fn). It runs inside a
// script load, with the state already locked.
func (h *Host) luaRegister(L *lua.LState) int {
	typ := L.CheckString(1)
	fn := L.CheckFunction(2)
	if typ == "" {
		L.ArgError(1, "empty node type")
		return 0
	}
	h.mu.Lock()
	h.pending = append(h.pending, registration{typ: typ, fn: fn})
	h.mu.Unlock()
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	if h.logFn != nil {
		h.logFn(msg)
	}
	return 0
}

// LoadFile runs a script file. Its registrations take effect only if the
// whole script succeeds.
func (h *Host) LoadFile(path string) error {
	return h.load(path, func() error { return h.state.DoFile(path) })
}

// LoadString runs a script from source.
func (h *Host) LoadString(name, code string) error {
	return h.load(name, func() error { return h.state.DoString(code) })
}

func (h *Host) load(name string, run func() error) error {
	h.mu.Lock()
	h.pending = nil
	h.mu.Unlock()

	err := run()

	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if err != nil {
		return fmt.Errorf("loading script %s: %w", name, err)
	}
	for _, r := range pending {
		sh := &scriptHandler{host: h, typ: r.typ, fn: r.fn}
		if err := h.registry.Register(r.typ, sh); err != nil {
			return fmt.Errorf("loading script %s: %w", name, err)
		}
		h.mu.Lock()
		h.types[r.typ] = true
		h.mu.Unlock()
	}
	return nil
}

// Types lists the node types registered by scripts.
func (h *Host) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.types))
	for t := range h.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Close unregisters every script handler and releases the interpreter.
func (h *Host) Close() error {
	h.mu.Lock()
	types := h.types
	h.types = make(map[string]bool)
	h.mu.Unlock()

	for t := range types {
		h.registry.Unregister(t)
	}
	return h.state.Close()
}

// scriptHandler adapts a registered Lua function to handler.Handler.
type scriptHandler struct {
	host *Host
	typ  string
	fn   *lua.LFunction
}

func (s *scriptHandler) Transform(ctx handler.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	var arg *lua.LTable
	err := s.host.state.locked(func(L *lua.LState) {
		arg = s.contextTable(L, ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	results, err := s.host.state.Call(s.fn, arg)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return tx, nil
	}

	switch r := results[0].(type) {
	case *lua.LNilType:
		return tx, nil
	case lua.LBool:
		if r {
			return tx, nil
		}
		msg := "no reason given"
		if len(results) > 1 {
			if str, ok := results[1].(lua.LString); ok {
				msg = string(str)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	case *lua.LTable:
		return s.applyResult(ctx, tx, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadResult, results[0].Type())
	}
}

func (s *scriptHandler) contextTable(L *lua.LState, ctx handler.Context, tx *transaction.Transaction) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ctx.Type))
	t.RawSetString("target", s.host.bridge.PathTable(ctx.Target))
	t.RawSetString("description", lua.LString(tx.Description))
	t.RawSetString("operations", lua.LNumber(len(tx.Operations)))

	nodes := L.NewTable()
	for _, op := range tx.Operations {
		ins, ok := op.(*operation.Insert)
		if !ok {
			continue
		}
		for _, n := range ins.Nodes {
			if n != nil {
				nodes.Append(s.host.bridge.NodeTable(n))
			}
		}
	}
	t.RawSetString("nodes", nodes)
	return t
}

func (s *scriptHandler) applyResult(ctx handler.Context, tx *transaction.Transaction, r *lua.LTable) (*transaction.Transaction, error) {
	out := tx
	if d, ok := r.RawGetString("defaults").(*lua.LTable); ok {
		var err error
		out, err = handler.Defaults(s.typ, s.host.bridge.ToAttributes(d)).Transform(ctx, out)
		if err != nil {
			return nil, err
		}
	} else if r.RawGetString("defaults") != lua.LNil {
		return nil, fmt.Errorf("%w: defaults must be a table", ErrBadResult)
	}

	switch d := r.RawGetString("description").(type) {
	case lua.LString:
		if out == tx {
			out = tx.Clone()
			out.ID = tx.ID
		}
		out.Description = string(d)
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("%w: description must be a string", ErrBadResult)
	}
	return out, nil
}
