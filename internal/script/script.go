// Package script runs Lua sessions against a running storefront.
//
// A script drives the same event contract as the console. The global
// "larek" table provides:
//
//	larek.emit(name [, payload])  publish a view event
//	larek.exec(line)              run a console command
//	larek.on(pattern, fn)         call fn(name, payload) for matching events
//	larek.off(id)                 drop a handler registered with on
//	larek.wait(pattern [, ms])    oldest matching event since the last wait, blocking
//	                              until one arrives; nil on timeout
//	larek.flush()                 forget the events recorded so far
//	larek.pause()                 stop recording events
//	larek.resume()                record events again
//	larek.state()                 snapshot of the application state
//	larek.log(msg)                write to the application log
//
// Patterns starting with "^" are regular expressions, patterns containing
// "*" are globs and anything else is an exact event name.
//
// Events are recorded as they are published and handed to Lua handlers
// only from inside emit, exec, wait and flush, on the goroutine running the
// script.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/larek/internal/app"
	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/event/topic"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/state"
)

// DefaultWaitTimeout bounds larek.wait when the script gives no timeout.
const DefaultWaitTimeout = 5 * time.Second

// ErrClosed is returned when running a closed Runner.
var ErrClosed = errors.New("script runner closed")

// Host is the application a script drives.
type Host interface {
	Bus() event.Bus
	Do(ctx context.Context, t app.Task) error
	Exec(ctx context.Context, line string) error
	State() *state.AppState
	Stage() app.Stage
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used by larek.log.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithOutput redirects print. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

type record struct {
	name    topic.Topic
	data    any
	handled bool
}

// maxHistory bounds the events kept for larek.wait.
const maxHistory = 1024

type handler struct {
	id  int
	sel topic.Selector
	fn  *lua.LFunction
}

// Runner executes scripts. A Runner is not safe for concurrent use.
type Runner struct {
	host Host
	L    *lua.LState
	log  *logging.Logger
	out  io.Writer
	sub  event.Subscription
	ctx  context.Context

	mu      sync.Mutex
	pending []*record
	notify  chan struct{}

	handlers []handler
	nextID   int
	closed   bool
}

// New creates a Runner bound to host. Events published from now on are
// visible to larek.on and larek.wait.
func New(host Host, opts ...Option) (*Runner, error) {
	r := &Runner{
		host:   host,
		log:    logging.Default(),
		out:    os.Stdout,
		notify: make(chan struct{}, 1),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(r.L)
	lua.OpenTable(r.L)
	lua.OpenString(r.L)
	lua.OpenMath(r.L)
	r.register()

	sub, err := host.Bus().SubscribeAll(event.HandlerFunc(r.record))
	if err != nil {
		r.L.Close()
		return nil, fmt.Errorf("subscribe script runner: %w", err)
	}
	r.sub = sub
	return r, nil
}

func (r *Runner) register() {
	L := r.L
	L.SetGlobal("print", L.NewFunction(r.print))

	mod := L.NewTable()
	L.SetField(mod, "emit", L.NewFunction(r.emit))
	L.SetField(mod, "exec", L.NewFunction(r.exec))
	L.SetField(mod, "on", L.NewFunction(r.on))
	L.SetField(mod, "off", L.NewFunction(r.off))
	L.SetField(mod, "wait", L.NewFunction(r.wait))
	L.SetField(mod, "flush", L.NewFunction(r.flush))
	L.SetField(mod, "pause", L.NewFunction(r.pause))
	L.SetField(mod, "resume", L.NewFunction(r.resume))
	L.SetField(mod, "state", L.NewFunction(r.state))
	L.SetField(mod, "log", L.NewFunction(r.logMsg))
	L.SetGlobal("larek", mod)
}

// RunFile executes the script at path and returns when it finishes.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, func() error { return r.L.DoFile(path) })
}

// RunString executes Lua source.
func (r *Runner) RunString(ctx context.Context, code string) error {
	return r.run(ctx, func() error { return r.L.DoString(code) })
}

func (r *Runner) run(ctx context.Context, fn func() error) (err error) {
	if r.closed {
		return ErrClosed
	}
	r.ctx = ctx
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	return fn()
}

// Close drops the bus subscription and the Lua state.
func (r *Runner) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.host.Bus().Unsubscribe(r.sub)
	r.L.Close()
	return nil
}

// record runs on the event loop.
func (r *Runner) record(_ context.Context, evt event.Event) error {
	rec := &record{name: evt.Name, data: describe(evt.Payload)}
	r.mu.Lock()
	r.pending = append(r.pending, rec)
	if len(r.pending) > maxHistory {
		r.pending = r.pending[len(r.pending)-maxHistory:]
	}
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
	return nil
}

// nextUnhandled marks and returns the oldest record not yet given to the
// Lua handlers.
func (r *Runner) nextUnhandled() *record {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.pending {
		if !rec.handled {
			rec.handled = true
			return rec
		}
	}
	return nil
}

// consume removes and returns the oldest handled record matching sel,
// together with everything recorded before it.
func (r *Runner) consume(sel topic.Selector) *record {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.pending {
		if !rec.handled {
			return nil
		}
		if sel.Match(rec.name) {
			r.pending = r.pending[i+1:]
			return rec
		}
	}
	return nil
}

func (r *Runner) flushHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.pending[:0]
	for _, rec := range r.pending {
		if !rec.handled {
			kept = append(kept, rec)
		}
	}
	r.pending = kept
}

// dispatch hands one recorded event to the matching Lua handlers.
func (r *Runner) dispatch(L *lua.LState, rec *record) error {
	for _, h := range append([]handler(nil), r.handlers...) {
		if !h.sel.Match(rec.name) {
			continue
		}
		err := L.CallByParam(lua.P{Fn: h.fn, NRet: 0, Protect: true},
			lua.LString(rec.name), toLua(L, rec.data))
		if err != nil {
			return fmt.Errorf("handler for %s: %w", rec.name, err)
		}
	}
	return nil
}

// drain runs the Lua handlers for every event recorded so far.
func (r *Runner) drain(L *lua.LState) {
	for rec := r.nextUnhandled(); rec != nil; rec = r.nextUnhandled() {
		if err := r.dispatch(L, rec); err != nil {
			L.RaiseError("%v", err)
		}
	}
}

func fail(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

func selectorFor(pattern string) (topic.Selector, error) {
	switch {
	case strings.HasPrefix(pattern, "^"):
		return topic.Regexp(pattern)
	case strings.Contains(pattern, "*"):
		return topic.Glob(pattern), nil
	default:
		t := topic.Topic(pattern)
		if !t.IsValid() {
			return nil, fmt.Errorf("invalid event name %q", pattern)
		}
		return t, nil
	}
}

// payloadFor turns script data into the payload the subscribers of name
// expect. It runs on the event loop.
func (r *Runner) payloadFor(name topic.Topic, data any) (any, error) {
	switch {
	case name == state.TopicCardSelect || name == state.TopicPreviewOpen:
		if data == nil {
			return nil, nil
		}
		id, ok := productOf(data)
		if !ok {
			return nil, fmt.Errorf("%s: payload needs an id", name)
		}
		item, ok := r.host.State().GetItem(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", state.ErrItemNotFound, id)
		}
		return item, nil

	case state.OrderFieldChanged.Match(name), state.ContactsFieldChanged.Match(name):
		value := data
		if m, ok := data.(map[string]any); ok {
			value = m["value"]
		}
		return state.FieldChange{Field: name.Field(), Value: cast.ToString(value)}, nil
	}
	return data, nil
}

func (r *Runner) emit(L *lua.LState) int {
	name := topic.Topic(L.CheckString(1))
	data := toGo(L.Get(2))

	err := r.host.Do(r.ctx, func(ctx context.Context) error {
		payload, err := r.payloadFor(name, data)
		if err != nil {
			return err
		}
		return r.host.Bus().Publish(ctx, name, payload)
	})
	r.drain(L)
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (r *Runner) exec(L *lua.LState) int {
	err := r.host.Exec(r.ctx, L.CheckString(1))
	r.drain(L)
	if err != nil && !errors.Is(err, app.ErrQuit) {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (r *Runner) on(L *lua.LState) int {
	sel, err := selectorFor(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	fn := L.CheckFunction(2)

	r.nextID++
	r.handlers = append(r.handlers, handler{id: r.nextID, sel: sel, fn: fn})
	L.Push(lua.LNumber(r.nextID))
	return 1
}

func (r *Runner) off(L *lua.LState) int {
	id := L.CheckInt(1)
	for i, h := range r.handlers {
		if h.id == id {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			L.Push(lua.LTrue)
			return 1
		}
	}
	L.Push(lua.LFalse)
	return 1
}

func (r *Runner) wait(L *lua.LState) int {
	sel, err := selectorFor(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	timeout := DefaultWaitTimeout
	if L.GetTop() >= 2 {
		timeout = time.Duration(L.CheckInt(2)) * time.Millisecond
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		r.drain(L)
		if rec := r.consume(sel); rec != nil {
			evt := L.CreateTable(0, 2)
			evt.RawSetString("name", lua.LString(rec.name))
			evt.RawSetString("payload", toLua(L, rec.data))
			L.Push(evt)
			return 1
		}

		select {
		case <-r.notify:
		case <-deadline.C:
			L.Push(lua.LNil)
			return 1
		case <-r.ctx.Done():
			L.RaiseError("wait %s: %v", sel, r.ctx.Err())
			return 0
		}
	}
}

func (r *Runner) flush(L *lua.LState) int {
	r.drain(L)
	r.flushHistory()
	return 0
}

// pause stops the recording subscription. Events published meanwhile are
// never seen by handlers or wait.
func (r *Runner) pause(L *lua.LState) int {
	r.sub.Pause()
	return 0
}

func (r *Runner) resume(L *lua.LState) int {
	r.sub.Resume()
	return 0
}

func (r *Runner) state(L *lua.LState) int {
	var snap map[string]any
	err := r.host.Do(r.ctx, func(context.Context) error {
		st := r.host.State()
		catalog := make([]any, 0, len(st.Catalog()))
		for _, item := range st.Catalog() {
			catalog = append(catalog, describeItem(item))
		}
		snap = map[string]any{
			"stage":   r.host.Stage().String(),
			"count":   st.BasketCount(),
			"total":   st.BasketTotal().String(),
			"catalog": catalog,
			"order":   describeOrder(st.Order()),
			"errors":  describe(st.FormErrors()),
		}
		return nil
	})
	if err != nil {
		return fail(L, err)
	}
	L.Push(toLua(L, snap))
	return 1
}

func (r *Runner) logMsg(L *lua.LState) int {
	r.log.Info("%s", L.CheckString(1))
	return 0
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}
