package reactor

// Tracked is implemented by anything that can be named as the source
// of an error reported through OnError — effects, computeds, and
// scopes all satisfy it trivially.
type Tracked interface {
	isTracked()
}

// OnErrorFunc receives an error returned by a subscriber's function
// during a run. from identifies which subscriber raised it.
type OnErrorFunc func(from Tracked, err error)

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithOnError installs the callback invoked when an effect or computed
// function returns a non-nil error during a run.
func WithOnError(fn OnErrorFunc) Option {
	return func(rt *Runtime) { rt.onError = fn }
}

// WithDevWarnings enables the development-mode warnings spec §4.6/§7
// describe for writes to readonly proxies (emitted via the callback
// given here rather than unconditionally to stderr, so embedders
// choose where they land).
func WithDevWarnings(fn func(msg string)) Option {
	return func(rt *Runtime) { rt.devWarn = fn }
}

// Runtime owns every piece of otherwise-global mutable reactivity
// state: the active subscriber and scope, batch depth, the global
// version counter, and the batch's effect queue. Spec §9 asks that this
// state live in an explicit object rather than package singletons, so
// that multiple independent reactive graphs (e.g. one per logical
// thread) can coexist; a process that only ever needs one can use
// Default().
type Runtime struct {
	activeSub   Subscriber
	activeScope *EffectScope

	batchDepth int

	globalVersion uint64

	queuedEffects     *effectQueueNode
	queuedEffectsTail *effectQueueNode

	pauseStack []Subscriber

	onError OnErrorFunc
	devWarn func(msg string)
}

// NewRuntime constructs an independent reactivity graph.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide Runtime used by the package-level
// convenience constructors (NewRef, NewComputed, Effect, ...). Most programs
// only need this one.
func Default() *Runtime { return defaultRuntime }

func (rt *Runtime) reportError(from Tracked, err error) {
	if err == nil {
		return
	}
	if rt.onError != nil {
		rt.onError(from, err)
	}
}

func (rt *Runtime) warn(msg string) {
	if rt.devWarn != nil {
		rt.devWarn(msg)
	}
}

// Warn emits a development-mode warning through whatever callback
// WithDevWarnings installed (a no-op if none was). Exported so
// collaborators outside this package — notably package reactive's
// readonly write/delete no-ops — can surface spec §4.6/§7's
// dev-mode-warning requirement through the same channel.
func (rt *Runtime) Warn(msg string) { rt.warn(msg) }

// Untrack runs fn with dependency tracking suspended: reads performed
// inside fn do not link to whatever subscriber is currently active.
// Tracking (and the previously active subscriber) is restored even if
// fn panics.
func (rt *Runtime) Untrack(fn func()) {
	rt.pauseTracking()
	defer rt.resumeTracking()
	fn()
}

func (rt *Runtime) pauseTracking() {
	rt.pauseStack = append(rt.pauseStack, rt.activeSub)
	rt.activeSub = nil
}

func (rt *Runtime) resumeTracking() {
	last := len(rt.pauseStack) - 1
	rt.activeSub = rt.pauseStack[last]
	rt.pauseStack = rt.pauseStack[:last]
}

// Untrack is sugar for Default().Untrack.
func Untrack(fn func()) { Default().Untrack(fn) }
