package reactor

// EffectScope is a node in a tree of scopes used for cascading
// teardown: stopping a scope stops every effect it owns and every
// descendant scope, and runs every registered cleanup exactly once.
type EffectScope struct {
	rt *Runtime

	active bool
	paused bool

	onDepth int
	prevOn  []*EffectScope

	parent      *EffectScope
	indexInParent int
	children    []*EffectScope

	ownedEffects  []*ReactiveEffect
	ownedCleanups []func()
}

func (s *EffectScope) isTracked() {}

// NewEffectScope creates a scope. Unless detached is true, it is
// attached as a child of rt's currently active scope (if any), so
// stopping that parent later cascades into this one.
func (rt *Runtime) NewEffectScope(detached bool) *EffectScope {
	s := &EffectScope{rt: rt, active: true, indexInParent: -1}
	if !detached && rt.activeScope != nil {
		s.parent = rt.activeScope
		s.indexInParent = len(rt.activeScope.children)
		rt.activeScope.children = append(rt.activeScope.children, s)
	}
	return s
}

// NewEffectScope is sugar for Default().NewEffectScope.
func NewEffectScope(detached bool) *EffectScope {
	return Default().NewEffectScope(detached)
}

// Run executes fn with s installed as the current scope, so that any
// Effect or nested EffectScope created inside fn is adopted by s. The
// previously active scope is restored afterward even if fn panics. A
// stopped scope runs fn without adopting anything.
func (s *EffectScope) Run(fn func()) {
	if !s.active {
		fn()
		return
	}
	prev := s.rt.activeScope
	s.rt.activeScope = s
	defer func() { s.rt.activeScope = prev }()
	fn()
}

// On makes s the current scope without a closure, so subsequently
// created effects are adopted by it until a matching Off. Calls
// nest; Off must be called once per On. On is a no-op on a stopped
// scope.
func (s *EffectScope) On() {
	if !s.active {
		return
	}
	s.prevOn = append(s.prevOn, s.rt.activeScope)
	s.rt.activeScope = s
	s.onDepth++
}

// Off reverses the most recent On.
func (s *EffectScope) Off() {
	if s.onDepth == 0 {
		return
	}
	s.onDepth--
	last := len(s.prevOn) - 1
	s.rt.activeScope = s.prevOn[last]
	s.prevOn = s.prevOn[:last]
}

func (s *EffectScope) adopt(e *ReactiveEffect) {
	s.ownedEffects = append(s.ownedEffects, e)
}

func (s *EffectScope) disown(e *ReactiveEffect) {
	for i, o := range s.ownedEffects {
		if o == e {
			s.ownedEffects = append(s.ownedEffects[:i], s.ownedEffects[i+1:]...)
			return
		}
	}
}

// Cleanup registers fn to run once, in registration order, when s is
// stopped.
func (s *EffectScope) Cleanup(fn func()) {
	s.ownedCleanups = append(s.ownedCleanups, fn)
}

// Stop deactivates the scope: every owned effect is stopped (in
// registration order), every cleanup runs (in registration order),
// every child scope is stopped recursively, and s is unlinked from
// its parent in O(1) via the recorded index and a swap-pop. Idempotent.
func (s *EffectScope) Stop() { s.stop(false) }

func (s *EffectScope) stop(fromParent bool) {
	if !s.active {
		return
	}
	s.active = false

	for _, e := range s.ownedEffects {
		e.stop(true)
	}
	s.ownedEffects = nil

	for _, cleanup := range s.ownedCleanups {
		cleanup()
	}
	s.ownedCleanups = nil

	for _, child := range s.children {
		child.stop(true)
	}
	s.children = nil

	if !fromParent && s.parent != nil {
		s.parent.removeChild(s.indexInParent)
		s.parent = nil
	}
}

func (s *EffectScope) removeChild(index int) {
	last := len(s.children) - 1
	if index < 0 || index > last {
		return
	}
	s.children[index] = s.children[last]
	s.children[index].indexInParent = index
	s.children = s.children[:last]
}

// Pause cascades PAUSED to every owned effect and child scope.
func (s *EffectScope) Pause() {
	if s.paused {
		return
	}
	s.paused = true
	for _, e := range s.ownedEffects {
		e.Pause()
	}
	for _, c := range s.children {
		c.Pause()
	}
}

// Resume cascades resumption to every owned effect and child scope.
func (s *EffectScope) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	for _, e := range s.ownedEffects {
		e.Resume()
	}
	for _, c := range s.children {
		c.Resume()
	}
}

// Active reports whether the scope has not yet been stopped.
func (s *EffectScope) Active() bool { return s.active }

// RunScope is Run generalized to a function that returns a value —
// methods cannot introduce new type parameters in Go, so this is a
// free function rather than a method, matching spec §4.5's "run(fn)
// ... returns the function result".
func RunScope[T any](s *EffectScope, fn func() T) T {
	var result T
	s.Run(func() { result = fn() })
	return result
}
