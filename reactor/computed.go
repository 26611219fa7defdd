package reactor

import "github.com/signalcore/reactor/reactor/internal/util"

// ComputedGetter derives a value from other reactive sources.
// oldValue is the previously cached value (the zero value on the
// first run), letting a getter avoid rebuilding unchanged state. A
// non-nil error is reported through the owning Runtime's OnError
// callback instead of propagating, exactly like EffectFunc.
type ComputedGetter[T comparable] func(oldValue T) (T, error)

// ComputedSetter is invoked by Computed[T].SetValue on a writable
// computed; it is expected to write through to whatever sources the
// getter reads from.
type ComputedSetter[T comparable] func(newValue T)

// Computed is a lazily-evaluated, cached derivation. It is
// simultaneously a Subscriber of the sources its getter reads and a
// Dependency (through its own Dep) for anything that reads its value.
type Computed[T comparable] struct {
	subscriberBase

	rt     *Runtime
	ownDep Dep

	getter ComputedGetter[T]
	setter ComputedSetter[T]

	value T

	// lastGlobalVersion is the Runtime's globalVersion the last time
	// this computed's dirtiness was checked; it lets refresh short
	// circuit to a plain "still clean" return when nothing anywhere
	// has triggered since, without even walking the dep list.
	lastGlobalVersion uint64
}

func (c *Computed[T]) isTracked() {}
func (c *Computed[T]) dep() *Dep  { return &c.ownDep }

// ComputedOn constructs a read-only computed on rt. It starts Dirty
// and Active: the first read performs the initial run, and Active must
// be set from construction since a Computed has no "stop" concept of
// its own — propagate's liveness check would otherwise drop every
// upstream trigger aimed at it.
func ComputedOn[T comparable](rt *Runtime, getter ComputedGetter[T]) *Computed[T] {
	c := &Computed[T]{rt: rt, getter: getter}
	c.f = Dirty | Active
	c.ownDep.owner = c
	return c
}

// WritableComputedOn constructs a computed with a setter: writes go
// through to the setter, which is expected to mutate whatever sources
// the getter reads.
func WritableComputedOn[T comparable](rt *Runtime, getter ComputedGetter[T], setter ComputedSetter[T]) *Computed[T] {
	c := ComputedOn(rt, getter)
	c.setter = setter
	return c
}

// NewComputed is sugar for ComputedOn(Default(), getter).
func NewComputed[T comparable](getter ComputedGetter[T]) *Computed[T] {
	return ComputedOn(Default(), getter)
}

// WritableComputed is sugar for WritableComputedOn(Default(), ...).
func WritableComputed[T comparable](getter ComputedGetter[T], setter ComputedSetter[T]) *Computed[T] {
	return WritableComputedOn(Default(), getter, setter)
}

// Value reads the computed's current value, refreshing it first if
// necessary, and — if called from within another tracking context —
// registers the caller as a subscriber of this computed.
func (c *Computed[T]) Value() T {
	rt := c.rt
	var callerLink *Link
	if rt.activeSub != nil && rt.activeSub.flags()&Tracking != 0 {
		callerLink = rt.link(&c.ownDep, rt.activeSub)
	}

	c.refresh(rt)

	if callerLink != nil {
		callerLink.version = c.ownDep.version
	}
	return c.value
}

// SetValue invokes the writable computed's setter. On a read-only
// computed (constructed via ComputedOn/NewComputed) this is a no-op; the
// caller should route mutation through the underlying sources instead.
func (c *Computed[T]) SetValue(v T) {
	if c.setter == nil {
		c.rt.warn("reactor: write to a read-only computed ignored")
		return
	}
	c.setter(v)
}

// refresh implements spec §4.3's four-step algorithm: a global-version
// fast path, a Pending-driven fine-grained recheck, and otherwise a
// full tracking recompute compared against the cached value by
// SameValue-style equality.
func (c *Computed[T]) refresh(rt *Runtime) bool {
	flags := c.f
	if flags&Dirty == 0 && c.lastGlobalVersion == rt.globalVersion {
		return false
	}
	c.lastGlobalVersion = rt.globalVersion

	if flags&Dirty == 0 {
		if flags&Pending == 0 {
			return false
		}
		if !rt.checkDirty(c) {
			c.f &^= Pending
			return false
		}
	}

	return c.recompute(rt)
}

func (c *Computed[T]) recompute(rt *Runtime) bool {
	prevSub := rt.activeSub
	rt.activeSub = c
	rt.startTracking(c)
	c.f |= Running

	newValue, err := c.runGetter()

	c.f &^= Running
	rt.endTracking(c)
	rt.activeSub = prevSub
	c.f &^= (Dirty | Pending)

	rt.reportError(c, err)
	if err != nil {
		return false
	}

	changed := !util.SameValueComparable(c.value, newValue)
	c.value = newValue
	if changed {
		c.ownDep.version++
	}
	return changed
}

// runGetter invokes c's getter and recovers a panic into an error, the
// same protection runEffect's runGuarded gives an effect body. Without
// it a panicking getter would skip recompute's cleanup lines entirely,
// leaving rt.activeSub and c's Running/Tracking flags corrupted for
// the rest of the Runtime's life.
func (c *Computed[T]) runGetter() (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = panicError{r}
			}
			value = c.value
		}
	}()
	return c.getter(c.value)
}
