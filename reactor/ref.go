package reactor

import "github.com/signalcore/reactor/reactor/internal/util"

// AnyRef is the type-erased face of Ref[T], implemented so that
// generic reactive containers (package reactive) can detect a ref
// stored as `any` and unwrap/assign through it without knowing T at
// compile time — the Go equivalent of spec §4.6's ref-unwrapping rule,
// grounded on alien/signals.go's WriteableSignal[T].
type AnyRef interface {
	IsShallowRef() bool
	RawValue() any
	SetRawValue(any) bool
	// TrackRaw tracks rt's active subscriber against this ref's own Dep
	// and returns the raw value, letting a reactive object's Get unwrap
	// a stored ref through the ref's own dependency rather than the
	// object's per-key one (spec §4.6's ref-unwrapping rule).
	TrackRaw(rt *Runtime) any
}

// Ref is a reactive cell: the smallest unit of mutable, trackable
// state. The payload is returned as stored: neither Value nor package
// reactive's ref unwrapping wraps an object/array payload in a reactive
// proxy, and the deep/shallow distinction is only reported through
// IsShallowRef.
type Ref[T any] struct {
	rt      *Runtime
	d       Dep
	value   T
	shallow bool
}

func (r *Ref[T]) isTracked() {}
func (r *Ref[T]) dep() *Dep  { return &r.d }

// RefOn constructs a deep ref on rt with the given initial value.
func RefOn[T any](rt *Runtime, initial T) *Ref[T] {
	return &Ref[T]{rt: rt, value: initial}
}

// ShallowRefOn constructs a shallow ref on rt. It differs from RefOn
// only in what IsShallowRef reports.
func ShallowRefOn[T any](rt *Runtime, initial T) *Ref[T] {
	return &Ref[T]{rt: rt, value: initial, shallow: true}
}

// NewRef is sugar for RefOn(Default(), initial).
func NewRef[T any](initial T) *Ref[T] { return RefOn(Default(), initial) }

// ShallowRef is sugar for ShallowRefOn(Default(), initial).
func ShallowRef[T any](initial T) *Ref[T] { return ShallowRefOn(Default(), initial) }

// Value reads the ref's current value, tracking the caller.
func (r *Ref[T]) Value() T {
	r.d.Track(r.rt)
	return r.value
}

// TrackRaw implements AnyRef.
func (r *Ref[T]) TrackRaw(rt *Runtime) any {
	r.d.Track(rt)
	return r.value
}

// SetValue writes v. A write that is SameValue-equal to the current
// value (spec §8's no-change-writes invariant) triggers nothing.
func (r *Ref[T]) SetValue(v T) {
	if refValuesEqual(r.value, v) {
		return
	}
	r.value = v
	r.rt.Trigger(&r.d)
}

// refValuesEqual compares two ref payloads. any(a) == any(b) panics
// when T's dynamic type is uncomparable (e.g. a slice stashed in a
// Ref[any]); the recover treats that case as "always changed", which
// is the safe default when identity can't be established structurally.
// float64 payloads go through util.SameValue (NaN equals NaN, +0 and -0
// differ).
func refValuesEqual[T any](a, b T) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	if fa, ok := any(a).(float64); ok {
		return util.SameValue(fa, any(b).(float64))
	}
	return any(a) == any(b)
}

func (r *Ref[T]) IsShallowRef() bool { return r.shallow }

func (r *Ref[T]) RawValue() any { return r.value }

func (r *Ref[T]) SetRawValue(v any) bool {
	tv, ok := v.(T)
	if !ok {
		var zero T
		if v == nil {
			tv = zero
		} else {
			return false
		}
	}
	r.SetValue(tv)
	return true
}
