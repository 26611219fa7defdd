package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/signalcore/reactor/reactor"
)

// Set is a generic reactive stand-in for spec §4.7's Set collection
// handler, backed by golang-set rather than a bare Go map so Add/
// Contains/Cardinality read the way pkg/flimsy's Signal[T].observers
// field already does in the teacher's codebase.
type Set[T comparable] struct {
	rt  *reactor.Runtime
	raw mapset.Set[T]
	f   Flavor

	entryDeps  map[T]*reactor.Dep
	iterateDep reactor.Dep
}

func (s *Set[T]) isTracked()     {}
func (s *Set[T]) rawTarget() any { return s.raw }
func (s *Set[T]) flavor() Flavor { return s.f }

func wrapSet[T comparable](rt *reactor.Runtime, raw mapset.Set[T], f Flavor) *Set[T] {
	if raw == nil {
		return nil
	}
	if r, ok := ToRaw(raw).(mapset.Set[T]); ok {
		raw = r
	}
	id, ok := rawKeyOf(raw)
	if !ok {
		return nil
	}
	if existing, ok := setTargets.get(id, f); ok {
		return existing.(*Set[T])
	}
	s := &Set[T]{rt: rt, raw: raw, f: f, entryDeps: make(map[T]*reactor.Dep)}
	setTargets.set(id, f, s)
	watchFinalizer(setTargets, id, s)
	return s
}

// ReactiveSet returns the deep reactive proxy for raw.
func ReactiveSet[T comparable](rt *reactor.Runtime, raw mapset.Set[T]) *Set[T] {
	return wrapSet(rt, raw, FlavorReactive)
}

// ReadonlySet returns the readonly proxy for raw.
func ReadonlySet[T comparable](rt *reactor.Runtime, raw mapset.Set[T]) *Set[T] {
	return wrapSet(rt, raw, FlavorReadonly)
}

// ShallowReactiveSet wraps raw without unwrapping refs or deep-wrapping
// elements on read.
func ShallowReactiveSet[T comparable](rt *reactor.Runtime, raw mapset.Set[T]) *Set[T] {
	return wrapSet(rt, raw, FlavorShallowReactive)
}

// ShallowReadonlySet combines the shallow and readonly flavors.
func ShallowReadonlySet[T comparable](rt *reactor.Runtime, raw mapset.Set[T]) *Set[T] {
	return wrapSet(rt, raw, FlavorShallowReadonly)
}

func (s *Set[T]) entryDep(item T) *reactor.Dep {
	d, ok := s.entryDeps[item]
	if !ok {
		d = reactor.NewDep()
		s.entryDeps[item] = d
	}
	return d
}

// Has tracks item's entry dep and reports membership.
func (s *Set[T]) Has(item T) bool {
	s.entryDep(item).Track(s.rt)
	return s.raw.Contains(item)
}

// Size tracks IterateKey and returns the raw cardinality.
func (s *Set[T]) Size() int {
	s.iterateDep.Track(s.rt)
	return s.raw.Cardinality()
}

// Values tracks IterateKey and returns every member.
func (s *Set[T]) Values() []T {
	s.iterateDep.Track(s.rt)
	return s.raw.ToSlice()
}

// ForEach tracks IterateKey and invokes cb with each member.
func (s *Set[T]) ForEach(cb func(item T)) {
	s.iterateDep.Track(s.rt)
	for _, item := range s.raw.ToSlice() {
		cb(item)
	}
}

// Add inserts item, triggering ADD only if it was not already present.
// Readonly proxies no-op and report false (the "this" sentinel spec
// §4.7 names collapses to a boolean here, since Go has no receiver to
// hand back).
func (s *Set[T]) Add(item T) bool {
	if s.f.readonly() {
		s.rt.Warn("reactive: add on a readonly set ignored")
		return false
	}
	if s.raw.Contains(item) {
		return true
	}
	s.raw.Add(item)
	s.rt.Trigger(s.entryDep(item), &s.iterateDep)
	return true
}

// Delete removes item, triggering DELETE only if it existed. Readonly
// proxies no-op and report false.
func (s *Set[T]) Delete(item T) bool {
	if s.f.readonly() {
		s.rt.Warn("reactive: delete on a readonly set ignored")
		return false
	}
	if !s.raw.Contains(item) {
		return false
	}
	dep := s.entryDep(item)
	s.raw.Remove(item)
	delete(s.entryDeps, item)
	s.rt.Trigger(dep, &s.iterateDep)
	return true
}

// Clear empties the set, triggering CLEAR (via IterateKey) only if it
// was non-empty. Readonly proxies no-op.
func (s *Set[T]) Clear() {
	if s.f.readonly() {
		s.rt.Warn("reactive: clear on a readonly set ignored")
		return
	}
	if s.raw.Cardinality() == 0 {
		return
	}
	s.raw.Clear()
	s.entryDeps = make(map[T]*reactor.Dep)
	s.rt.Trigger(&s.iterateDep)
}
