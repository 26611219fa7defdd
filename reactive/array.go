package reactive

import (
	"strconv"

	"github.com/signalcore/reactor/reactor"
)

// Array wraps a plain []any as a reactive source: the Go stand-in for
// spec §4.6's array proxy base handler, with the array-specific patches
// spec §4.6 calls out (search methods matching raw or wrapped identity,
// length-mutating methods triggering ArrayLengthKey exactly once).
type Array struct {
	rt  *reactor.Runtime
	raw []any
	f   Flavor

	deps map[reactor.Key]*reactor.Dep
}

func (a *Array) isTracked()     {}
func (a *Array) rawTarget() any { return a.raw }
func (a *Array) flavor() Flavor { return a.f }

func wrapArray(rt *reactor.Runtime, raw []any, f Flavor) *Array {
	if raw == nil {
		return nil
	}
	if r, ok := ToRaw(raw).([]any); ok {
		raw = r
	}
	id, ok := rawKeyOf(raw)
	if !ok {
		return nil
	}
	if existing, ok := arrayTargets.get(id, f); ok {
		return existing.(*Array)
	}
	a := &Array{rt: rt, raw: raw, f: f, deps: make(map[reactor.Key]*reactor.Dep)}
	arrayTargets.set(id, f, a)
	watchFinalizer(arrayTargets, id, a)
	return a
}

// ReactiveArray returns the deep reactive proxy for raw.
func ReactiveArray(rt *reactor.Runtime, raw []any) *Array { return wrapArray(rt, raw, FlavorReactive) }

// ReadonlyArray returns the readonly proxy for raw.
func ReadonlyArray(rt *reactor.Runtime, raw []any) *Array { return wrapArray(rt, raw, FlavorReadonly) }

// ShallowReactiveArray wraps raw without deep-wrapping elements or
// unwrapping refs.
func ShallowReactiveArray(rt *reactor.Runtime, raw []any) *Array {
	return wrapArray(rt, raw, FlavorShallowReactive)
}

// ShallowReadonlyArray combines the shallow and readonly flavors.
func ShallowReadonlyArray(rt *reactor.Runtime, raw []any) *Array {
	return wrapArray(rt, raw, FlavorShallowReadonly)
}

func (a *Array) dep(k reactor.Key) *reactor.Dep {
	d, ok := a.deps[k]
	if !ok {
		d = reactor.NewDep()
		a.deps[k] = d
	}
	return d
}

func (a *Array) indexDep(i int) *reactor.Dep { return a.dep(reactor.StringKey(strconv.Itoa(i))) }

func (a *Array) lengthDep() *reactor.Dep { return a.dep(reactor.ArrayLengthKey) }

// Len tracks ArrayLengthKey and returns the current length.
func (a *Array) Len() int {
	a.lengthDep().Track(a.rt)
	return len(a.raw)
}

// Get tracks index i and returns its value, unwrapped/wrapped exactly
// as Object.Get does. Out-of-range reads track the index anyway (a
// later Set at that index should wake this reader) and return nil.
func (a *Array) Get(i int) any {
	a.indexDep(i).Track(a.rt)
	if i < 0 || i >= len(a.raw) {
		return nil
	}
	v := a.raw[i]
	if !a.f.shallow() {
		if ref, ok := v.(reactor.AnyRef); ok {
			return ref.TrackRaw(a.rt)
		}
	}
	return a.wrapChild(v)
}

func (a *Array) wrapChild(v any) any {
	if a.f.shallow() {
		return v
	}
	switch child := v.(type) {
	case map[string]any:
		if a.f.readonly() {
			return ReadonlyObject(a.rt, child)
		}
		return ReactiveObject(a.rt, child)
	case []any:
		if a.f.readonly() {
			return ReadonlyArray(a.rt, child)
		}
		return ReactiveArray(a.rt, child)
	default:
		return v
	}
}

// Set assigns value at index i, growing the backing slice with nils if
// i is beyond the current length (an ADD, triggering ArrayLengthKey
// too), or replacing an in-bounds element (a SET, triggering only if
// the value actually changed). Readonly proxies no-op successfully.
func (a *Array) Set(i int, value any) bool {
	if a.f.readonly() {
		a.rt.Warn("reactive: write to a readonly array ignored")
		return true
	}
	if i < 0 {
		return false
	}

	if i < len(a.raw) {
		old := a.raw[i]
		if !a.f.shallow() {
			if ref, ok := old.(reactor.AnyRef); ok {
				if _, valueIsRef := value.(reactor.AnyRef); !valueIsRef {
					ref.SetRawValue(value)
					return true
				}
			}
		}
		if sameValueAny(old, value) {
			return true
		}
		a.raw[i] = value
		a.rt.Trigger(a.indexDep(i))
		return true
	}

	for len(a.raw) < i {
		a.raw = append(a.raw, nil)
	}
	a.raw = append(a.raw, value)
	a.rt.Trigger(a.indexDep(i), a.lengthDep())
	return true
}

// Push appends values, growing length and triggering ArrayLengthKey
// exactly once regardless of how many values were appended, per spec
// §4.6's length-mutating-method contract. Mutation runs with tracking
// suspended so any internal length probing does not create a spurious
// dependency on the calling subscriber.
func (a *Array) Push(values ...any) int {
	a.rt.Untrack(func() {
		a.raw = append(a.raw, values...)
	})
	if len(values) > 0 {
		a.rt.Trigger(a.lengthDep())
	}
	return len(a.raw)
}

// Pop removes and returns the last element, or nil if empty.
func (a *Array) Pop() any {
	var out any
	changed := false
	a.rt.Untrack(func() {
		if n := len(a.raw); n > 0 {
			out = a.raw[n-1]
			a.raw = a.raw[:n-1]
			changed = true
		}
	})
	if changed {
		a.rt.Trigger(a.lengthDep())
	}
	return out
}

// Shift removes and returns the first element, or nil if empty.
func (a *Array) Shift() any {
	var out any
	changed := false
	a.rt.Untrack(func() {
		if len(a.raw) > 0 {
			out = a.raw[0]
			a.raw = a.raw[1:]
			changed = true
		}
	})
	if changed {
		a.rt.Trigger(a.lengthDep())
	}
	return out
}

// Unshift prepends values, triggering ArrayLengthKey once.
func (a *Array) Unshift(values ...any) int {
	a.rt.Untrack(func() {
		a.raw = append(append([]any{}, values...), a.raw...)
	})
	if len(values) > 0 {
		a.rt.Trigger(a.lengthDep())
	}
	return len(a.raw)
}

// Splice removes count elements starting at start and inserts insert
// in their place, triggering ArrayLengthKey once when the length
// actually changes.
func (a *Array) Splice(start, count int, insert ...any) []any {
	if start < 0 {
		start = 0
	}
	if start > len(a.raw) {
		start = len(a.raw)
	}
	end := start + count
	if end > len(a.raw) {
		end = len(a.raw)
	}

	var removed []any
	before := len(a.raw)
	a.rt.Untrack(func() {
		removed = append([]any{}, a.raw[start:end]...)
		tail := append([]any{}, a.raw[end:]...)
		a.raw = append(a.raw[:start], append(append([]any{}, insert...), tail...)...)
	})
	if len(a.raw) != before {
		a.rt.Trigger(a.lengthDep())
	}
	return removed
}

// Includes reports whether target matches an element by raw identity or
// by the identity of its wrapped (proxy) form, per spec §4.6's
// search-method patch.
func (a *Array) Includes(target any) bool { return a.IndexOf(target) >= 0 }

// IndexOf returns the first index matching target by raw or wrapped
// identity, tracking every index up to and including the match (or the
// whole array, on a miss) — mirroring a linear scan's real dependency.
func (a *Array) IndexOf(target any) int {
	rawTarget := ToRaw(target)
	for i, v := range a.raw {
		a.indexDep(i).Track(a.rt)
		if sameValueAny(v, target) || sameValueAny(ToRaw(v), rawTarget) {
			return i
		}
	}
	return -1
}

// LastIndexOf is IndexOf scanning from the end.
func (a *Array) LastIndexOf(target any) int {
	rawTarget := ToRaw(target)
	for i := len(a.raw) - 1; i >= 0; i-- {
		a.indexDep(i).Track(a.rt)
		v := a.raw[i]
		if sameValueAny(v, target) || sameValueAny(ToRaw(v), rawTarget) {
			return i
		}
	}
	return -1
}
