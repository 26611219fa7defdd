package reactive

import "github.com/signalcore/reactor/reactor"

// Map is a generic reactive stand-in for spec §4.7's Map collection
// handler: Go map values refuse the kind of "this"-substitution a JS
// Proxy relies on, so rather than intercepting the raw map's own
// methods this type re-implements them against the raw map directly,
// exactly as spec §4.7 describes ("a proxy intercepts get and returns
// re-implemented methods bound to the raw target").
//
// Note: the target-map cache (see identity.go) is keyed only by raw
// identity, not by (K, V); requesting two different type instantiations
// of Map for the same underlying map value is a programmer error and
// will panic on the resulting failed type assertion.
type Map[K comparable, V any] struct {
	rt  *reactor.Runtime
	raw map[K]V
	f   Flavor

	entryDeps     map[K]*reactor.Dep
	iterateDep    reactor.Dep
	keyIterateDep reactor.Dep
}

func (m *Map[K, V]) isTracked()     {}
func (m *Map[K, V]) rawTarget() any { return m.raw }
func (m *Map[K, V]) flavor() Flavor { return m.f }

func wrapMap[K comparable, V any](rt *reactor.Runtime, raw map[K]V, f Flavor) *Map[K, V] {
	if raw == nil {
		return nil
	}
	if r, ok := ToRaw(raw).(map[K]V); ok {
		raw = r
	}
	id, ok := rawKeyOf(raw)
	if !ok {
		return nil
	}
	if existing, ok := mapTargets.get(id, f); ok {
		return existing.(*Map[K, V])
	}
	m := &Map[K, V]{rt: rt, raw: raw, f: f, entryDeps: make(map[K]*reactor.Dep)}
	mapTargets.set(id, f, m)
	watchFinalizer(mapTargets, id, m)
	return m
}

// ReactiveMap returns the deep reactive proxy for raw.
func ReactiveMap[K comparable, V any](rt *reactor.Runtime, raw map[K]V) *Map[K, V] {
	return wrapMap(rt, raw, FlavorReactive)
}

// ReadonlyMap returns the readonly proxy for raw. It wraps the plain map
// and keeps its own deps, separate from those of ReactiveMap(rt, raw): a
// read through the readonly proxy does not subscribe to writes made
// through the reactive one.
func ReadonlyMap[K comparable, V any](rt *reactor.Runtime, raw map[K]V) *Map[K, V] {
	return wrapMap(rt, raw, FlavorReadonly)
}

// ShallowReactiveMap wraps raw without unwrapping nested refs or deep
// wrapping nested object/array values on read.
func ShallowReactiveMap[K comparable, V any](rt *reactor.Runtime, raw map[K]V) *Map[K, V] {
	return wrapMap(rt, raw, FlavorShallowReactive)
}

// ShallowReadonlyMap combines the shallow and readonly flavors.
func ShallowReadonlyMap[K comparable, V any](rt *reactor.Runtime, raw map[K]V) *Map[K, V] {
	return wrapMap(rt, raw, FlavorShallowReadonly)
}

func (m *Map[K, V]) entryDep(key K) *reactor.Dep {
	d, ok := m.entryDeps[key]
	if !ok {
		d = reactor.NewDep()
		m.entryDeps[key] = d
	}
	return d
}

// normalizeKey raw-normalizes a key that is itself a reactive proxy
// (spec §4.7's "raw key normalization for reactive-keyed lookups"), so
// m.Get(reactiveObj) finds the same entry as m.Get(toRaw(reactiveObj)).
func normalizeKey[K comparable](key K) K {
	if p, ok := any(key).(proxy); ok {
		if rk, ok := ToRaw(p).(K); ok {
			return rk
		}
	}
	return key
}

func (m *Map[K, V]) wrapValue(v V) any {
	if m.f.shallow() {
		return v
	}
	switch child := any(v).(type) {
	case map[string]any:
		if m.f.readonly() {
			return ReadonlyObject(m.rt, child)
		}
		return ReactiveObject(m.rt, child)
	case []any:
		if m.f.readonly() {
			return ReadonlyArray(m.rt, child)
		}
		return ReactiveArray(m.rt, child)
	default:
		return v
	}
}

// Get tracks key (and its raw-normalized form, if different) and
// returns the wrapped value and whether it was present.
func (m *Map[K, V]) Get(key K) (any, bool) {
	raw := normalizeKey(key)
	m.entryDep(key).Track(m.rt)
	if raw != key {
		m.entryDep(raw).Track(m.rt)
	}
	v, ok := m.raw[raw]
	if !ok {
		var zero any
		return zero, false
	}
	return m.wrapValue(v), true
}

// Has tracks key (and its raw form) and reports presence.
func (m *Map[K, V]) Has(key K) bool {
	raw := normalizeKey(key)
	m.entryDep(key).Track(m.rt)
	if raw != key {
		m.entryDep(raw).Track(m.rt)
	}
	_, ok := m.raw[raw]
	return ok
}

// Size tracks IterateKey and returns the raw entry count.
func (m *Map[K, V]) Size() int {
	m.iterateDep.Track(m.rt)
	return len(m.raw)
}

// ForEach tracks IterateKey and invokes cb with each wrapped value,
// raw key, and m itself, matching spec §4.7's forEach contract.
func (m *Map[K, V]) ForEach(cb func(value any, key K, source *Map[K, V])) {
	m.iterateDep.Track(m.rt)
	for k, v := range m.raw {
		cb(m.wrapValue(v), k, m)
	}
}

// Keys tracks MapKeyIterateKey specifically, so a write that only
// changes a value (not the key set) does not re-run a subscriber that
// only iterated keys.
func (m *Map[K, V]) Keys() []K {
	m.keyIterateDep.Track(m.rt)
	keys := make([]K, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	return keys
}

// Values tracks IterateKey and returns every wrapped value.
func (m *Map[K, V]) Values() []any {
	m.iterateDep.Track(m.rt)
	values := make([]any, 0, len(m.raw))
	for _, v := range m.raw {
		values = append(values, m.wrapValue(v))
	}
	return values
}

// MapEntry is one (key, wrapped value) pair yielded by Entries.
type MapEntry[K comparable] struct {
	Key   K
	Value any
}

// Entries tracks IterateKey and returns every (key, wrapped value) pair.
func (m *Map[K, V]) Entries() []MapEntry[K] {
	m.iterateDep.Track(m.rt)
	entries := make([]MapEntry[K], 0, len(m.raw))
	for k, v := range m.raw {
		entries = append(entries, MapEntry[K]{Key: k, Value: m.wrapValue(v)})
	}
	return entries
}

// Set assigns value at key (after unwrapping value to raw when it is a
// ref, unless shallow), triggering ADD for a new key or SET when the
// value changed by SameValue. Readonly proxies no-op successfully.
func (m *Map[K, V]) Set(key K, value V) bool {
	if m.f.readonly() {
		m.rt.Warn("reactive: write to a readonly map ignored")
		return true
	}
	raw := normalizeKey(key)

	if !m.f.shallow() {
		if ref, ok := any(value).(reactor.AnyRef); ok {
			if unwrapped, ok := ref.RawValue().(V); ok {
				value = unwrapped
			}
		}
	}

	old, existed := m.raw[raw]
	if existed && sameValueAny(old, value) {
		return true
	}

	m.raw[raw] = value

	if existed {
		m.rt.Trigger(m.entryDep(raw))
	} else {
		m.rt.Trigger(m.entryDep(raw), &m.iterateDep, &m.keyIterateDep)
	}
	return true
}

// Delete removes key, triggering DELETE only if it existed. Readonly
// proxies no-op and report false (the sentinel spec §4.7 assigns
// readonly delete).
func (m *Map[K, V]) Delete(key K) bool {
	if m.f.readonly() {
		m.rt.Warn("reactive: delete on a readonly map ignored")
		return false
	}
	raw := normalizeKey(key)
	if _, existed := m.raw[raw]; !existed {
		return false
	}
	dep := m.entryDep(raw)
	delete(m.raw, raw)
	delete(m.entryDeps, raw)
	m.rt.Trigger(dep, &m.iterateDep, &m.keyIterateDep)
	return true
}

// Clear empties the map, triggering CLEAR (via IterateKey and
// MapKeyIterateKey) only if it was non-empty. Readonly proxies no-op.
func (m *Map[K, V]) Clear() {
	if m.f.readonly() {
		m.rt.Warn("reactive: clear on a readonly map ignored")
		return
	}
	if len(m.raw) == 0 {
		return
	}
	for k := range m.raw {
		delete(m.raw, k)
	}
	m.entryDeps = make(map[K]*reactor.Dep)
	m.rt.Trigger(&m.iterateDep, &m.keyIterateDep)
}
