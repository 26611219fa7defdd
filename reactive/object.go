package reactive

import "github.com/signalcore/reactor/reactor"

// Object wraps a plain map[string]any as a reactive source, the
// Go stand-in for spec §4.6's object proxy base handler. Each key gets
// its own lazily-created Dep, keyed by reactor.Key so property names
// and the reserved reactor.IterateKey sentinel share one table without
// risk of collision (keys.go's xxhash-tagged sentinel construction is
// exactly what guarantees that). OwnKeys tracks/triggers IterateKey,
// per the Track/Trigger table in spec §4.6.
type Object struct {
	rt  *reactor.Runtime
	raw map[string]any
	f   Flavor

	deps map[reactor.Key]*reactor.Dep
}

func (o *Object) isTracked()     {}
func (o *Object) rawTarget() any { return o.raw }
func (o *Object) flavor() Flavor { return o.f }

func wrapObject(rt *reactor.Runtime, raw map[string]any, f Flavor) *Object {
	if raw == nil {
		return nil
	}
	if r, ok := ToRaw(raw).(map[string]any); ok {
		raw = r
	}
	id, ok := rawKeyOf(raw)
	if !ok {
		return nil
	}
	if existing, ok := objectTargets.get(id, f); ok {
		return existing.(*Object)
	}
	o := &Object{rt: rt, raw: raw, f: f, deps: make(map[reactor.Key]*reactor.Dep)}
	objectTargets.set(id, f, o)
	watchFinalizer(objectTargets, id, o)
	return o
}

// ReactiveObject returns (creating if necessary) the deep reactive proxy
// for raw on rt.
func ReactiveObject(rt *reactor.Runtime, raw map[string]any) *Object {
	return wrapObject(rt, raw, FlavorReactive)
}

// ReadonlyObject returns the readonly proxy for raw. It wraps the same
// underlying map as ReactiveObject(rt, raw) and is a distinct value from
// that reactive proxy (spec §6 flavor-separation).
func ReadonlyObject(rt *reactor.Runtime, raw map[string]any) *Object {
	return wrapObject(rt, raw, FlavorReadonly)
}

// ShallowReactiveObject wraps raw without deep-wrapping nested
// object/array values returned from Get, and without ref-unwrapping.
func ShallowReactiveObject(rt *reactor.Runtime, raw map[string]any) *Object {
	return wrapObject(rt, raw, FlavorShallowReactive)
}

// ShallowReadonlyObject combines the shallow and readonly flavors.
func ShallowReadonlyObject(rt *reactor.Runtime, raw map[string]any) *Object {
	return wrapObject(rt, raw, FlavorShallowReadonly)
}

func (o *Object) dep(k reactor.Key) *reactor.Dep {
	d, ok := o.deps[k]
	if !ok {
		d = reactor.NewDep()
		o.deps[k] = d
	}
	return d
}

func (o *Object) keyDep(key string) *reactor.Dep { return o.dep(reactor.StringKey(key)) }

// Get tracks key, then returns the stored value — unwrapped through a
// stored ref's own Dep, and lazily deep-wrapped in the proxy's flavor —
// per spec §4.6's get contract.
func (o *Object) Get(key string) any {
	o.keyDep(key).Track(o.rt)
	v, present := o.raw[key]
	if !present {
		return nil
	}

	if !o.f.shallow() {
		if ref, ok := v.(reactor.AnyRef); ok {
			return ref.TrackRaw(o.rt)
		}
	}
	return o.wrapChild(v)
}

func (o *Object) wrapChild(v any) any {
	if o.f.shallow() {
		return v
	}
	switch child := v.(type) {
	case map[string]any:
		if o.f.readonly() {
			return ReadonlyObject(o.rt, child)
		}
		return ReactiveObject(o.rt, child)
	case []any:
		if o.f.readonly() {
			return ReadonlyArray(o.rt, child)
		}
		return ReactiveArray(o.rt, child)
	default:
		return v
	}
}

// Has tracks key and reports whether it is present in the raw map.
func (o *Object) Has(key string) bool {
	o.keyDep(key).Track(o.rt)
	_, ok := o.raw[key]
	return ok
}

// OwnKeys tracks IterateKey and returns every key currently present.
// Like a plain Go map, iteration order is unspecified.
func (o *Object) OwnKeys() []string {
	o.dep(reactor.IterateKey).Track(o.rt)
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	return keys
}

// Set assigns value at key. Readonly proxies no-op (after a dev
// warning) and report success per spec §4.6/§7's proxy-invariant rule.
// A value equal to the current one by SameValue triggers nothing. When
// the existing slot holds a ref and the new value is not itself a ref
// (and the proxy is not shallow), the write goes through the ref's own
// SetValue instead of replacing the slot, matching spec's ref-unwrapping
// write rule.
func (o *Object) Set(key string, value any) bool {
	if o.f.readonly() {
		o.rt.Warn("reactive: write to a readonly object ignored")
		return true
	}

	old, existed := o.raw[key]

	if !o.f.shallow() {
		if ref, ok := old.(reactor.AnyRef); ok {
			if _, valueIsRef := value.(reactor.AnyRef); !valueIsRef {
				ref.SetRawValue(value)
				return true
			}
		}
	}

	if existed && sameValueAny(old, value) {
		return true
	}

	o.raw[key] = value

	deps := []*reactor.Dep{o.keyDep(key)}
	if !existed {
		deps = append(deps, o.dep(reactor.IterateKey))
	}
	o.rt.Trigger(deps...)
	return true
}

// Delete removes key, triggering only if it was actually present.
// Readonly proxies no-op and report true (proxy-invariant success).
func (o *Object) Delete(key string) bool {
	if o.f.readonly() {
		o.rt.Warn("reactive: delete on a readonly object ignored")
		return true
	}
	if _, existed := o.raw[key]; !existed {
		return false
	}
	k := reactor.StringKey(key)
	dep := o.dep(k)
	delete(o.raw, key)
	delete(o.deps, k)
	o.rt.Trigger(dep, o.dep(reactor.IterateKey))
	return true
}
