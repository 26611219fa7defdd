package reactive_test

import (
	"testing"

	"github.com/signalcore/reactor/reactor"
	"github.com/signalcore/reactor/reactive"
	"github.com/stretchr/testify/assert"
)

func freshRuntime(t *testing.T) *reactor.Runtime {
	return reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) {
		t.Fatalf("unexpected effect error: %v", err)
	}))
}

// reading then writing a reactive object's property re-runs an effect
// once per distinct value, per spec's first concrete scenario
func TestObjectTracksPropertyWritesAndSkipsSameValue(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]any{"n": 0}
	r := reactive.ReactiveObject(rt, raw)

	var seen []any
	rt.Effect(func() error {
		seen = append(seen, r.Get("n"))
		return nil
	})

	r.Set("n", 1)
	r.Set("n", 1)
	r.Set("n", 2)

	assert.Equal(t, []any{0, 1, 2}, seen)
}

// toRaw(reactive(o)) recovers o, and reactive(o) is memoized per raw
func TestObjectIdentityAndMemoization(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]any{"a": 1}

	r1 := reactive.ReactiveObject(rt, raw)
	r2 := reactive.ReactiveObject(rt, raw)
	assert.Same(t, r1, r2)
	assert.Equal(t, raw, reactive.ToRaw(r1))
}

// readonly(reactive(o)) is a distinct proxy from reactive(o), sharing
// the same raw target
func TestObjectFlavorSeparation(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]any{"a": 1}

	r := reactive.ReactiveObject(rt, raw)
	ro := reactive.ReadonlyObject(rt, raw)

	assert.NotEqual(t, r, ro)
	assert.True(t, reactive.IsReactive(r))
	assert.True(t, reactive.IsReadonly(ro))
	assert.False(t, reactive.IsReactive(ro))
	assert.Equal(t, reactive.ToRaw(r), reactive.ToRaw(ro))
}

// a write to a readonly proxy is a silent no-op that still reports
// proxy-protocol success, and does not re-run a dependent effect
func TestReadonlyWriteIsSilentNoOp(t *testing.T) {
	raw := map[string]any{"v": 1}
	var warned string
	rt := reactor.NewRuntime(
		reactor.WithOnError(func(from reactor.Tracked, err error) { t.Fatalf("unexpected error: %v", err) }),
		reactor.WithDevWarnings(func(msg string) { warned = msg }),
	)
	ro := reactive.ReadonlyObject(rt, raw)

	runs := 0
	rt.Effect(func() error {
		runs++
		ro.Get("v")
		return nil
	})
	assert.Equal(t, 1, runs)

	ok := ro.Set("v", 2)
	assert.True(t, ok)
	assert.Equal(t, 1, runs, "readonly write must not re-run a dependent effect")
	assert.NotEmpty(t, warned)
	assert.Equal(t, 1, raw["v"], "readonly write must not mutate the raw target")
}

// OwnKeys tracks IterateKey, so adding or removing a key re-runs a
// subscriber that only enumerated keys, but reassigning an existing
// key's value does not
func TestOwnKeysTracksStructuralChangesOnly(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]any{"a": 1}
	obj := reactive.ReactiveObject(rt, raw)

	runs := 0
	rt.Effect(func() error {
		runs++
		obj.OwnKeys()
		return nil
	})
	assert.Equal(t, 1, runs)

	obj.Set("a", 2)
	assert.Equal(t, 1, runs, "changing an existing key's value must not re-run a key-enumeration effect")

	obj.Set("b", 3)
	assert.Equal(t, 2, runs)

	obj.Delete("a")
	assert.Equal(t, 3, runs)
}

// a stored ref is transparently unwrapped on get, and a write to a
// different non-ref value goes through the ref's own Dep rather than
// replacing the slot
func TestObjectRefUnwrapping(t *testing.T) {
	rt := freshRuntime(t)
	n := reactor.RefOn(rt, 1)
	raw := map[string]any{"n": n}
	obj := reactive.ReactiveObject(rt, raw)

	assert.Equal(t, 1, obj.Get("n"))

	runs := 0
	rt.Effect(func() error {
		runs++
		obj.Get("n")
		return nil
	})
	assert.Equal(t, 1, runs)

	obj.Set("n", 5)
	assert.Equal(t, 5, n.Value())
	assert.Equal(t, 2, runs)
	assert.Same(t, n, raw["n"], "the slot must still hold the ref, not the unwrapped value")
}

// nested plain maps are lazily wrapped as reactive objects on read
func TestObjectDeepWrapsNestedMaps(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]any{"child": map[string]any{"n": 1}}
	obj := reactive.ReactiveObject(rt, raw)

	child, ok := obj.Get("child").(*reactive.Object)
	assert.True(t, ok)

	runs := 0
	rt.Effect(func() error {
		runs++
		child.Get("n")
		return nil
	})
	assert.Equal(t, 1, runs)

	child.Set("n", 2)
	assert.Equal(t, 2, runs)
}

// a shallow reactive object does not unwrap refs or deep-wrap nested
// maps/arrays on read
func TestShallowObjectDoesNotUnwrapOrDeepWrap(t *testing.T) {
	rt := freshRuntime(t)
	n := reactor.RefOn(rt, 1)
	raw := map[string]any{"n": n, "child": map[string]any{"v": 1}}
	obj := reactive.ShallowReactiveObject(rt, raw)

	_, isRef := obj.Get("n").(*reactor.Ref[int])
	assert.True(t, isRef)

	_, isObject := obj.Get("child").(*reactive.Object)
	assert.False(t, isObject)
}
