package reactive_test

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/signalcore/reactor/reactive"
	"github.com/stretchr/testify/assert"
)

// a reactive Map's Keys() re-runs only on key-set changes, per spec's
// third concrete scenario
func TestMapKeysIgnoresValueOnlyChanges(t *testing.T) {
	rt := freshRuntime(t)
	raw := make(map[string]int)
	m := reactive.ReactiveMap(rt, raw)

	var snapshots [][]string
	rt.Effect(func() error {
		snapshots = append(snapshots, m.Keys())
		return nil
	})

	m.Set("x", 1)
	m.Set("x", 1)
	m.Delete("y")

	assert.Len(t, snapshots, 2)
	assert.Empty(t, snapshots[0])
	assert.Equal(t, []string{"x"}, snapshots[1])
}

// Set assigning a genuinely new value to an existing key re-runs a
// subscriber reading that entry, but re-assigning the same value does
// not
func TestMapEntryTracksItsOwnValue(t *testing.T) {
	rt := freshRuntime(t)
	raw := map[string]int{"x": 1}
	m := reactive.ReactiveMap(rt, raw)

	runs := 0
	rt.Effect(func() error {
		runs++
		v, _ := m.Get("x")
		_ = v
		return nil
	})
	assert.Equal(t, 1, runs)

	m.Set("x", 1)
	assert.Equal(t, 1, runs)

	m.Set("x", 2)
	assert.Equal(t, 2, runs)
}

// Clear only triggers when the map was non-empty
func TestMapClearIsNoOpOnEmptyMap(t *testing.T) {
	rt := freshRuntime(t)
	raw := make(map[string]int)
	m := reactive.ReactiveMap(rt, raw)

	runs := 0
	rt.Effect(func() error {
		runs++
		m.Size()
		return nil
	})
	assert.Equal(t, 1, runs)

	m.Clear()
	assert.Equal(t, 1, runs, "clearing an already-empty map must not trigger")

	m.Set("a", 1)
	assert.Equal(t, 2, runs)
	m.Clear()
	assert.Equal(t, 3, runs)
}

// a reactive Set's Add/Delete/Has track and trigger per member
func TestSetMembershipTracking(t *testing.T) {
	rt := freshRuntime(t)
	raw := mapset.NewSet[string]()
	s := reactive.ReactiveSet(rt, raw)

	runs := 0
	rt.Effect(func() error {
		runs++
		s.Has("a")
		return nil
	})
	assert.Equal(t, 1, runs)

	s.Add("b")
	assert.Equal(t, 1, runs, "adding an unrelated member must not re-run a Has(\"a\") subscriber")

	s.Add("a")
	assert.Equal(t, 2, runs)

	s.Delete("a")
	assert.Equal(t, 3, runs)
}

// an array's index writes track/trigger per index, and length-mutating
// methods trigger the length dependency exactly once
func TestArrayIndexAndLengthTracking(t *testing.T) {
	rt := freshRuntime(t)
	raw := []any{1, 2, 3}
	arr := reactive.ReactiveArray(rt, raw)

	valueRuns, lengthRuns := 0, 0
	rt.Effect(func() error {
		valueRuns++
		arr.Get(0)
		return nil
	})
	rt.Effect(func() error {
		lengthRuns++
		arr.Len()
		return nil
	})
	assert.Equal(t, 1, valueRuns)
	assert.Equal(t, 1, lengthRuns)

	arr.Set(1, 99)
	assert.Equal(t, 1, valueRuns, "writing a different index must not re-run an index-0 subscriber")
	assert.Equal(t, 1, lengthRuns)

	arr.Push(4, 5)
	assert.Equal(t, 2, lengthRuns, "Push must trigger the length dependency exactly once regardless of arg count")

	assert.Equal(t, 2, arr.IndexOf(3))
	assert.Equal(t, -1, arr.IndexOf("missing"))
}

// readonly delete/add on a Map or Set is a no-op that reports the
// spec-mandated sentinel and does not mutate the raw target
func TestReadonlyCollectionMutatorsAreNoOps(t *testing.T) {
	rt := freshRuntime(t)
	rawMap := map[string]int{"a": 1}
	ro := reactive.ReadonlyMap(rt, rawMap)

	assert.False(t, ro.Delete("a"))
	assert.Equal(t, 1, rawMap["a"])

	rawSet := mapset.NewSet[string]()
	roSet := reactive.ReadonlySet(rt, rawSet)
	assert.False(t, roSet.Add("x"))
	assert.Equal(t, 0, rawSet.Cardinality())
}

// toRaw/isProxy round trip for collections mirrors the object behavior
func TestCollectionIdentityHelpers(t *testing.T) {
	rt := freshRuntime(t)
	rawMap := map[string]int{"a": 1}
	m := reactive.ReactiveMap(rt, rawMap)

	assert.True(t, reactive.IsProxy(m))
	assert.True(t, reactive.IsReactive(m))
	raw, ok := reactive.ToRaw(m).(map[string]int)
	assert.True(t, ok)
	assert.Equal(t, rawMap, raw)
}
