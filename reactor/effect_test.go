package reactor_test

import (
	"testing"

	"github.com/signalcore/reactor/reactor"
	"github.com/stretchr/testify/assert"
)

func freshRuntime(t *testing.T) *reactor.Runtime {
	return reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) {
		t.Fatalf("unexpected effect error: %v", err)
	}))
}

// should re-run once per distinct write and skip same-value writes
func TestEffectReRunsOnDistinctWrites(t *testing.T) {
	rt := freshRuntime(t)
	r := reactor.RefOn(rt, 0)
	var seen []int

	rt.Effect(func() error {
		seen = append(seen, r.Value())
		return nil
	})

	r.SetValue(1)
	r.SetValue(1)
	r.SetValue(2)

	assert.Equal(t, []int{0, 1, 2}, seen)
}

// should not run again after Stop
func TestEffectStopPreventsFurtherRuns(t *testing.T) {
	rt := freshRuntime(t)
	r := reactor.RefOn(rt, 0)
	runs := 0

	e := rt.Effect(func() error {
		runs++
		r.Value()
		return nil
	})

	assert.Equal(t, 1, runs)
	r.SetValue(1)
	assert.Equal(t, 2, runs)

	e.Stop()
	r.SetValue(2)
	assert.Equal(t, 2, runs)
}

// stopping an effect twice is safe
func TestEffectStopIsIdempotent(t *testing.T) {
	rt := freshRuntime(t)
	e := rt.Effect(func() error { return nil })
	e.Stop()
	e.Stop()
}

// should propagate through a computed chain and coalesce writes inside a batch
func TestGlitchFreeComputedChain(t *testing.T) {
	rt := freshRuntime(t)
	a := reactor.RefOn(rt, 1)
	b := reactor.RefOn(rt, 2)
	s := reactor.ComputedOn(rt, func(int) (int, error) { return a.Value() + b.Value(), nil })
	d := reactor.ComputedOn(rt, func(int) (int, error) { return s.Value() * 10, nil })

	var out []int
	rt.Effect(func() error {
		out = append(out, d.Value())
		return nil
	})

	rt.StartBatch()
	a.SetValue(2)
	b.SetValue(3)
	err := rt.EndBatch()

	assert.NoError(t, err)
	assert.Equal(t, []int{30, 50}, out)
}

// a computed's cached value survives being read multiple times without writes
func TestComputedCachesBetweenReads(t *testing.T) {
	rt := freshRuntime(t)
	a := reactor.RefOn(rt, 1)
	evals := 0
	c := reactor.ComputedOn(rt, func(int) (int, error) {
		evals++
		return a.Value() * 2, nil
	})

	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 1, evals)
}

// a writable computed's setter can drive the underlying ref, and a
// dependent effect re-runs exactly once
func TestWritableComputedSetterDrivesSource(t *testing.T) {
	rt := freshRuntime(t)
	n := reactor.RefOn(rt, 1)
	c := reactor.WritableComputedOn(rt,
		func(int) (int, error) { return n.Value(), nil },
		func(v int) { n.SetValue(v) },
	)

	runs := 0
	rt.Effect(func() error {
		c.Value()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	c.SetValue(5)
	assert.Equal(t, 5, n.Value())
	assert.Equal(t, 2, runs)
}

// a scope stop cascades to owned effects and they never run again
func TestScopeStopCascadesToOwnedEffects(t *testing.T) {
	rt := freshRuntime(t)
	r := reactor.RefOn(rt, 0)
	runs := 0

	scope := rt.NewEffectScope(false)
	scope.Run(func() {
		rt.Effect(func() error {
			runs++
			r.Value()
			return nil
		})
	})

	assert.Equal(t, 1, runs)
	r.SetValue(1)
	assert.Equal(t, 2, runs)

	scope.Stop()
	r.SetValue(2)
	assert.Equal(t, 2, runs)
}

// stopping a parent scope stops descendant scopes and runs cleanups exactly once
func TestScopeCascadeStopsDescendantsAndRunsCleanupsOnce(t *testing.T) {
	rt := freshRuntime(t)
	parent := rt.NewEffectScope(false)
	var child *reactor.EffectScope
	cleanups := 0

	parent.Run(func() {
		child = rt.NewEffectScope(false)
		child.Cleanup(func() { cleanups++ })
	})
	parent.Cleanup(func() { cleanups++ })

	parent.Stop()
	assert.False(t, child.Active())
	assert.Equal(t, 2, cleanups)

	// idempotent
	parent.Stop()
	child.Stop()
	assert.Equal(t, 2, cleanups)
}

// pausing an effect suppresses dispatch until resumed, at which point
// a pending dirty effect runs immediately
func TestEffectPauseAndResume(t *testing.T) {
	rt := freshRuntime(t)
	r := reactor.RefOn(rt, 0)
	runs := 0

	e := rt.Effect(func() error {
		runs++
		r.Value()
		return nil
	})
	assert.Equal(t, 1, runs)

	e.Pause()
	r.SetValue(1)
	assert.Equal(t, 1, runs, "paused effect should not dispatch")

	e.Resume()
	assert.Equal(t, 2, runs, "resuming a dirty effect runs it immediately")
}

// an inner effect created during an outer effect's run is torn down
// and recreated on each outer re-run, not accumulated
func TestNestedEffectRecreatedOnOuterRerun(t *testing.T) {
	rt := freshRuntime(t)
	cond := reactor.RefOn(rt, true)
	inner := reactor.RefOn(rt, 0)
	innerRuns := 0

	rt.Effect(func() error {
		if cond.Value() {
			rt.Effect(func() error {
				innerRuns++
				inner.Value()
				return nil
			})
		}
		return nil
	})
	assert.Equal(t, 1, innerRuns)

	cond.SetValue(false)
	cond.SetValue(true)
	assert.Equal(t, 2, innerRuns)

	inner.SetValue(1)
	assert.Equal(t, 3, innerRuns, "only one live inner effect should exist")
}

// a getter's panic is reported through OnError instead of propagating,
// and the computed's tracking state is left usable afterward
func TestComputedGetterPanicIsRecoveredAndReported(t *testing.T) {
	var reported error
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) {
		reported = err
	}))
	a := reactor.RefOn(rt, 1)
	boom := reactor.RefOn(rt, false)
	c := reactor.ComputedOn(rt, func(int) (int, error) {
		if boom.Value() {
			panic("kaboom")
		}
		return a.Value() * 2, nil
	})

	assert.Equal(t, 2, c.Value())

	boom.SetValue(true)
	assert.NotPanics(t, func() { c.Value() })
	assert.Error(t, reported)
	assert.Equal(t, 2, c.Value(), "a failed refresh keeps the last good cached value")

	boom.SetValue(false)
	a.SetValue(5)
	assert.Equal(t, 10, c.Value(), "the computed keeps refreshing normally after a recovered panic")
}

// Untrack suspends dependency registration for the duration of fn
func TestUntrackSuspendsTracking(t *testing.T) {
	rt := freshRuntime(t)
	src := reactor.RefOn(rt, 0)
	runs := 0

	rt.Effect(func() error {
		runs++
		rt.Untrack(func() {
			src.Value()
		})
		return nil
	})

	assert.Equal(t, 1, runs)
	src.SetValue(1)
	assert.Equal(t, 1, runs, "untracked read should not create a dependency")
}
