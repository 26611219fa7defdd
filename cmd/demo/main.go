// Command demo walks through spec.md §8's six concrete scenarios
// against the reactor/reactive packages and prints a trace of each run,
// grounded on cmd/codegen/main.go's urfave/cli v3 command structure and
// cmd/benchmark_reactively/main.go's tablewriter/go-humanize reporting.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/signalcore/reactor/reactor"
	"github.com/signalcore/reactor/reactive"
)

const scenarioKey = "scenario"

func main() {
	cmd := &cli.Command{
		Name:  "demo",
		Usage: "walk through the reactor engine's concrete scenarios",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  scenarioKey,
				Usage: "scenario number to run (1-6), or 0 to run all",
				Value: 0,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// scenario is one trace-producing demonstration; it returns the rows a
// tablewriter trace should print.
type scenario struct {
	name string
	run  func() [][]string
}

var scenarios = []scenario{
	{"object property re-runs once per distinct write", scenarioObjectWrites},
	{"glitch-free computed chain under a batch", scenarioComputedChain},
	{"reactive Map.Keys ignores value-only changes", scenarioMapKeys},
	{"readonly write is a silent no-op", scenarioReadonlyWrite},
	{"scope.Stop silences all owned effects", scenarioScopeStop},
	{"writable computed's setter drives its source", scenarioWritableComputed},
}

func run(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	defer func() { log.Printf("demo finished in %v", time.Since(start)) }()

	which := cmd.Int(scenarioKey)
	for i, s := range scenarios {
		if which != 0 && which != i+1 {
			continue
		}
		fmt.Printf("\nscenario %d: %s\n", i+1, s.name)
		renderTrace(s.run())
	}
	return nil
}

func renderTrace(rows [][]string) {
	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"step", "observation"})
	tbl.AppendBulk(rows)
	tbl.Render()
}

func scenarioObjectWrites() [][]string {
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }))
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

	return [][]string{{"seen", fmt.Sprint(seen)}}
}

func scenarioComputedChain() [][]string {
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }))
	a := reactor.RefOn(rt, 1)
	b := reactor.RefOn(rt, 2)
	s := reactor.ComputedOn(rt, func(int) (int, error) { return a.Value() + b.Value(), nil })
	d := reactor.ComputedOn(rt, func(int) (int, error) { return s.Value() * 10, nil })

	var out []int
	rt.Effect(func() error {
		out = append(out, d.Value())
		return nil
	})

	_ = rt.Batch(func() {
		a.SetValue(2)
		b.SetValue(3)
	})

	return [][]string{
		{"initial run", fmt.Sprint(out[0])},
		{fmt.Sprintf("after batched write (%s applied)", humanize.Comma(2)), fmt.Sprint(out)},
	}
}

func scenarioMapKeys() [][]string {
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }))
	m := reactive.ReactiveMap(rt, make(map[string]int))

	var snapshots [][]string
	rt.Effect(func() error {
		snapshots = append(snapshots, m.Keys())
		return nil
	})
	m.Set("x", 1)
	m.Set("x", 1)
	m.Delete("y")

	rows := make([][]string, len(snapshots))
	for i, snap := range snapshots {
		rows[i] = []string{fmt.Sprintf("run %d", i+1), fmt.Sprint(snap)}
	}
	return rows
}

func scenarioReadonlyWrite() [][]string {
	var warned string
	rt := reactor.NewRuntime(
		reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }),
		reactor.WithDevWarnings(func(msg string) { warned = msg }),
	)
	ro := reactive.ReadonlyObject(rt, map[string]any{"v": 1})

	runs := 0
	rt.Effect(func() error {
		runs++
		ro.Get("v")
		return nil
	})
	ro.Set("v", 2)

	return [][]string{
		{"effect runs", fmt.Sprint(runs)},
		{"dev warning", warned},
	}
}

func scenarioScopeStop() [][]string {
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }))
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
	scope.Stop()
	r.SetValue(1)

	return [][]string{{"effect runs after stop", fmt.Sprint(runs)}}
}

func scenarioWritableComputed() [][]string {
	rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) { log.Panic(err) }))
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
	c.SetValue(5)

	return [][]string{
		{"n.Value() after write", fmt.Sprint(n.Value())},
		{"effect runs", fmt.Sprint(runs)},
	}
}
