// Command bench measures propagate/flush latency across a grid of
// dependency-chain widths and depths, grounded on cmd/benchmark/main.go's
// benchmarkAlien shape but retargeted at this module's reactor engine
// instead of comparing sibling signal implementations against each other.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/signalcore/reactor/reactor"
)

var (
	widths  = []int{1, 10, 100, 1_000}
	depths  = []int{1, 10, 100}
	iters   = flag.Int("iters", 100, "samples collected per (width, depth) cell")
	htmlOut = flag.String("html", "", "optional path to write an HTML report to")
)

func main() {
	flag.Parse()
	log.Printf("warming up %s cells", humanize.Comma(int64(len(widths)*len(depths))))

	rows := run(*iters)
	render(rows)

	if *htmlOut != "" {
		if err := writeHTMLReport(*htmlOut, rows); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", *htmlOut)
	}
}

// benchRow is one (width, depth) cell's latency distribution, kept
// separate from the table.Writer so the HTML report can reuse it.
type benchRow struct {
	Width, Depth int
	Avg, Min, P75, P99, Max time.Duration
}

// run drives one write through a width*depth grid of computed chains
// for each cell, timing src.SetValue and returning the per-cell stats.
func run(iters int) []benchRow {
	var rows []benchRow

	for _, w := range widths {
		for _, d := range depths {
			rt := reactor.NewRuntime(reactor.WithOnError(func(from reactor.Tracked, err error) {
				log.Panic(err)
			}))
			src := reactor.RefOn(rt, 1)

			for i := 0; i < w; i++ {
				var last any = src
				for j := 0; j < d; j++ {
					prev := last
					last = reactor.ComputedOn(rt, func(int) (int, error) {
						return readInt(prev) + 1, nil
					})
				}
				final := last
				rt.Effect(func() error {
					readInt(final)
					return nil
				})
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Value() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			rows = append(rows, benchRow{
				Width: w, Depth: d,
				Avg: calc.Time.Avg, Min: calc.Time.Min,
				P75: calc.Time.P75, P99: calc.Time.P99, Max: calc.Time.Max,
			})
		}
	}
	return rows
}

func readInt(x any) int {
	switch v := x.(type) {
	case *reactor.Ref[int]:
		return v.Value()
	case *reactor.Computed[int]:
		return v.Value()
	default:
		panic(fmt.Sprintf("reactor/bench: unexpected chain node type %T", x))
	}
}

func render(rows []benchRow) {
	tbl := table.NewWriter()
	tbl.SetTitle("reactor propagate/flush latency")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"width x depth", "avg", "min", "p75", "p99", "max"})
	for _, r := range rows {
		tbl.AppendRow(table.Row{
			fmt.Sprintf("%d x %d", r.Width, r.Depth),
			r.Avg, r.Min, r.P75, r.P99, r.Max,
		})
	}
	tbl.Render()
}
