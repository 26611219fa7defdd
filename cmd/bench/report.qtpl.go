// Code style generated by qtc from a report.qtpl template; hand-authored
// here in the same shape (see cmd/codegen/templates for the templating
// convention this module otherwise follows) so a `go:generate qtc`
// pass produces an equivalent file once a real .qtpl source exists.

package main

import (
	"os"

	qt "github.com/valyala/quicktemplate"
)

// StreamReport writes the benchmark grid as a static HTML table to w.
func StreamReport(w *qt.Writer, rows []benchRow) {
	w.N().S("<!doctype html><html><head><meta charset=\"utf-8\">")
	w.N().S("<title>reactor bench report</title></head><body>")
	w.N().S("<table border=\"1\" cellspacing=\"0\" cellpadding=\"4\">")
	w.N().S("<tr><th>width</th><th>depth</th><th>avg</th><th>min</th><th>p75</th><th>p99</th><th>max</th></tr>")
	for _, r := range rows {
		w.N().S("<tr><td>")
		w.N().D(r.Width)
		w.N().S("</td><td>")
		w.N().D(r.Depth)
		w.N().S("</td><td>")
		w.N().S(r.Avg.String())
		w.N().S("</td><td>")
		w.N().S(r.Min.String())
		w.N().S("</td><td>")
		w.N().S(r.P75.String())
		w.N().S("</td><td>")
		w.N().S(r.P99.String())
		w.N().S("</td><td>")
		w.N().S(r.Max.String())
		w.N().S("</td></tr>")
	}
	w.N().S("</table></body></html>")
}

// WriteReport is StreamReport adapted to an *os.File, matching the
// Stream*/Write*/plain-named triad quicktemplate's generator emits.
func WriteReport(w *os.File, rows []benchRow) error {
	qw := qt.AcquireWriter(w)
	StreamReport(qw, rows)
	qt.ReleaseWriter(qw)
	return nil
}

// Report renders the report to a string, for callers that don't want to
// own a file handle directly.
func Report(rows []benchRow) string {
	bb := qt.AcquireByteBuffer()
	defer qt.ReleaseByteBuffer(bb)
	w := qt.AcquireWriter(bb)
	StreamReport(w, rows)
	qt.ReleaseWriter(w)
	return string(bb.B)
}

func writeHTMLReport(path string, rows []benchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteReport(f, rows)
}
