package verification

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/muesli/termenv"
)

// Report collects the results of one Runner.Run.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any harness failed or was skipped.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status != StatusPass {
			return true
		}
	}
	return false
}

// WriteCSV writes one row per result under a header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"module", "name", "status", "duration_ms", "error"}); err != nil {
		return err
	}
	for _, res := range r.Results {
		msg := ""
		if res.Err != nil {
			msg = res.Err.Error()
		}
		row := []string{
			res.Module,
			res.Name,
			string(res.Status),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
			msg,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render writes a human summary, coloured for the given profile.
// Pass termenv.Ascii for plain text.
func (r *Report) Render(w io.Writer, p termenv.Profile) error {
	colors := map[Status]string{
		StatusPass:    "#4ade80",
		StatusFail:    "#f87171",
		StatusSkipped: "#facc15",
	}
	for _, res := range r.Results {
		tag := p.String(fmt.Sprintf("%-7s", res.Status)).Foreground(p.Color(colors[res.Status]))
		line := fmt.Sprintf("%s %s (%s)", tag, res.ID(), res.Duration.Round(time.Microsecond))
		if res.Err != nil {
			line += ": " + res.Err.Error()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped in %s",
		r.Count(StatusPass), r.Count(StatusFail), r.Count(StatusSkipped), r.Elapsed.Round(time.Millisecond))
	_, err := fmt.Fprintln(w, p.String(summary).Bold())
	return err
}
