package pipeline

import (
	"sort"
	"time"

	"github.com/RyanBlaney/sonido-extract/features"
)

// Report summarises a batch run.
type Report struct {
	Mode       features.Mode
	Total      int // files discovered
	Succeeded  int
	Failed     int
	NotStarted int // skipped because the run was cancelled
	Outcomes   []Outcome
	Elapsed    time.Duration
}

func (r *Report) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

func (r *Report) finish(start time.Time) {
	r.NotStarted = r.Total - len(r.Outcomes)
	r.Elapsed = time.Since(start)
	sort.Slice(r.Outcomes, func(i, j int) bool { return r.Outcomes[i].Path < r.Outcomes[j].Path })
}

// Failures returns the failed outcomes in path order.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// AllFailed reports whether at least one file ran and none succeeded.
func (r *Report) AllFailed() bool {
	return r.Failed > 0 && r.Succeeded == 0
}
