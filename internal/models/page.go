package models

import "time"

// Subpage is a same-host link discovered on a seed page
type Subpage struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Operation names one of the per-seed sub-operations of a batch
type Operation string

const (
	OpHeadlines Operation = "headlines"
	OpFavicon   Operation = "favicon"
	OpSubpages  Operation = "subpages"
)

// Operations lists the sub-operations in the order the batch runs them
var Operations = []Operation{OpHeadlines, OpFavicon, OpSubpages}

// Outcome is the result of one sub-operation for one seed URL
type Outcome struct {
	URL       string    `json:"url"`
	Operation Operation `json:"operation"`
	Path      string    `json:"path,omitempty"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Err       error     `json:"-"`
}

// OK reports whether the sub-operation succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// BatchReport collects every outcome of a batch run
type BatchReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	URLs       int       `json:"urls"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Failed returns the outcomes that carry an error
func (r *BatchReport) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Succeeded returns the number of successful outcomes
func (r *BatchReport) Succeeded() int {
	return len(r.Outcomes) - len(r.Failed())
}
