package event

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind partitions a flat payload into the three artifact families.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindEvents     Kind = "events"
	KindComments   Kind = "comments"
)

// Record is a single time-coded event as it arrives from the upstream
// store. Start and end are pointers so a missing value is distinguishable
// from zero; pass-through renderers (JSON, CSV) accept records with gaps,
// time-math renderers only see validated Timed values.
type Record struct {
	ID         string            `json:"id"`
	EventType  string            `json:"sdnaEventType"`
	Value      string            `json:"eventValue"`
	Start      *float64          `json:"start,omitempty"`
	End        *float64          `json:"end,omitempty"`
	Confidence *float64          `json:"confidenceScore,omitempty"`
	Positions  []json.RawMessage `json:"positions,omitempty"`
	Source     string            `json:"source,omitempty"`
	FullPath   string            `json:"fullPath,omitempty"`
}

// Timed is a record whose time range has been validated: start and end are
// present, non-negative, and end >= start.
type Timed struct {
	ID        string
	EventType string
	Value     string
	Start     float64
	End       float64
}

// Issue describes why a record failed validation.
type Issue struct {
	Index  int
	ID     string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("record %d (id=%s): %s", i.Index, i.ID, i.Reason)
}

// Validate checks every record's time range once, up front. Renderers that
// do timecode math operate only on the returned Timed slice and never need
// to re-check inside a loop. Input order is preserved.
func Validate(records []Record) ([]Timed, []Issue) {
	var timed []Timed
	var issues []Issue

	for i, r := range records {
		switch {
		case r.Start == nil:
			issues = append(issues, Issue{Index: i, ID: r.ID, Reason: "missing start"})
		case r.End == nil:
			issues = append(issues, Issue{Index: i, ID: r.ID, Reason: "missing end"})
		case *r.Start < 0:
			issues = append(issues, Issue{Index: i, ID: r.ID, Reason: "negative start"})
		case *r.End < *r.Start:
			issues = append(issues, Issue{Index: i, ID: r.ID,
				Reason: fmt.Sprintf("end %v before start %v", *r.End, *r.Start)})
		default:
			timed = append(timed, Timed{
				ID:        r.ID,
				EventType: r.EventType,
				Value:     r.Value,
				Start:     *r.Start,
				End:       *r.End,
			})
		}
	}

	return timed, issues
}

// Partition splits a mixed payload by event type the same way the upstream
// store queries do: transcript segments, comments, and everything else.
// Each group is sorted by start time; records without a start sort last in
// their original order.
func Partition(records []Record) map[Kind][]Record {
	groups := map[Kind][]Record{}

	for _, r := range records {
		switch r.EventType {
		case "transcript":
			groups[KindTranscript] = append(groups[KindTranscript], r)
		case "comment":
			groups[KindComments] = append(groups[KindComments], r)
		default:
			groups[KindEvents] = append(groups[KindEvents], r)
		}
	}

	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].Start == nil || g[j].Start == nil {
				return g[j].Start == nil && g[i].Start != nil
			}
			return *g[i].Start < *g[j].Start
		})
	}

	return groups
}

// StripPath returns a copy of the records with the source-file path
// removed. Exported payloads never leak local paths.
func StripPath(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.FullPath = ""
		out[i] = r
	}
	return out
}

// MaxEnd returns the largest end time across records, or 0 when none have
// one.
func MaxEnd(records []Record) float64 {
	var max float64
	for _, r := range records {
		if r.End != nil && *r.End > max {
			max = *r.End
		}
	}
	return max
}

// Ptr is a shorthand for building optional fields in literals.
func Ptr(v float64) *float64 { return &v }
