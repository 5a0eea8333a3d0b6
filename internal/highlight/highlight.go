// Package highlight parses and validates highlight import documents
// produced by an external assistant working from an export package.
package highlight

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SchemaVersion is the only document version this build accepts.
const SchemaVersion = "sdna.spark.import.v1"

// Evidence ties a highlight back to the exported data it was derived from.
type Evidence struct {
	TranscriptIDs []string `json:"transcriptIds"`
	EventIDs      []string `json:"eventIds"`
	Topics        []string `json:"topics"`
}

func (e Evidence) Empty() bool {
	return len(e.TranscriptIDs) == 0 && len(e.EventIDs) == 0 && len(e.Topics) == 0
}

// Highlight is one proposed time range.
type Highlight struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Title      string   `json:"title"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
	Evidence   Evidence `json:"evidence"`
}

// Asset names the media the highlights refer to.
type Asset struct {
	RepoGUID string `json:"repo_guid"`
	FullPath string `json:"fullPath"`
}

// Document is a complete import payload.
type Document struct {
	SchemaVersion string      `json:"schemaVersion"`
	Asset         Asset       `json:"asset"`
	Highlights    []Highlight `json:"highlights"`
	Notes         []string    `json:"notes"`
}

// Problem describes one validation failure. Index is -1 for
// document-level problems.
type Problem struct {
	Index  int
	Reason string
}

func (p Problem) String() string {
	if p.Index < 0 {
		return p.Reason
	}
	return fmt.Sprintf("highlight %d: %s", p.Index, p.Reason)
}

// Parse decodes a document without validating it.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse import document: %w", err)
	}
	return doc, nil
}

// Load reads and decodes a document from a JSON file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read import document: %w", err)
	}
	return Parse(data)
}

// Validate applies the import rules: matching schema version, start
// strictly before end, no overlapping ranges, ranges within the asset
// duration when it is known, and non-empty evidence unless the document
// carries notes explaining why. assetDuration <= 0 means unknown.
func (d Document) Validate(assetDuration float64) []Problem {
	var problems []Problem

	if d.SchemaVersion != SchemaVersion {
		problems = append(problems, Problem{
			Index:  -1,
			Reason: fmt.Sprintf("schemaVersion %q, expected %q", d.SchemaVersion, SchemaVersion),
		})
	}

	for i, h := range d.Highlights {
		if h.Start < 0 {
			problems = append(problems, Problem{i, fmt.Sprintf("negative start %.3f", h.Start)})
		}
		if h.Start >= h.End {
			problems = append(problems, Problem{i, fmt.Sprintf("start %.3f is not before end %.3f", h.Start, h.End)})
			continue
		}
		if assetDuration > 0 && h.End > assetDuration {
			problems = append(problems, Problem{i, fmt.Sprintf("end %.3f exceeds asset duration %.3f", h.End, assetDuration)})
		}
		if h.Evidence.Empty() && len(d.Notes) == 0 {
			problems = append(problems, Problem{i, "empty evidence with no explanatory notes"})
		}
	}

	problems = append(problems, d.overlaps()...)
	return problems
}

// overlaps reports every pair of ranges that intersect. Ranges that merely
// touch (one ends exactly where the next starts) do not overlap.
func (d Document) overlaps() []Problem {
	type span struct {
		index      int
		start, end float64
	}

	var spans []span
	for i, h := range d.Highlights {
		if h.Start < h.End {
			spans = append(spans, span{i, h.Start, h.End})
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })

	var problems []Problem
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.start < prev.end {
			problems = append(problems, Problem{
				Index:  cur.index,
				Reason: fmt.Sprintf("range [%.3f, %.3f] overlaps highlight %d [%.3f, %.3f]", cur.start, cur.end, prev.index, prev.start, prev.end),
			})
		}
	}
	return problems
}
