package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

// mergedSegmentID is the fixed identifier of the synthetic segment
// produced by a single-segment merge.
const mergedSegmentID = "1"

// cleanTranscript prepares transcript segments for serialization. With the
// single-segment flag the whole transcript collapses into one synthetic
// segment; if that merge cannot be computed the multi-segment path is the
// deterministic fallback, never an undefined in-between state.
func (g *Generator) cleanTranscript(p Payload, singleSegment bool) []event.Record {
	if singleSegment && len(p.Records) > 0 {
		merged, err := mergeSegments(p.Records)
		if err == nil {
			return merged
		}
		g.log.Warnw("Transcript merge failed, falling back to multi-segment output",
			"error", err,
		)
	}
	return event.StripPath(p.Records)
}

// mergeSegments collapses all segments into one: text is the space-joined
// concatenation of every non-empty trimmed value, start is the minimum
// start, end is the maximum end.
func mergeSegments(records []event.Record) ([]event.Record, error) {
	var parts []string
	var minStart, maxEnd float64
	first := true

	for i, r := range records {
		if r.Start == nil || r.End == nil {
			return nil, fmt.Errorf("segment %d (id=%s) has no time range", i, r.ID)
		}

		if v := strings.TrimSpace(r.Value); v != "" {
			parts = append(parts, v)
		}

		if first || *r.Start < minStart {
			minStart = *r.Start
		}
		if first || *r.End > maxEnd {
			maxEnd = *r.End
		}
		first = false
	}

	return []event.Record{{
		ID:        mergedSegmentID,
		EventType: "transcript",
		Value:     strings.Join(parts, " "),
		Start:     event.Ptr(minStart),
		End:       event.Ptr(maxEnd),
	}}, nil
}

// renderJSON serializes records as the canonical {"segments": [...]}
// document: two-space indent, UTF-8, non-ASCII left unescaped.
func renderJSON(records []event.Record) ([]byte, error) {
	doc := struct {
		Segments []event.Record `json:"segments"`
	}{Segments: records}
	if doc.Segments == nil {
		doc.Segments = []event.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode segments: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSRT emits 1-indexed SRT cue blocks, one per validated segment.
func renderSRT(segments []event.Timed) []byte {
	var sb strings.Builder
	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			timecode.ToSRT(seg.Start),
			timecode.ToSRT(seg.End)))
		sb.WriteString(seg.Value)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// renderVTT emits a WebVTT document. Segments with empty text, or whose
// formatted end timestamp does not land strictly after the start, are
// skipped without consuming a cue number.
func renderVTT(segments []event.Timed) []byte {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	cue := 0
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Value)
		if text == "" {
			continue
		}

		start := timecode.ToVTT(seg.Start)
		end := timecode.ToVTT(seg.End)
		if start >= end {
			continue
		}

		cue++
		sb.WriteString(fmt.Sprintf("%d\n", cue))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", start, end))
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}
