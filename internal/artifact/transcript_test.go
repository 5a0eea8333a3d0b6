package artifact

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sdnasoft/sparkpack/internal/event"
)

func TestMergeSegments(t *testing.T) {
	records := []event.Record{
		{ID: "s1", EventType: "transcript", Value: "a", Start: event.Ptr(1), End: event.Ptr(3)},
		{ID: "s2", EventType: "transcript", Value: "b", Start: event.Ptr(2), End: event.Ptr(5)},
	}

	merged, err := mergeSegments(records)
	if err != nil {
		t.Fatalf("mergeSegments failed: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged segment, got %d", len(merged))
	}

	seg := merged[0]
	if seg.Value != "a b" {
		t.Errorf("merged value = %q, want %q", seg.Value, "a b")
	}
	if *seg.Start != 1 || *seg.End != 5 {
		t.Errorf("merged range = [%v, %v], want [1, 5]", *seg.Start, *seg.End)
	}
	if seg.ID != "1" {
		t.Errorf("merged id = %q, want \"1\"", seg.ID)
	}
}

func TestMergeSegmentsSkipsEmptyValues(t *testing.T) {
	records := []event.Record{
		{ID: "s1", Value: "  hello  ", Start: event.Ptr(0), End: event.Ptr(1)},
		{ID: "s2", Value: "   ", Start: event.Ptr(1), End: event.Ptr(2)},
		{ID: "s3", Value: "world", Start: event.Ptr(2), End: event.Ptr(3)},
	}

	merged, err := mergeSegments(records)
	if err != nil {
		t.Fatalf("mergeSegments failed: %v", err)
	}
	if merged[0].Value != "hello world" {
		t.Errorf("merged value = %q, want %q", merged[0].Value, "hello world")
	}
	// the empty segment is excluded from the join but still counts for the range
	if *merged[0].End != 3 {
		t.Errorf("merged end = %v, want 3", *merged[0].End)
	}
}

func TestCleanTranscriptFallsBackOnBadMerge(t *testing.T) {
	g := New(OutputLocation{}, testConfig(), testMedia(), "", nil)

	records := []event.Record{
		{ID: "s1", Value: "a", Start: event.Ptr(1), End: event.Ptr(3), FullPath: "/x.mp4"},
		{ID: "s2", Value: "b"}, // no time range: merge cannot be computed
	}
	p := Payload{Records: records}

	cleaned := g.cleanTranscript(p, true)
	if len(cleaned) != 2 {
		t.Fatalf("expected the multi-segment fallback, got %d segments", len(cleaned))
	}
	if cleaned[0].FullPath != "" {
		t.Errorf("fallback path must still strip fullPath, got %q", cleaned[0].FullPath)
	}
}

func TestRenderJSONIdempotent(t *testing.T) {
	records := []event.Record{
		{ID: "s1", EventType: "transcript", Value: "héllo wörld", Start: event.Ptr(0.5), End: event.Ptr(2)},
	}

	first, err := renderJSON(records)
	if err != nil {
		t.Fatalf("renderJSON failed: %v", err)
	}
	second, err := renderJSON(records)
	if err != nil {
		t.Fatalf("renderJSON failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("renderJSON is not deterministic")
	}

	if !strings.Contains(string(first), "héllo wörld") {
		t.Error("non-ASCII text must be preserved unescaped")
	}

	var doc struct {
		Segments []event.Record `json:"segments"`
	}
	if err := json.Unmarshal(first, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Segments) != 1 || doc.Segments[0].ID != "s1" {
		t.Errorf("unexpected round-trip: %+v", doc.Segments)
	}
}

func TestRenderSRT(t *testing.T) {
	segments := []event.Timed{
		{ID: "s1", Value: "first line", Start: 0, End: 1.5},
		{ID: "s2", Value: "second line", Start: 3661.25, End: 3662},
	}

	out := string(renderSRT(segments))
	want := "1\n00:00:00,000 --> 00:00:01,500\nfirst line\n\n" +
		"2\n01:01:01,250 --> 01:01:02,000\nsecond line\n\n"
	if out != want {
		t.Errorf("renderSRT output:\n%q\nwant:\n%q", out, want)
	}
}

func TestRenderVTTSkipRules(t *testing.T) {
	segments := []event.Timed{
		{ID: "s1", Value: "kept", Start: 0, End: 1},
		{ID: "s2", Value: "   ", Start: 1, End: 2},      // empty text: skipped
		{ID: "s3", Value: "zero span", Start: 2, End: 2}, // start == end: skipped
		{ID: "s4", Value: "also kept", Start: 3, End: 4},
	}

	out := string(renderVTT(segments))

	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header:\n%q", out)
	}
	if strings.Contains(out, "zero span") {
		t.Error("zero-span cue must be skipped")
	}
	// skipped cues must not consume a number slot
	if !strings.Contains(out, "2\n00:00:03.000 --> 00:00:04.000\nalso kept") {
		t.Errorf("cue numbering must skip dropped segments:\n%q", out)
	}
	if strings.Contains(out, "3\n") {
		t.Errorf("no third cue number expected:\n%q", out)
	}
}
