package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdnasoft/sparkpack/internal/config"
	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/workorder"
)

func testRunner(t *testing.T) (*Runner, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Output.BaseDir = t.TempDir()
	return NewRunner(cfg, nil), cfg
}

func sampleRecords() []event.Record {
	return []event.Record{
		{ID: "t1", EventType: "transcript", Value: "hello", Start: event.Ptr(0), End: event.Ptr(2)},
		{ID: "t2", EventType: "transcript", Value: "world", Start: event.Ptr(2), End: event.Ptr(4)},
		{ID: "c1", EventType: "comment", Value: "great take", Start: event.Ptr(10), End: event.Ptr(12)},
		{ID: "e1", EventType: "applause", Value: "crowd cheers", Start: event.Ptr(5), End: event.Ptr(7)},
	}
}

func TestRunProducesManifest(t *testing.T) {
	r, _ := testRunner(t)

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{
			RepoGUID: "repo-123",
			Outputs: workorder.Outputs{
				Transcript: &workorder.OutputFormats{Formats: []string{"json", "srt"}},
				Events:     &workorder.OutputFormats{Formats: []string{"csv"}},
				Comments:   &workorder.OutputFormats{Formats: []string{"json"}},
				Selects:    workorder.SelectsConfig{Enabled: true},
				Grounding:  workorder.GroundingConfig{Enabled: true},
			},
			UserInputs: workorder.UserInputs{Prompt: "find the best moments"},
		},
		Records:  sampleRecords(),
		ExportID: "run-1",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.ExportID != "run-1" {
		t.Errorf("ExportID = %q, want run-1", res.ExportID)
	}
	if res.Manifest.Status != "completed" {
		t.Errorf("status = %q, want completed", res.Manifest.Status)
	}
	if res.Manifest.RepoGUID != "repo-123" {
		t.Errorf("repo_guid = %q", res.Manifest.RepoGUID)
	}
	// transcript json+srt, events csv, comments json, selects edl,
	// grounding txt, llm instructions md
	if len(res.Manifest.Artifacts) != 7 {
		t.Fatalf("got %d artifacts: %+v", len(res.Manifest.Artifacts), res.Manifest.Artifacts)
	}
	if len(res.Manifest.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Manifest.Errors)
	}

	for _, art := range res.Manifest.Artifacts {
		info, err := os.Stat(art.Path)
		if err != nil {
			t.Errorf("artifact %s not on disk: %v", art.Filename, err)
			continue
		}
		if info.Size() != art.Size {
			t.Errorf("artifact %s size %d, manifest says %d", art.Filename, info.Size(), art.Size)
		}
	}

	data, err := os.ReadFile(res.ManifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var decoded Manifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("manifest does not parse: %v", err)
	}
	if decoded.SparkID != "run-1" {
		t.Errorf("manifest spark_id = %q", decoded.SparkID)
	}
}

func TestRunPartialSuccess(t *testing.T) {
	r, _ := testRunner(t)

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{
			RepoGUID: "repo-123",
			Outputs: workorder.Outputs{
				Events: &workorder.OutputFormats{Formats: []string{"csv", "xyz"}},
			},
			UserInputs: workorder.UserInputs{LLMInstructions: boolPtr(false)},
		},
		Records:  sampleRecords(),
		ExportID: "run-2",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Manifest.Status != "completed" {
		t.Errorf("status = %q, want completed despite one failure", res.Manifest.Status)
	}
	if len(res.Manifest.Artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(res.Manifest.Artifacts))
	}
	if res.Manifest.Artifacts[0].Format != "csv" {
		t.Errorf("surviving artifact format = %q", res.Manifest.Artifacts[0].Format)
	}
	if len(res.Manifest.Errors) != 1 || !strings.Contains(res.Manifest.Errors[0], "xyz") {
		t.Errorf("errors = %v, want one mentioning xyz", res.Manifest.Errors)
	}
}

func TestRunAllFormatsFail(t *testing.T) {
	r, _ := testRunner(t)

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{
			RepoGUID: "repo-123",
			Outputs: workorder.Outputs{
				Events: &workorder.OutputFormats{Formats: []string{"bogus"}},
			},
			UserInputs: workorder.UserInputs{LLMInstructions: boolPtr(false)},
		},
		Records:  sampleRecords(),
		ExportID: "run-3",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Manifest.Status != "failed" {
		t.Errorf("status = %q, want failed", res.Manifest.Status)
	}
}

func TestRunFiltersByEventID(t *testing.T) {
	r, _ := testRunner(t)

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{
			RepoGUID: "repo-123",
			Inputs:   workorder.Inputs{EventIDs: []string{"e1"}},
			Outputs: workorder.Outputs{
				Events: &workorder.OutputFormats{Formats: []string{"csv"}},
			},
			UserInputs: workorder.UserInputs{LLMInstructions: boolPtr(false)},
		},
		Records:  sampleRecords(),
		ExportID: "run-4",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(res.Manifest.Artifacts[0].Path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if !strings.Contains(string(data), "e1") {
		t.Errorf("csv missing filtered event:\n%s", data)
	}
	if strings.Contains(string(data), "t1") {
		t.Errorf("csv contains excluded record:\n%s", data)
	}
}

func TestRunRecordsValidationIssues(t *testing.T) {
	r, _ := testRunner(t)

	records := append(sampleRecords(), event.Record{
		ID: "bad", EventType: "applause", Value: "no times",
	})

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{
			RepoGUID: "repo-123",
			Outputs: workorder.Outputs{
				Events: &workorder.OutputFormats{Formats: []string{"edl"}},
			},
			UserInputs: workorder.UserInputs{LLMInstructions: boolPtr(false)},
		},
		Records:  records,
		ExportID: "run-5",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Manifest.Status != "completed" {
		t.Errorf("status = %q", res.Manifest.Status)
	}
	if len(res.Manifest.Errors) != 1 || !strings.Contains(res.Manifest.Errors[0], "bad") {
		t.Errorf("errors = %v, want one naming the invalid record", res.Manifest.Errors)
	}
	data, _ := os.ReadFile(res.Manifest.Artifacts[0].Path)
	if !strings.Contains(string(data), "crowd cheers") {
		t.Errorf("valid record missing from EDL:\n%s", data)
	}
}

func TestRunGeneratesExportID(t *testing.T) {
	r, _ := testRunner(t)

	res, err := r.Run(Options{
		WorkOrder: workorder.WorkOrder{RepoGUID: "repo-123"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExportID == "" {
		t.Fatal("export id not generated")
	}
	if filepath.Base(res.ExportDir) != res.ExportID {
		t.Errorf("export dir %q does not end in export id %q", res.ExportDir, res.ExportID)
	}
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()

	flat := filepath.Join(dir, "flat.json")
	os.WriteFile(flat, []byte(`[{"id":"1","sdnaEventType":"comment","eventValue":"x","start":1,"end":2}]`), 0644)

	wrapped := filepath.Join(dir, "wrapped.json")
	os.WriteFile(wrapped, []byte(`{"segments":[{"id":"1","eventValue":"x"},{"id":"2","eventValue":"y"}]}`), 0644)

	records, err := LoadRecords(flat)
	if err != nil {
		t.Fatalf("LoadRecords(flat) failed: %v", err)
	}
	if len(records) != 1 || records[0].EventType != "comment" {
		t.Errorf("flat records = %+v", records)
	}

	records, err = LoadRecords(wrapped)
	if err != nil {
		t.Fatalf("LoadRecords(wrapped) failed: %v", err)
	}
	if len(records) != 2 || records[1].ID != "2" {
		t.Errorf("wrapped records = %+v", records)
	}

	if _, err := LoadRecords(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func boolPtr(b bool) *bool { return &b }
