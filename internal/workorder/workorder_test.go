package workorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeOrder(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write work order: %v", err)
	}
	return path
}

func TestLoadValidOrder(t *testing.T) {
	path := writeOrder(t, `{
		"spark_version": "1.0",
		"repo_guid": "repo-123",
		"user_inputs": {"prompt": "a documentary about trains"},
		"outputs": {
			"transcript": {"formats": ["json", "srt", "vtt"], "isSingleSegment": true},
			"events": {"formats": ["csv", "edl"]},
			"selects": {"enabled": true, "formats": ["edl"]},
			"grounding": {"enabled": true}
		},
		"metadata": {"export_mode": "editorial"}
	}`)

	wo, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if wo.RepoGUID != "repo-123" {
		t.Errorf("repo_guid = %q", wo.RepoGUID)
	}
	if !wo.Outputs.Transcript.IsSingleSegment {
		t.Error("isSingleSegment not parsed")
	}
	if !wo.WantsInstructions() {
		t.Error("llm_instructions should default to true")
	}
}

func TestValidateRejectsEDLForTranscript(t *testing.T) {
	path := writeOrder(t, `{
		"repo_guid": "repo-123",
		"outputs": {"transcript": {"formats": ["edl"]}}
	}`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "not allowed for transcript") {
		t.Fatalf("expected transcript-edl rejection, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing repo_guid",
			`{"outputs": {}}`,
			"repo_guid",
		},
		{
			"unknown format",
			`{"repo_guid": "r", "outputs": {"events": {"formats": ["xyz"]}}}`,
			`format "xyz" not allowed`,
		},
		{
			"empty formats list",
			`{"repo_guid": "r", "outputs": {"comments": {"formats": []}}}`,
			"no formats",
		},
		{
			"bad export mode",
			`{"repo_guid": "r", "metadata": {"export_mode": "archive"}}`,
			"export_mode",
		},
		{
			"bad selects format",
			`{"repo_guid": "r", "outputs": {"selects": {"enabled": true, "formats": ["srt"]}}}`,
			"selects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeOrder(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWantsInstructionsExplicitFalse(t *testing.T) {
	path := writeOrder(t, `{
		"repo_guid": "r",
		"user_inputs": {"llm_instructions": false}
	}`)

	wo, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if wo.WantsInstructions() {
		t.Error("explicit false must disable instructions")
	}
}
