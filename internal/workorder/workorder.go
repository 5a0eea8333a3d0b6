package workorder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sdnasoft/sparkpack/internal/artifact"
	"github.com/sdnasoft/sparkpack/internal/event"
)

// OutputFormats selects the formats for one artifact kind.
type OutputFormats struct {
	Formats         []string `json:"formats"`
	IsSingleSegment bool     `json:"isSingleSegment,omitempty"`
}

// SelectsConfig enables the assembled selects list.
type SelectsConfig struct {
	Enabled bool     `json:"enabled"`
	Formats []string `json:"formats,omitempty"`
}

// GroundingConfig enables the grounding prompt artifact.
type GroundingConfig struct {
	Enabled bool `json:"enabled"`
}

// Outputs is the per-kind output selection.
type Outputs struct {
	Transcript *OutputFormats  `json:"transcript,omitempty"`
	Events     *OutputFormats  `json:"events,omitempty"`
	Comments   *OutputFormats  `json:"comments,omitempty"`
	Selects    SelectsConfig   `json:"selects"`
	Grounding  GroundingConfig `json:"grounding"`
}

// Inputs narrows the export to specific upstream event ids.
type Inputs struct {
	EventIDs []string `json:"event_ids,omitempty"`
}

// UserInputs carries the operator-supplied prompt material.
type UserInputs struct {
	Prompt          string `json:"prompt,omitempty"`
	LLMInstructions *bool  `json:"llm_instructions,omitempty"`
}

// Metadata describes who asked for the export and in what mode.
type Metadata struct {
	RequestedBy  string `json:"requested_by,omitempty"`
	ExportPreset string `json:"export_preset,omitempty"`
	ExportMode   string `json:"export_mode,omitempty"`
}

// WorkOrder is one export request.
type WorkOrder struct {
	SparkVersion string    `json:"spark_version,omitempty"`
	RepoGUID     string    `json:"repo_guid"`
	Inputs       Inputs    `json:"inputs"`
	UserInputs   UserInputs `json:"user_inputs"`
	Outputs      Outputs   `json:"outputs"`
	Metadata     Metadata  `json:"metadata"`
}

var exportModes = map[string]bool{
	"":          true, // defaults to editorial
	"editorial": true,
	"llm":       true,
	"review":    true,
	"promo":     true,
	"custom":    true,
}

// Load reads and validates a work order from a JSON file.
func Load(path string) (WorkOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkOrder{}, fmt.Errorf("failed to read work order: %w", err)
	}

	var wo WorkOrder
	if err := json.Unmarshal(data, &wo); err != nil {
		return WorkOrder{}, fmt.Errorf("failed to parse work order %s: %w", path, err)
	}

	if err := wo.Validate(); err != nil {
		return WorkOrder{}, err
	}
	return wo, nil
}

// Validate checks the work order is internally consistent before any
// artifact generation starts.
func (wo WorkOrder) Validate() error {
	if wo.RepoGUID == "" {
		return fmt.Errorf("work order: repo_guid is required")
	}
	if !exportModes[wo.Metadata.ExportMode] {
		return fmt.Errorf("work order: invalid export_mode %q", wo.Metadata.ExportMode)
	}

	kinds := []struct {
		kind event.Kind
		out  *OutputFormats
	}{
		{event.KindTranscript, wo.Outputs.Transcript},
		{event.KindEvents, wo.Outputs.Events},
		{event.KindComments, wo.Outputs.Comments},
	}

	for _, k := range kinds {
		if k.out == nil {
			continue
		}
		if len(k.out.Formats) == 0 {
			return fmt.Errorf("work order: %s requested with no formats", k.kind)
		}
		for _, f := range k.out.Formats {
			if !artifact.Supported(k.kind, artifact.Format(f)) {
				return fmt.Errorf("work order: format %q not allowed for %s", f, k.kind)
			}
		}
	}

	for _, f := range wo.Outputs.Selects.Formats {
		if f != "edl" {
			return fmt.Errorf("work order: format %q not allowed for selects", f)
		}
	}

	return nil
}

// WantsInstructions reports whether the instructions artifact should be
// produced. It defaults to true when unset.
func (wo WorkOrder) WantsInstructions() bool {
	if wo.UserInputs.LLMInstructions == nil {
		return true
	}
	return *wo.UserInputs.LLMInstructions
}
