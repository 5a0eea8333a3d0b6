package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdnasoft/sparkpack/internal/artifact"
	"github.com/sdnasoft/sparkpack/internal/config"
	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/logging"
	"github.com/sdnasoft/sparkpack/internal/probe"
	"github.com/sdnasoft/sparkpack/internal/workorder"
)

// Manifest is the package-level record of one export run.
type Manifest struct {
	SparkID   string              `json:"spark_id"`
	RepoGUID  string              `json:"repo_guid"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	Artifacts []artifact.Artifact `json:"artifacts"`
	Errors    []string            `json:"errors,omitempty"`
}

// Options parameterizes one export run.
type Options struct {
	WorkOrder workorder.WorkOrder
	// Records is the already-fetched flat event payload.
	Records []event.Record
	// MediaPath points at the source media file when available. When
	// empty, the first record's path is tried; failing that, synthesized
	// defaults are used.
	MediaPath string
	// ExportID overrides the generated id. Used by tests and re-runs.
	ExportID string
}

// Result is what a completed run hands back to the caller.
type Result struct {
	ExportID     string
	ExportDir    string
	ManifestPath string
	Manifest     Manifest
}

// Runner executes work orders synchronously. It holds no state between
// runs.
type Runner struct {
	cfg config.Config
	log *logging.Logger
}

func NewRunner(cfg config.Config, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run generates every requested artifact for one work order. One format
// failing never blocks its siblings: each failure is recorded and the run
// carries on, so the export completes as long as anything succeeded.
// The work order is assumed validated at the intake boundary; an unknown
// format that slips through is recorded like any other per-format failure.
func (r *Runner) Run(opts Options) (Result, error) {
	wo := opts.WorkOrder

	exportID := opts.ExportID
	if exportID == "" {
		exportID = uuid.NewString()
	}

	loc := artifact.OutputLocation{BaseDir: r.cfg.Output.BaseDir, ExportID: exportID}

	records := filterByID(opts.Records, wo.Inputs.EventIDs)
	groups := event.Partition(records)

	mediaPath := opts.MediaPath
	if mediaPath == "" {
		mediaPath = firstSourcePath(records)
	}
	media, sourcePath := r.resolveMedia(mediaPath, records)

	gen := artifact.New(loc, r.cfg, media, sourcePath, r.log)

	manifest := Manifest{
		SparkID:   exportID,
		RepoGUID:  wo.RepoGUID,
		CreatedAt: time.Now().UTC(),
		Artifacts: []artifact.Artifact{},
	}

	record := func(art artifact.Artifact, err error, what string) {
		if err != nil {
			msg := fmt.Sprintf("%s generation failed: %v", what, err)
			r.log.Errorw("Artifact generation failed", "artifact", what, "error", err)
			manifest.Errors = append(manifest.Errors, msg)
			return
		}
		manifest.Artifacts = append(manifest.Artifacts, art)
	}

	requested := 0

	if out := wo.Outputs.Transcript; out != nil {
		payload, issues := artifact.NewPayload(groups[event.KindTranscript])
		r.reportIssues(&manifest, event.KindTranscript, issues)
		for _, f := range out.Formats {
			requested++
			art, err := gen.Transcript(payload, artifact.Format(f), out.IsSingleSegment)
			record(art, err, fmt.Sprintf("transcript %s", f))
		}
	}

	if out := wo.Outputs.Events; out != nil {
		payload, issues := artifact.NewPayload(groups[event.KindEvents])
		r.reportIssues(&manifest, event.KindEvents, issues)
		for _, f := range out.Formats {
			requested++
			art, err := gen.Events(payload, artifact.Format(f))
			record(art, err, fmt.Sprintf("events %s", f))
		}
	}

	var commentsTimed []event.Timed
	if out := wo.Outputs.Comments; out != nil {
		payload, issues := artifact.NewPayload(groups[event.KindComments])
		r.reportIssues(&manifest, event.KindComments, issues)
		commentsTimed = payload.Timed
		for _, f := range out.Formats {
			requested++
			art, err := gen.Comments(payload, artifact.Format(f))
			record(art, err, fmt.Sprintf("comments %s", f))
		}
	}

	if wo.Outputs.Selects.Enabled {
		if commentsTimed == nil {
			commentsTimed, _ = event.Validate(groups[event.KindComments])
		}
		requested++
		art, err := gen.SelectsEDL(commentsTimed)
		record(art, err, "selects edl")
	}

	if wo.Outputs.Grounding.Enabled {
		requested++
		art, err := gen.Grounding(wo.UserInputs.Prompt)
		record(art, err, "grounding txt")
	}

	if wo.WantsInstructions() {
		requested++
		art, err := gen.Instructions()
		record(art, err, "llm instructions")
	}

	manifest.Status = "completed"
	if requested > 0 && len(manifest.Artifacts) == 0 {
		manifest.Status = "failed"
	}

	manifestPath, err := writeManifest(loc, manifest)
	if err != nil {
		return Result{}, err
	}

	r.log.Infow("Export completed",
		"export_id", exportID,
		"status", manifest.Status,
		"artifacts", len(manifest.Artifacts),
		"errors", len(manifest.Errors),
	)

	return Result{
		ExportID:     exportID,
		ExportDir:    loc.Root(),
		ManifestPath: manifestPath,
		Manifest:     manifest,
	}, nil
}

func (r *Runner) reportIssues(m *Manifest, kind event.Kind, issues []event.Issue) {
	for _, is := range issues {
		msg := fmt.Sprintf("%s: invalid %s", kind, is)
		r.log.Warnw("Dropping invalid record", "kind", string(kind), "issue", is.String())
		m.Errors = append(m.Errors, msg)
	}
}

// resolveMedia probes the media file when one is resolvable, and falls
// back to synthesized defaults otherwise. A probe failure downgrades to
// the fallback instead of failing the export.
func (r *Runner) resolveMedia(path string, records []event.Record) (probe.Info, string) {
	if path == "" {
		return probe.Fallback(records), ""
	}

	info, err := probe.Inspect(path)
	if err != nil {
		r.log.Warnw("Media probe failed, using synthesized defaults",
			"path", path,
			"error", err,
		)
		return probe.Fallback(records), path
	}
	return info, path
}

func filterByID(records []event.Record, ids []string) []event.Record {
	if len(ids) == 0 {
		return records
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []event.Record
	for _, rec := range records {
		if want[rec.ID] {
			out = append(out, rec)
		}
	}
	return out
}

func firstSourcePath(records []event.Record) string {
	for _, rec := range records {
		if rec.FullPath == "" {
			continue
		}
		if _, err := os.Stat(rec.FullPath); err == nil {
			return rec.FullPath
		}
	}
	return ""
}

func writeManifest(loc artifact.OutputLocation, manifest Manifest) (string, error) {
	if err := os.MkdirAll(loc.Root(), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(manifest); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(loc.Root(), "manifest.json")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// LoadRecords reads the already-fetched flat event payload from a JSON
// file. Both a bare record array and a {"segments": [...]} document are
// accepted.
func LoadRecords(path string) ([]event.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var records []event.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var doc struct {
		Segments []event.Record `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse payload %s: %w", path, err)
	}
	return doc.Segments, nil
}
