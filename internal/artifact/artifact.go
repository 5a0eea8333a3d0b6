package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdnasoft/sparkpack/internal/config"
	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/logging"
	"github.com/sdnasoft/sparkpack/internal/probe"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

// Format identifies a requested artifact format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSRT    Format = "srt"
	FormatVTT    Format = "vtt"
	FormatFCPXML Format = "fcpxml"
	FormatEDL    Format = "edl"
)

// supported formats per artifact kind. For transcripts the "fcpxml"
// identifier produces an XMEML (FCP7) document; events and comments get
// the FCPXML 1.10 dialect. Provider-specific, but it is what editorial
// tools on the receiving end expect.
var supported = map[event.Kind]map[Format]bool{
	event.KindTranscript: {FormatJSON: true, FormatSRT: true, FormatVTT: true, FormatFCPXML: true},
	event.KindEvents:     {FormatJSON: true, FormatCSV: true, FormatFCPXML: true, FormatEDL: true},
	event.KindComments:   {FormatJSON: true, FormatCSV: true, FormatFCPXML: true, FormatEDL: true},
}

// Supported reports whether the kind/format pair can be generated.
func Supported(kind event.Kind, format Format) bool {
	return supported[kind][format]
}

// UnsupportedFormatError is returned for a kind/format pair outside the
// supported set. Callers record it and continue with sibling formats.
type UnsupportedFormatError struct {
	Kind   event.Kind
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s format: %s", e.Kind, e.Format)
}

// OutputLocation addresses one export's output directory explicitly, so
// nothing in the converter depends on ambient process state.
type OutputLocation struct {
	BaseDir  string
	ExportID string
}

// Root is the export's top-level directory.
func (l OutputLocation) Root() string {
	return filepath.Join(l.BaseDir, l.ExportID)
}

// Dir is a per-kind subdirectory under Root.
func (l OutputLocation) Dir(sub string) string {
	return filepath.Join(l.Root(), sub)
}

// Artifact describes one generated file.
type Artifact struct {
	Type     event.Kind `json:"artifact_type"`
	Format   Format     `json:"format"`
	Filename string     `json:"filename"`
	Path     string     `json:"file_path"`
	Size     int64      `json:"file_size"`
}

// Payload pairs the raw records of one kind with their validated subset.
// Pass-through renderers (JSON, CSV) use Records so partially-filled
// records still appear; time-math renderers only ever see Timed.
type Payload struct {
	Records []event.Record
	Timed   []event.Timed
}

// NewPayload validates records once, up front, and reports what was
// rejected.
func NewPayload(records []event.Record) (Payload, []event.Issue) {
	timed, issues := event.Validate(records)
	return Payload{Records: records, Timed: timed}, issues
}

// Generator renders artifacts for one export. It is stateless between
// calls and safe for concurrent use as long as no two calls target the
// same output path.
type Generator struct {
	loc        OutputLocation
	cfg        config.Config
	media      probe.Info
	sourcePath string
	log        *logging.Logger
}

// New creates a generator. media supplies the probed (or synthesized)
// metadata for the timeline formats; sourcePath may be empty when no
// media file is resolvable.
func New(loc OutputLocation, cfg config.Config, media probe.Info, sourcePath string, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Generator{loc: loc, cfg: cfg, media: media, sourcePath: sourcePath, log: log}
}

// Transcript generates one transcript artifact in the requested format.
func (g *Generator) Transcript(p Payload, format Format, singleSegment bool) (Artifact, error) {
	name := g.filename("transcript", format)

	switch format {
	case FormatJSON:
		data, err := renderJSON(g.cleanTranscript(p, singleSegment))
		if err != nil {
			return Artifact{}, err
		}
		return g.write(event.KindTranscript, format, "transcript", name, data)
	case FormatSRT:
		return g.write(event.KindTranscript, format, "transcript", name, renderSRT(p.Timed))
	case FormatVTT:
		return g.write(event.KindTranscript, format, "transcript", name, renderVTT(p.Timed))
	case FormatFCPXML:
		data, err := g.renderXMEML(p.Timed)
		if err != nil {
			return Artifact{}, err
		}
		return g.write(event.KindTranscript, format, "transcript", name, data)
	default:
		return Artifact{}, &UnsupportedFormatError{Kind: event.KindTranscript, Format: format}
	}
}

// Events generates one generic-events artifact in the requested format.
func (g *Generator) Events(p Payload, format Format) (Artifact, error) {
	return g.timedKindArtifact(event.KindEvents, p, format, "event", "EVENT ID", false)
}

// Comments generates one comments/insights artifact in the requested
// format.
func (g *Generator) Comments(p Payload, format Format) (Artifact, error) {
	return g.timedKindArtifact(event.KindComments, p, format, "comments", "COMMENT ID", true)
}

func (g *Generator) timedKindArtifact(kind event.Kind, p Payload, format Format, sub, idLabel string, withSource bool) (Artifact, error) {
	name := g.filename(string(kind), format)

	switch format {
	case FormatJSON:
		data, err := renderJSON(event.StripPath(p.Records))
		if err != nil {
			return Artifact{}, err
		}
		return g.write(kind, format, sub, name, data)
	case FormatCSV:
		data, err := renderCSV(p.Records, withSource)
		if err != nil {
			return Artifact{}, err
		}
		return g.write(kind, format, sub, name, data)
	case FormatFCPXML:
		data, err := g.renderFCPXML(p.Timed, kind)
		if err != nil {
			return Artifact{}, err
		}
		return g.write(kind, format, sub, name, data)
	case FormatEDL:
		data := buildEDL(p.Timed, EDLOptions{
			Title:    g.cfg.Timeline.EDLTitle,
			Reel:     g.cfg.Timeline.EDLReel,
			Track:    g.cfg.Timeline.EDLTrack,
			ClipName: g.clipName(),
			IDLabel:  idLabel,
			FPS:      edlFrameRate,
		})
		return g.write(kind, format, sub, name, []byte(data))
	default:
		return Artifact{}, &UnsupportedFormatError{Kind: kind, Format: format}
	}
}

// rate returns the timeline frame rate, preferring the probed value and
// falling back to the configured default.
func (g *Generator) rate() timecode.Rate {
	if r, err := timecode.ParseRate(g.media.FPS); err == nil {
		return r
	}
	if r, err := timecode.ParseRate(g.cfg.Timeline.FrameRate); err == nil {
		return r
	}
	return timecode.Rate{Num: 25, Den: 1}
}

func (g *Generator) filename(kind string, format Format) string {
	ext := string(format)
	if format == FormatFCPXML && kind == "transcript" {
		ext = "xml"
	}
	return fmt.Sprintf("%s_%s.%s", g.cfg.Output.FilenamePrefix, kind, ext)
}

// clipName is the source file's base name, or a stand-in when no media
// file is known.
func (g *Generator) clipName() string {
	if g.sourcePath == "" {
		return "video.mp4"
	}
	return filepath.Base(g.sourcePath)
}

func (g *Generator) write(kind event.Kind, format Format, sub, name string, data []byte) (Artifact, error) {
	dir := g.loc.Dir(sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Artifact{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	g.log.Infow("Generated artifact",
		"kind", string(kind),
		"format", string(format),
		"path", path,
	)

	return Artifact{
		Type:     kind,
		Format:   format,
		Filename: name,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

// writeRoot writes an artifact directly under the export root.
func (g *Generator) writeRoot(kind event.Kind, format Format, name string, data []byte) (Artifact, error) {
	if err := os.MkdirAll(g.loc.Root(), 0755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(g.loc.Root(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Artifact{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	g.log.Infow("Generated artifact",
		"kind", string(kind),
		"format", string(format),
		"path", path,
	)

	return Artifact{
		Type:     kind,
		Format:   format,
		Filename: name,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}
