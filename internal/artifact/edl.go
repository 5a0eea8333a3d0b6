package artifact

import (
	"fmt"
	"strings"

	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

// EDL timecodes are fixed at 25fps regardless of the probed media rate;
// the receiving editorial systems expect a PAL-rate list.
const edlFrameRate = 25.0

// EDLOptions parameterizes one CMX3600 assembly.
type EDLOptions struct {
	Title    string
	Reel     string
	Track    string
	ClipName string
	// IDLabel prefixes the per-edit id comment ("EVENT ID" or "COMMENT ID").
	IDLabel string
	FPS     float64
}

// buildEDL assembles a CMX3600-style edit list. Source in/out come from
// each record's own time range; record in/out come from a running cursor
// that advances by each record's duration, so the assembled timeline is a
// back-to-back concatenation in input order. Gaps and overlaps between
// source timestamps do not exist on the record side; only durations do.
// No re-sorting happens here — order the input before calling.
func buildEDL(records []event.Timed, opts EDLOptions) string {
	fps := opts.FPS
	if fps <= 0 {
		fps = edlFrameRate
	}

	var lines []string
	cursor := 0.0

	for i, rec := range records {
		srcIn := timecode.ToSMPTE(rec.Start, fps)
		srcOut := timecode.ToSMPTE(rec.End, fps)

		duration := rec.End - rec.Start
		recIn := timecode.ToSMPTE(cursor, fps)
		recOut := timecode.ToSMPTE(cursor+duration, fps)

		lines = append(lines, fmt.Sprintf(
			"%03d  %-8s %-5s C        %s %s %s %s",
			i+1, opts.Reel, opts.Track, srcIn, srcOut, recIn, recOut,
		))
		lines = append(lines, fmt.Sprintf("* FROM CLIP NAME: %s", opts.ClipName))

		if rec.ID != "" {
			lines = append(lines, fmt.Sprintf("* %s: %s", opts.IDLabel, rec.ID))
		}
		if rec.EventType != "" {
			lines = append(lines, fmt.Sprintf("* SDNA EVENT TYPE: %s", rec.EventType))
		}
		if rec.Value != "" {
			lines = append(lines, fmt.Sprintf("* EVENT VALUE: %s", rec.Value))
		}
		lines = append(lines, "")

		cursor += duration
	}

	return fmt.Sprintf("TITLE: %s\nFCM: NON-DROP FRAME\n\n%s",
		opts.Title, strings.Join(lines, "\n"))
}

// KindSelects tags the assembled selects list in manifests.
const KindSelects event.Kind = "selects"

// SelectsEDL assembles comment/marker time ranges into a selects list.
// Ranges are expected pre-sorted by start.
func (g *Generator) SelectsEDL(selects []event.Timed) (Artifact, error) {
	data := buildEDL(selects, EDLOptions{
		Title:    "AI Spark Selects",
		Reel:     g.cfg.Timeline.EDLReel,
		Track:    g.cfg.Timeline.EDLTrack,
		ClipName: g.clipName(),
		IDLabel:  "SELECT ID",
		FPS:      edlFrameRate,
	})

	name := fmt.Sprintf("%s_selects.edl", g.cfg.Output.FilenamePrefix)
	return g.writeRoot(KindSelects, FormatEDL, name, []byte(data))
}
