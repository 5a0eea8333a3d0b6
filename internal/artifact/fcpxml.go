package artifact

import (
	"encoding/xml"
	"fmt"

	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

// FCPXML 1.10 document: one asset-clip on a spine carrying a marker per
// record, with fractional-second time values throughout.

type fcpxmlFormat struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
}

type fcpxmlAsset struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Src      string `xml:"src,attr"`
	Start    string `xml:"start,attr"`
	Duration string `xml:"duration,attr"`
	HasVideo string `xml:"hasVideo,attr"`
	HasAudio string `xml:"hasAudio,attr"`
	Format   string `xml:"format,attr"`
}

type fcpxmlResources struct {
	Format fcpxmlFormat `xml:"format"`
	Asset  *fcpxmlAsset `xml:"asset,omitempty"`
}

type fcpxmlMarker struct {
	ID        string `xml:"id,attr"`
	Start     string `xml:"start,attr"`
	End       string `xml:"end,attr"`
	Duration  string `xml:"duration,attr"`
	EventType string `xml:"sdnaEventType,attr"`
	Value     string `xml:"value,attr"`
}

type fcpxmlAssetClip struct {
	Name     string         `xml:"name,attr"`
	Ref      string         `xml:"ref,attr"`
	Offset   string         `xml:"offset,attr"`
	Start    string         `xml:"start,attr"`
	Duration string         `xml:"duration,attr"`
	Markers  []fcpxmlMarker `xml:"marker"`
}

// markers attach to the asset-clip when a source file is known, otherwise
// directly to the spine
type fcpxmlSpine struct {
	AssetClip *fcpxmlAssetClip `xml:"asset-clip,omitempty"`
	Markers   []fcpxmlMarker   `xml:"marker,omitempty"`
}

type fcpxmlSequence struct {
	Duration string      `xml:"duration,attr"`
	Format   string      `xml:"format,attr"`
	Spine    fcpxmlSpine `xml:"spine"`
}

type fcpxmlLibrary struct {
	Event struct {
		Name    string `xml:"name,attr"`
		Project struct {
			Name     string         `xml:"name,attr"`
			Sequence fcpxmlSequence `xml:"sequence"`
		} `xml:"project"`
	} `xml:"event"`
}

type fcpxmlDoc struct {
	XMLName   xml.Name        `xml:"fcpxml"`
	Version   string          `xml:"version,attr"`
	Resources fcpxmlResources `xml:"resources"`
	Library   fcpxmlLibrary   `xml:"library"`
}

// renderFCPXML builds the FCPXML 1.10 document for the given records.
func (g *Generator) renderFCPXML(records []event.Timed, kind event.Kind) ([]byte, error) {
	rate := g.rate()
	duration := timecode.ToXMLSeconds(g.media.DurationSeconds)

	doc := fcpxmlDoc{Version: "1.10"}
	doc.Resources.Format = fcpxmlFormat{
		ID:            "r1",
		Name:          fmt.Sprintf("FFVideoFormat%dp", g.media.Height),
		FrameDuration: rate.FrameDuration(),
		Width:         g.media.Width,
		Height:        g.media.Height,
	}

	if g.sourcePath != "" {
		doc.Resources.Asset = &fcpxmlAsset{
			ID:       "r2",
			Name:     g.clipName(),
			Src:      g.sourcePath,
			Start:    "0s",
			Duration: duration,
			HasVideo: "1",
			HasAudio: "1",
			Format:   "r1",
		}
	}

	label := titleFor(kind)
	doc.Library.Event.Name = fmt.Sprintf("AI %s Event", label)
	doc.Library.Event.Project.Name = fmt.Sprintf("AI %s Project", label)

	seq := &doc.Library.Event.Project.Sequence
	seq.Duration = duration
	seq.Format = "r1"

	var markers []fcpxmlMarker
	for _, rec := range records {
		span := rec.End - rec.Start
		if span < 0 {
			span = 0
		}
		markers = append(markers, fcpxmlMarker{
			ID:        rec.ID,
			Start:     timecode.ToXMLSeconds(rec.Start),
			End:       timecode.ToXMLSeconds(rec.End),
			Duration:  timecode.ToXMLSeconds(span),
			EventType: rec.EventType,
			Value:     rec.Value,
		})
	}

	if doc.Resources.Asset != nil {
		seq.Spine.AssetClip = &fcpxmlAssetClip{
			Name:     "video",
			Ref:      "r2",
			Offset:   "0s",
			Start:    "0s",
			Duration: duration,
			Markers:  markers,
		}
	} else {
		seq.Spine.Markers = markers
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal FCPXML: %w", err)
	}

	return []byte(xml.Header + string(body) + "\n"), nil
}

func titleFor(kind event.Kind) string {
	switch kind {
	case event.KindComments:
		return "Comments"
	case event.KindTranscript:
		return "Transcript"
	default:
		return "Events"
	}
}
