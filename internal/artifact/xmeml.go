package artifact

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/sdnasoft/sparkpack/internal/event"
	"github.com/sdnasoft/sparkpack/internal/timecode"
)

// XMEML (FCP7 / Premiere) sequence with one full-duration video clip
// carrying a marker per segment, plus two placeholder stereo audio tracks
// referencing the same source file.

type xmemlRate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type xmemlTimecode struct {
	Rate          xmemlRate `xml:"rate"`
	String        string    `xml:"string"`
	Frame         int       `xml:"frame"`
	DisplayFormat string    `xml:"displayformat"`
}

type xmemlSampleChars struct {
	Rate             *xmemlRate `xml:"rate,omitempty"`
	Width            int        `xml:"width,omitempty"`
	Height           int        `xml:"height,omitempty"`
	PixelAspectRatio string     `xml:"pixelaspectratio,omitempty"`
	FieldDominance   string     `xml:"fielddominance,omitempty"`
	Depth            int        `xml:"depth,omitempty"`
	SampleRate       int        `xml:"samplerate,omitempty"`
}

type xmemlFormat struct {
	SampleChars xmemlSampleChars `xml:"samplecharacteristics"`
}

type xmemlFileMedia struct {
	Video struct {
		SampleChars xmemlSampleChars `xml:"samplecharacteristics"`
	} `xml:"video"`
	Audio struct {
		SampleChars xmemlSampleChars `xml:"samplecharacteristics"`
	} `xml:"audio"`
}

type xmemlFile struct {
	ID       string         `xml:"id,attr"`
	Name     string         `xml:"name"`
	PathURL  string         `xml:"pathurl"`
	Rate     xmemlRate      `xml:"rate"`
	Duration int            `xml:"duration"`
	Media    xmemlFileMedia `xml:"media"`
}

type xmemlMarker struct {
	Name string `xml:"name"`
	In   int    `xml:"in"`
	Out  int    `xml:"out"`
}

type xmemlVideoClip struct {
	ID       string        `xml:"id,attr"`
	Name     string        `xml:"name"`
	Duration int           `xml:"duration"`
	Rate     xmemlRate     `xml:"rate"`
	Start    int           `xml:"start"`
	End      int           `xml:"end"`
	In       int           `xml:"in"`
	Out      int           `xml:"out"`
	File     xmemlFile     `xml:"file"`
	Markers  []xmemlMarker `xml:"marker"`
}

type xmemlFileRef struct {
	ID string `xml:"id,attr"`
}

type xmemlSourceTrack struct {
	MediaType  string `xml:"mediatype"`
	TrackIndex int    `xml:"trackindex"`
}

type xmemlAudioClip struct {
	ID          string           `xml:"id,attr"`
	Name        string           `xml:"name"`
	Duration    int              `xml:"duration"`
	Rate        xmemlRate        `xml:"rate"`
	Start       int              `xml:"start"`
	End         int              `xml:"end"`
	In          int              `xml:"in"`
	Out         int              `xml:"out"`
	File        xmemlFileRef     `xml:"file"`
	SourceTrack xmemlSourceTrack `xml:"sourcetrack"`
}

type xmemlSequence struct {
	Name     string        `xml:"name"`
	Duration int           `xml:"duration"`
	Rate     xmemlRate     `xml:"rate"`
	Timecode xmemlTimecode `xml:"timecode"`
	Media    struct {
		Video struct {
			Format xmemlFormat `xml:"format"`
			Track  struct {
				Clip xmemlVideoClip `xml:"clipitem"`
			} `xml:"track"`
		} `xml:"video"`
		Audio struct {
			Tracks []struct {
				Clip xmemlAudioClip `xml:"clipitem"`
			} `xml:"track"`
		} `xml:"audio"`
	} `xml:"media"`
}

type xmemlDoc struct {
	XMLName  xml.Name      `xml:"xmeml"`
	Version  string        `xml:"version,attr"`
	Sequence xmemlSequence `xml:"sequence"`
}

// renderXMEML builds the XMEML v4 document for the given segments.
func (g *Generator) renderXMEML(segments []event.Timed) ([]byte, error) {
	rate := xmemlRate{Timebase: g.rate().Timebase(), NTSC: "FALSE"}
	fps := float64(rate.Timebase)
	durationFrames := int(g.media.DurationSeconds * fps)

	doc := xmemlDoc{Version: "4"}
	seq := &doc.Sequence
	seq.Name = "AI Events Project"
	seq.Duration = durationFrames
	seq.Rate = rate
	seq.Timecode = xmemlTimecode{
		Rate:          rate,
		String:        "00:00:00:00",
		Frame:         0,
		DisplayFormat: "NDF",
	}

	seq.Media.Video.Format = xmemlFormat{SampleChars: xmemlSampleChars{
		Rate:             &rate,
		Width:            g.media.Width,
		Height:           g.media.Height,
		PixelAspectRatio: "square",
		FieldDominance:   "none",
	}}

	clip := &seq.Media.Video.Track.Clip
	clip.ID = "clipitem-1"
	clip.Name = g.clipName()
	clip.Duration = durationFrames
	clip.Rate = rate
	clip.Start = 0
	clip.End = durationFrames
	clip.In = 0
	clip.Out = durationFrames

	clip.File = xmemlFile{
		ID:       "file-1",
		Name:     g.clipName(),
		PathURL:  g.pathURL(),
		Rate:     rate,
		Duration: durationFrames,
	}
	clip.File.Media.Video.SampleChars = xmemlSampleChars{
		Rate:   &rate,
		Width:  g.media.Width,
		Height: g.media.Height,
	}
	clip.File.Media.Audio.SampleChars = xmemlSampleChars{
		Depth:      16,
		SampleRate: 48000,
	}

	for _, seg := range segments {
		label := seg.Value
		if seg.EventType != "" {
			label = fmt.Sprintf("[%s] %s", seg.EventType, seg.Value)
		}
		clip.Markers = append(clip.Markers, xmemlMarker{
			Name: label,
			In:   timecode.FrameCount(seg.Start, fps),
			Out:  timecode.FrameCount(seg.End, fps),
		})
	}

	for trackIndex := 1; trackIndex <= 2; trackIndex++ {
		track := struct {
			Clip xmemlAudioClip `xml:"clipitem"`
		}{}
		track.Clip = xmemlAudioClip{
			ID:          fmt.Sprintf("clipitem-%d", trackIndex+1),
			Name:        g.clipName(),
			Duration:    durationFrames,
			Rate:        rate,
			Start:       0,
			End:         durationFrames,
			In:          0,
			Out:         durationFrames,
			File:        xmemlFileRef{ID: "file-1"},
			SourceTrack: xmemlSourceTrack{MediaType: "audio", TrackIndex: trackIndex},
		}
		seq.Media.Audio.Tracks = append(seq.Media.Audio.Tracks, track)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XMEML: %w", err)
	}

	// the DOCTYPE goes between the declaration and the root element
	out := xml.Header + "<!DOCTYPE xmeml>\n" + string(body) + "\n"
	return []byte(out), nil
}

func (g *Generator) pathURL() string {
	if g.sourcePath == "" {
		return ""
	}
	abs, err := filepath.Abs(g.sourcePath)
	if err != nil {
		abs = g.sourcePath
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
