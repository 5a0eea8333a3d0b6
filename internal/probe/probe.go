package probe

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/sdnasoft/sparkpack/internal/event"
	ffmpegbin "github.com/sdnasoft/sparkpack/internal/ffmpeg"
)

// Info is the media metadata the artifact builders need: duration for the
// full-asset clip, resolution and frame rate for format elements.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
	FPS             string // rational string as ffprobe reports it, e.g. "30000/1001"
}

// raw ffprobe JSON shape
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		FrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Inspect runs ffprobe against the given media file and extracts duration,
// resolution, and frame rate from the first video stream. When ffprobe is
// not on the PATH, a cached or downloaded binary is used instead.
func Inspect(path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		return Info{}, fmt.Errorf("media file not readable: %w", err)
	}

	raw, err := ffmpeg.Probe(path)
	if err != nil {
		raw, err = probeResolved(path, err)
		if err != nil {
			return Info{}, err
		}
	}

	return parse(raw)
}

func probeResolved(path string, probeErr error) (string, error) {
	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return "", fmt.Errorf("ffprobe failed for %s: %w", path, probeErr)
	}

	out, err := exec.Command(ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return "", fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	return string(out), nil
}

func parse(raw string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := Info{}
	for _, s := range out.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = s.FrameRate
			break
		}
	}
	if info.FPS == "" {
		return Info{}, fmt.Errorf("no video stream in ffprobe output")
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse duration %q: %w", out.Format.Duration, err)
	}
	info.DurationSeconds = dur

	return info, nil
}

// Fallback synthesizes media info when no source file is resolvable:
// duration is taken from the latest record end (minimum 1 second) and the
// rest are stand-in 1080p/25fps values.
func Fallback(records []event.Record) Info {
	duration := event.MaxEnd(records)
	if duration <= 0 {
		duration = 1
	}
	return Info{
		DurationSeconds: duration,
		Width:           1920,
		Height:          1080,
		FPS:             "25/1",
	}
}
