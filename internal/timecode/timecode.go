package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToSRT formats seconds as an SRT timestamp (HH:MM:SS,mmm).
// The millisecond component is truncated, not rounded.
func ToSRT(seconds float64) string {
	h, m, s, frac := split(seconds)
	millis := int(frac * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}

// ToVTT formats seconds as a WebVTT timestamp (HH:MM:SS.mmm).
func ToVTT(seconds float64) string {
	h, m, s, frac := split(seconds)
	millis := int(frac * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, millis)
}

// ToSMPTE formats seconds as an SMPTE timecode (HH:MM:SS:FF) at the given
// frame rate. The frame component is truncated, matching the display
// timecode convention rather than the frame-index one.
func ToSMPTE(seconds float64, fps float64) string {
	h, m, s, frac := split(seconds)
	frames := int(frac * fps)
	return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, frames)
}

// ToXMLSeconds formats seconds as a fractional-second FCPXML time value,
// e.g. "3.500s".
func ToXMLSeconds(seconds float64) string {
	return fmt.Sprintf("%.3fs", seconds)
}

// FrameCount converts seconds to a frame index at the given frame rate,
// rounding to the nearest frame. Markers use rounded indices so their
// boundaries stay frame-accurate; truncating here would shift a marker by
// up to one frame relative to its source time.
func FrameCount(seconds float64, fps float64) int {
	return int(math.Round(seconds * fps))
}

func split(seconds float64) (hours, minutes, secs int, frac float64) {
	total := int(seconds)
	hours = total / 3600
	minutes = (total % 3600) / 60
	secs = total % 60
	frac = seconds - float64(total)
	return hours, minutes, secs, frac
}

// Rate is a frame rate expressed as a rational number, the way ffprobe
// reports it ("30000/1001", "25/1") or a bare integer string ("25").
type Rate struct {
	Num int
	Den int
}

// ParseRate parses a rational or integer frame-rate string.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, fmt.Errorf("empty frame rate")
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			return Rate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		d, err := strconv.Atoi(strings.TrimSpace(den))
		if err != nil {
			return Rate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		if n <= 0 || d <= 0 {
			return Rate{}, fmt.Errorf("invalid frame rate %q: non-positive term", s)
		}
		return Rate{Num: n, Den: d}, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if n <= 0 {
		return Rate{}, fmt.Errorf("invalid frame rate %q: non-positive", s)
	}
	return Rate{Num: n, Den: 1}, nil
}

// FPS returns the frame rate as a float (29.97002997... for 30000/1001).
func (r Rate) FPS() float64 {
	return float64(r.Num) / float64(r.Den)
}

// Timebase returns the rounded integer frame rate used by XMEML rate
// elements (30 for 30000/1001).
func (r Rate) Timebase() int {
	return int(math.Round(r.FPS()))
}

// FrameDuration returns the reciprocal per-frame duration string used by
// FCPXML format elements, e.g. "1001/30000s" for a 30000/1001 rate.
func (r Rate) FrameDuration() string {
	return fmt.Sprintf("%d/%ds", r.Den, r.Num)
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
