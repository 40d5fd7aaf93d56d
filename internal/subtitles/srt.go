package subtitles

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"clipper/internal/fileutil"
)

// Segment is one timed caption.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Negative values clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis / 60_000) % 60
	secs := (totalMillis / 1000) % 60
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT encodes segments as numbered SRT cues.
func WriteSRT(w io.Writer, segments []Segment) error {
	for i, seg := range segments {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), strings.TrimSpace(seg.Text)); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile atomically writes segments to path. No segments produce an empty
// file.
func WriteFile(path string, segments []Segment) error {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, segments); err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(path, buf.Bytes(), 0o644)
}

// CountCues returns the number of non-empty cue blocks in an SRT file.
func CountCues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return 0, nil
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}
