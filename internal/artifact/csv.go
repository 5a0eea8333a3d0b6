package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/sdnasoft/sparkpack/internal/event"
)

// renderCSV writes records as flat rows with a fixed column order. A
// record missing a field leaves its cell empty; fields outside the header
// set are not emitted.
func renderCSV(records []event.Record, withSource bool) ([]byte, error) {
	header := []string{"id", "sdnaEventType", "eventValue", "start", "end"}
	if withSource {
		header = append(header, "source")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{r.ID, r.EventType, r.Value, floatCell(r.Start), floatCell(r.End)}
		if withSource {
			row = append(row, r.Source)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
