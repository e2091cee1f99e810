// Package export serializes filtered record sets to downloadable CSV and
// JSON artifacts. Serialization is best effort: callers surface failures as
// a notification, never a crash.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// CSV writes a header row and one row per record with RFC 4180 quoting.
// Output is deterministic for identical input, so re-exporting the same
// filtered set is byte-identical.
func CSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			// Pad or trim malformed rows so one bad record degrades
			// that row, not the whole export.
			row = normalizeRow(row, len(headers))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func normalizeRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Envelope is the JSON export wrapper carrying metadata next to the rows.
type Envelope struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Scope       string            `json:"scope,omitempty"`
	Filters     map[string]string `json:"filters,omitempty"`
	Summary     any               `json:"summary,omitempty"`
	Count       int               `json:"count"`
	Data        any               `json:"data"`
}

// JSON writes a pretty-printed export envelope.
func JSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode export json: %w", err)
	}
	return nil
}

var filenameScrub = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename builds "<base>_<scope>_<YYYY-MM-DD>.<ext>" with whitespace in the
// scope collapsed to underscores. An empty or catch-all scope is omitted.
func Filename(base, scope string, ts time.Time, ext string) string {
	parts := []string{strings.TrimSpace(base)}
	scope = strings.TrimSpace(scope)
	if scope != "" && !strings.EqualFold(scope, "all") {
		scope = strings.Join(strings.Fields(scope), "_")
		scope = filenameScrub.ReplaceAllString(scope, "_")
		scope = strings.Trim(scope, "_")
		if scope != "" {
			parts = append(parts, scope)
		}
	}
	parts = append(parts, ts.UTC().Format("2006-01-02"))
	return strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, ".")
}
