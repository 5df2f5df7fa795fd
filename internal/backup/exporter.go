// Package backup exports Supabase tables to CSV and uploads the snapshots to
// the configured targets (Google Drive, S3). Exports are built in memory and
// streamed straight to the target; nothing touches local disk.
package backup

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Filename returns the snapshot name for a table, e.g. "leads_db_2026-08-29.csv".
func Filename(table string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", table, now.Format("2006-01-02"))
}

// ExportCSV renders rows as CSV. Columns are the union of all row keys in
// sorted order, so the layout is stable across runs regardless of JSON map
// ordering. An empty table produces an empty file.
func ExportCSV(rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if len(rows) == 0 {
		return buf.Bytes(), nil
	}

	cols := columnOrder(rows)
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	record := make([]string, len(cols))
	for i, row := range rows {
		for j, col := range cols {
			record[j] = cellString(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}

func columnOrder(rows []map[string]any) []string {
	seen := map[string]bool{}
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		// The fetch path decodes with UseNumber, so bigint values keep
		// every digit.
		return t.String()
	case float64:
		// Plain float64 maps still render without exponents.
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		// nested objects and arrays keep their JSON form
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
