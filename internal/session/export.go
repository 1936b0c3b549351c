package session

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ExportCSV converts a JSONL session file to CSV.
//
// Column order is deterministic: timestamp and event_type first, then
// the union of all remaining field names sorted lexically. Fields absent
// from a record render as empty cells. The CSV is also written beside
// the source file with a .csv extension.
//
// Parameters:
//   - path: Path to the .jsonl session file
//
// Returns:
//   - string: The CSV text
//   - error: If the session file cannot be read or parsed
func ExportCSV(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening session file: %w", err)
	}
	defer file.Close()

	var rows []map[string]any
	fieldSet := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return "", fmt.Errorf("parsing session record: %w", err)
		}
		rows = append(rows, record)
		for key := range record {
			fieldSet[key] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading session file: %w", err)
	}

	columns := columnOrder(fieldSet)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if value, ok := row[col]; ok {
				cells[i] = renderCell(value)
			}
		}
		if err := w.Write(cells); err != nil {
			return "", fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}

	csvText := sb.String()

	csvPath := strings.TrimSuffix(path, ".jsonl") + ".csv"
	if err := os.WriteFile(csvPath, []byte(csvText), filePermissions); err != nil {
		return "", fmt.Errorf("writing CSV file: %w", err)
	}

	return csvText, nil
}

// columnOrder builds the deterministic header: the envelope fields
// first, everything else sorted.
func columnOrder(fieldSet map[string]struct{}) []string {
	var columns []string
	for _, priority := range []string{"timestamp", "event_type"} {
		if _, ok := fieldSet[priority]; ok {
			columns = append(columns, priority)
		}
	}

	var rest []string
	for key := range fieldSet {
		if key == "timestamp" || key == "event_type" {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

// renderCell formats a decoded JSON value for CSV output.
// Numbers decode as float64; integral values render without a fraction.
func renderCell(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
