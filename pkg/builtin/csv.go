package builtin

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVToJSON converts a CSV string with a header row into a slice of
// string-keyed records, adapted from the teacher's configurable CSV
// adapter down to the one shape the worked examples need: comma
// delimiter, header row, variable field counts tolerated per row.
func CSVToJSON(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("builtin: csv_to_json: unsupported input %T", value)
	}

	reader := csv.NewReader(strings.NewReader(s))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("builtin: csv_to_json: %w", err)
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	out := make([]map[string]string, 0, len(records)-1)
	for _, row := range records[1:] {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
