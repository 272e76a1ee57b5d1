package patients

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Field is one named clinical value from the source dataset. Field order is
// the CSV column order and is preserved so downstream formatting is stable.
type Field struct {
	Name  string
	Value string
}

// Record is one patient row. Treated as immutable once loaded.
type Record struct {
	PatientID string
	Fields    []Field
}

// Get returns the value for a field name and whether it exists.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// idColumns are the accepted patient identifier columns, in priority order.
// MIMIC-derived extracts use subject_id, flattened exports use patient_id.
var idColumns = []string{"patient_id", "subject_id"}

// Load reads a patient CSV into records, one per row, preserving column
// order. The header must contain a patient identifier column.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("patients: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("patients: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idx := -1
	for _, col := range idColumns {
		for i, h := range header {
			if h == col {
				idx = i
				break
			}
		}
		if idx >= 0 {
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("patients: %s has no %s column", path, strings.Join(idColumns, " or "))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("patients: read rows: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("patients: row %d has %d columns, header has %d", n+2, len(row), len(header))
		}
		id := strings.TrimSpace(row[idx])
		if id == "" {
			return nil, fmt.Errorf("patients: row %d has empty %s", n+2, header[idx])
		}
		fields := make([]Field, len(header))
		for i, h := range header {
			fields[i] = Field{Name: h, Value: strings.TrimSpace(row[i])}
		}
		records = append(records, Record{PatientID: id, Fields: fields})
	}
	return records, nil
}

// Sample returns n records drawn without replacement using the given seed.
// The same (records, n, seed) always yields the same sample. When n covers
// the whole input, all records are returned in a deterministically shuffled
// order.
func Sample(records []Record, n int, seed int64) []Record {
	if n <= 0 {
		return nil
	}
	shuffled := make([]Record, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
