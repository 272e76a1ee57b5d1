package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/clinicaldss/trialscreen/internal/screening"
)

var csvHeader = []string{"patient_id", "trial_id", "decision", "explanation", "raw_response", "screened_at"}

// CSVSink appends screening rows to a CSV file. The file is append-only:
// opening an existing sink never rewrites prior rows, and the header is
// written only when the file is new or empty.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

// OpenCSV opens (or creates) the sink at path.
func OpenCSV(path string) (*CSVSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("results: open sink %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("results: stat sink %s: %w", path, err)
	}

	sink := &CSVSink{file: file, writer: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := sink.write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("results: write header: %w", err)
		}
	}
	return sink, nil
}

// Append writes one row and flushes it to the file. Any write error is
// returned so the caller can abort the batch rather than lose rows silently.
func (s *CSVSink) Append(row Row) error {
	if s == nil || s.writer == nil {
		return fmt.Errorf("results: sink not open")
	}
	return s.write([]string{
		row.PatientID,
		row.TrialID,
		string(row.Decision),
		row.Explanation,
		row.RawResponse,
		row.ScreenedAt.UTC().Format(time.RFC3339),
	})
}

func (s *CSVSink) write(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close closes the underlying file.
func (s *CSVSink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// ReadCSV loads all rows from a sink file, for summaries and the dashboard
// collaborator.
func ReadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("results: read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("results: %s has %d columns, want %d", path, len(header), len(csvHeader))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("results: read row: %w", err)
		}
		screenedAt, err := time.Parse(time.RFC3339, record[5])
		if err != nil {
			return nil, fmt.Errorf("results: parse screened_at %q: %w", record[5], err)
		}
		rows = append(rows, Row{
			PatientID:   record[0],
			TrialID:     record[1],
			Decision:    screening.Decision(record[2]),
			Explanation: record[3],
			RawResponse: record[4],
			ScreenedAt:  screenedAt,
		})
	}
	return rows, nil
}
