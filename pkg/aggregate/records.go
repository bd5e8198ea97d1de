package aggregate

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one input entry. Only the text is classified; Weight lets
// pre-aggregated inputs contribute more than one count (zero means one).
type Record struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight,omitempty"`
}

// ReadRecordsFile loads records from a file, picking the decoder from the
// extension: .csv uses [ReadCSV] (with the given text column), everything
// else is treated as JSON - either a top-level array of records or one JSON
// object per line.
func ReadRecordsFile(path, textColumn string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	return DecodeRecords(path, data, textColumn)
}

// DecodeRecords decodes records already held in memory. The decoder is
// picked from the extension of name, the file the bytes came from, exactly
// as [ReadRecordsFile] does. Callers that read the file once for hashing can
// decode the same bytes instead of re-reading the file.
func DecodeRecords(name string, data []byte, textColumn string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ReadCSV(bytes.NewReader(data), textColumn)
	}
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON decodes records from r. A leading '[' selects array form;
// anything else is decoded as JSON lines. Blank lines are skipped.
func ReadJSON(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	if first == '[' {
		var records []Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var records []Record
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("decode record on line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// ReadCSV decodes records from CSV input. The first row is a header; column
// selects the text field (default "text"). Rows with an empty text cell are
// skipped.
func ReadCSV(r io.Reader, column string) ([]Record, error) {
	if column == "" {
		column = "text"
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("csv has no %q column", column)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if col >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[col])
		if text == "" {
			continue
		}
		records = append(records, Record{Text: text})
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
