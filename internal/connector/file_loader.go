package connector

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// DefaultMaxFileSizeMB is the largest data file the loader accepts by default
const DefaultMaxFileSizeMB = 100

// ErrFileTooLarge is returned for data files above the loader's size limit
var ErrFileTooLarge = errors.New("data file too large")

// FileLoader reads CSV, Excel and JSON files into tables
type FileLoader struct {
	// MaxFileSizeMB rejects larger files; zero or less disables the check
	MaxFileSizeMB int
	Logger        *logrus.Logger
}

// NewFileLoader creates a new file loader
func NewFileLoader(logger *logrus.Logger) *FileLoader {
	return &FileLoader{MaxFileSizeMB: DefaultMaxFileSizeMB, Logger: logger}
}

// Load reads a data file, choosing the reader from the file extension.
// The table is named after the file without its extension and headers are cleaned.
func (fl *FileLoader) Load(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open data file %s: %w", path, err)
	}
	if fl.MaxFileSizeMB > 0 {
		sizeMB := float64(info.Size()) / (1024 * 1024)
		if sizeMB > float64(fl.MaxFileSizeMB) {
			return nil, fmt.Errorf("%w: %.1fMB (max: %dMB)", ErrFileTooLarge, sizeMB, fl.MaxFileSizeMB)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var table *Table
	switch ext {
	case ".csv", ".txt":
		table, err = fl.loadCSV(path, name)
	case ".xlsx", ".xlsm":
		table, err = fl.loadExcel(path, name)
	case ".json":
		table, err = fl.loadJSON(path, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	table.Headers = CleanHeaders(table.Headers)
	fl.Logger.Infof("Loaded %d rows and %d columns from %s", table.NumRows(), len(table.Headers), path)
	return table, nil
}

// loadCSV reads a comma separated file with a header row
func (fl *FileLoader) loadCSV(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySource
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	return newTable(name, headers, records[1:]), nil
}

// loadExcel reads the first sheet of a workbook
func (fl *FileLoader) loadExcel(path, name string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fl.Logger.Warningf("Error closing workbook %s: %v", path, err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}
	if len(sheets) > 1 {
		fl.Logger.Debugf("Workbook %s has %d sheets, reading %s", path, len(sheets), sheets[0])
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	return newTable(name, rows[0], rows[1:]), nil
}

// loadJSON reads an array of records, an object holding one under "data" or
// "records", or a single record. Headers follow the order keys are first seen.
func (fl *FileLoader) loadJSON(path, name string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	var top json.RawMessage
	if err := json.Unmarshal(content, &top); err != nil {
		return nil, fmt.Errorf("failed to parse JSON %s: %w", path, err)
	}

	var records []json.RawMessage
	switch firstByte(top) {
	case '[':
		if err := json.Unmarshal(top, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON %s: %w", path, err)
		}
	case '{':
		keys, values, err := decodeObject(top)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON %s: %w", path, err)
		}
		records = []json.RawMessage{top}
		for _, key := range []string{"data", "records"} {
			if _, ok := values[key]; !ok {
				continue
			}
			if err := json.Unmarshal(values[key], &records); err != nil {
				return nil, fmt.Errorf("JSON %s: %q must be an array of records: %w", path, key, err)
			}
			break
		}
		fl.Logger.Debugf("JSON %s top-level keys: %v", path, keys)
	default:
		return nil, fmt.Errorf("JSON %s: structure not supported, expected an array or an object", path)
	}

	var headers []string
	index := make(map[string]int)
	parsed := make([]map[string]json.RawMessage, 0, len(records))
	for i, rec := range records {
		if firstByte(rec) != '{' {
			return nil, fmt.Errorf("JSON %s: record %d is not an object", path, i)
		}
		keys, values, err := decodeObject(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON %s record %d: %w", path, i, err)
		}
		for _, key := range keys {
			if _, ok := index[key]; !ok {
				index[key] = len(headers)
				headers = append(headers, key)
			}
		}
		parsed = append(parsed, values)
	}
	if len(headers) == 0 {
		return nil, ErrEmptySource
	}

	rows := make([][]string, len(parsed))
	for i, values := range parsed {
		row := make([]string, len(headers))
		for key, raw := range values {
			row[index[key]] = jsonCell(raw)
		}
		rows[i] = row
	}
	return newTable(name, headers, rows), nil
}

// decodeObject returns the keys of a JSON object in document order with their raw values
func decodeObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = value
	}
	return keys, values, nil
}

// jsonCell renders a JSON value as a table cell; null becomes empty
func jsonCell(raw json.RawMessage) string {
	switch firstByte(raw) {
	case 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}
	return string(bytes.TrimSpace(raw))
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
