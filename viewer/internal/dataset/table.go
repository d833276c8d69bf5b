package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// TimeColumn is the name of the time axis column, in seconds.
const TimeColumn = "Time"

var ErrMalformedTable = errors.New("malformed EEG table")

// Table is one loaded EEG recording: the time axis plus one amplitude
// column (µV) per channel. Channels keeps the file's column order.
type Table struct {
	Time     []float64
	Channels []string
	Values   map[string][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Time)
}

// Column returns the values of a channel and whether it exists.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.Values[name]
	return v, ok
}

// HasChannel reports whether name is one of the table's channel columns.
func (t *Table) HasChannel(name string) bool {
	_, ok := t.Values[name]
	return ok
}

// ParseTable reads a comma-separated EEG table with a header row
// Time,<channel1>,<channel2>,...
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrMalformedTable, err)
	}

	timeIdx := -1
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[i] = name
		if name == TimeColumn {
			if timeIdx >= 0 {
				return nil, fmt.Errorf("%w: duplicate %s column", ErrMalformedTable, TimeColumn)
			}
			timeIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: missing %s column", ErrMalformedTable, TimeColumn)
	}

	table := &Table{
		Channels: make([]string, 0, len(columns)-1),
		Values:   make(map[string][]float64, len(columns)-1),
	}
	for i, name := range columns {
		if i == timeIdx {
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("%w: empty column name at position %d", ErrMalformedTable, i+1)
		}
		if _, dup := table.Values[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedTable, name)
		}
		table.Channels = append(table.Channels, name)
		table.Values[name] = nil
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: invalid record at line %d: %v", ErrMalformedTable, line, err)
		}

		for i, field := range record {
			value, err := parseCell(field)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid value %q in column %s at line %d", ErrMalformedTable, field, columns[i], line)
			}
			if i == timeIdx {
				table.Time = append(table.Time, value)
				continue
			}
			table.Values[columns[i]] = append(table.Values[columns[i]], value)
		}
	}

	return table, nil
}

// parseCell treats an empty cell as a missing sample.
func parseCell(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(field, 64)
}
