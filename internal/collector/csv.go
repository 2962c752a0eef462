package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"FuzzyDecision/internal/model"
	"FuzzyDecision/internal/strategy"
)

// MinColumns is the identifier column plus one column per indicator.
const MinColumns = 1 + strategy.NumVariables

// Parse reads a header line followed by data rows. Shape errors on the
// header or an empty table fail the whole load; a malformed data row is
// kept with its Err set.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, strategy.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < MinColumns {
		return nil, fmt.Errorf("header has %d columns, need %d: %w", len(header), MinColumns, strategy.ErrInsufficientVariables)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Headers: header}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				t.Rows = append(t.Rows, model.Row{Line: line, Err: fmt.Errorf("line %d: %w", line, err)})
				continue
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		t.Rows = append(t.Rows, parseRecord(line, rec))
	}
	if len(t.Rows) == 0 {
		return nil, strategy.ErrEmptyInput
	}
	return t, nil
}

func parseRecord(line int, rec []string) model.Row {
	row := model.Row{Line: line}
	if len(rec) > 0 {
		row.ID = strings.TrimSpace(rec[0])
	}
	if len(rec) < MinColumns {
		row.Err = fmt.Errorf("line %d has %d columns: %w", line, len(rec), strategy.ErrInsufficientVariables)
		return row
	}
	vals := make([]float64, strategy.NumVariables)
	for i := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			row.Err = fmt.Errorf("line %d column %d: %w", line, i+1, strategy.ErrNonNumericInput)
			return row
		}
		vals[i] = f
	}
	row.Indicators = model.Indicators{RSI: vals[0], MACD: vals[1], ADX: vals[2]}
	return row
}

// FileSource reads a CSV table from disk.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "file:" + f.Path }

func (f *FileSource) Load(_ context.Context) (*Table, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer fh.Close()
	t, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return t, nil
}
