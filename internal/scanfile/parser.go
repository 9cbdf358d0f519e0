// Package scanfile reads uploaded checkpoint scan batches. A batch is the
// first sheet of an xlsx workbook with a header row naming at least the
// rfid, cpid and timestamp columns.
package scanfile

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrMalformedFile = errors.New("file is not a readable spreadsheet")

// SchemaError reports required columns absent from the header row. The
// check runs once per batch, never per row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

var requiredColumns = []string{"rfid", "cpid", "timestamp"}

// Row is one raw scan record in file order. Timestamp is kept as the raw
// cell value; the ingest pipeline owns its interpretation.
type Row struct {
	RFID      string
	CPID      string
	Timestamp string
}

type Batch struct {
	Rows []Row
}

// Parse reads the whole batch from r. It returns ErrMalformedFile when the
// stream is not an xlsx workbook and *SchemaError when required columns are
// missing. Blank rows are dropped at this level and are not data rows.
func Parse(r io.Reader) (*Batch, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrMalformedFile
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, ErrMalformedFile
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, ErrMalformedFile
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: append([]string(nil), requiredColumns...)}
	}

	columns := map[string]int{}
	for idx, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Missing: missing}
	}

	batch := &Batch{}
	for _, cells := range rows[1:] {
		row := Row{
			RFID:      cellAt(cells, columns["rfid"]),
			CPID:      cellAt(cells, columns["cpid"]),
			Timestamp: cellAt(cells, columns["timestamp"]),
		}
		if row.RFID == "" && row.CPID == "" && row.Timestamp == "" {
			continue
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}

// cellAt tolerates short rows: excelize trims trailing empty cells.
func cellAt(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
