package scanfile

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, header []string, rows [][]string) io.Reader {
	t.Helper()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)

	cell, err := excelize.CoordinatesToCellName(1, 1)
	require.NoError(t, err)
	require.NoError(t, workbook.SetSheetRow(sheet, cell, &header))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cell, &row))
	}

	buf, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseReturnsRowsInFileOrder(t *testing.T) {
	file := buildWorkbook(t,
		[]string{"rfid", "cpid", "timestamp"},
		[][]string{
			{"RFID001", "L1_CP1", "2024-03-01 08:00:00"},
			{"RFID002", "L2_CP3", "2024-03-01 08:05:00"},
			{"RFID001", "L1_CP2", "2024-03-01 08:10:00"},
		},
	)

	batch, err := Parse(file)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 3)

	assert.Equal(t, Row{RFID: "RFID001", CPID: "L1_CP1", Timestamp: "2024-03-01 08:00:00"}, batch.Rows[0])
	assert.Equal(t, "RFID002", batch.Rows[1].RFID)
	assert.Equal(t, "L1_CP2", batch.Rows[2].CPID)
}

func TestParseHeaderIsCaseInsensitive(t *testing.T) {
	file := buildWorkbook(t,
		[]string{" RFID ", "Cpid", "TIMESTAMP"},
		[][]string{{"RFID001", "L1_CP1", "2024-03-01 08:00:00"}},
	)

	batch, err := Parse(file)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
}

func TestParseIgnoresExtraColumnsAndBlankRows(t *testing.T) {
	file := buildWorkbook(t,
		[]string{"sno", "rfid", "cpid", "timestamp", "remarks"},
		[][]string{
			{"1", "RFID001", "L1_CP1", "2024-03-01 08:00:00", "ok"},
			{"", "", "", "", ""},
			{"2", "RFID002", "L1_CP2", "2024-03-01 08:05:00", ""},
		},
	)

	batch, err := Parse(file)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, "RFID002", batch.Rows[1].RFID)
}

func TestParseReportsMissingColumns(t *testing.T) {
	file := buildWorkbook(t,
		[]string{"rfid", "cpid"},
		[][]string{{"RFID001", "L1_CP1"}},
	)

	_, err := Parse(file)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"timestamp"}, schemaErr.Missing)
	assert.Contains(t, schemaErr.Error(), "timestamp")
}

func TestParseReportsAllMissingColumnsSorted(t *testing.T) {
	file := buildWorkbook(t, []string{"remarks"}, nil)

	_, err := Parse(file)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"cpid", "rfid", "timestamp"}, schemaErr.Missing)
}

func TestParseRejectsMalformedStream(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("not a spreadsheet"))
	assert.ErrorIs(t, err, ErrMalformedFile)

	_, err = Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMalformedFile)
}

func TestParseShortRowsPadMissingCells(t *testing.T) {
	file := buildWorkbook(t,
		[]string{"rfid", "cpid", "timestamp"},
		[][]string{{"RFID001"}},
	)

	batch, err := Parse(file)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "", batch.Rows[0].CPID)
	assert.Equal(t, "", batch.Rows[0].Timestamp)
}
