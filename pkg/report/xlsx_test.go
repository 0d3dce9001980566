package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookWritesHeadersAndRows(t *testing.T) {
	payload, err := Workbook(
		Sheet{
			Name:    "Attendance",
			Headers: []string{"Employee", "Date", "Hours"},
			Rows: [][]interface{}{
				{"e1", "2026-03-02", 8.5},
				{"e2", "2026-03-02", 3.25},
			},
		},
		Sheet{Name: "Summary", Headers: []string{"Status", "Count"}, Rows: [][]interface{}{{"present", 2}}},
	)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer file.Close()

	require.Equal(t, []string{"Attendance", "Summary"}, file.GetSheetList())

	rows, err := file.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Employee", "Date", "Hours"}, rows[0])
	require.Equal(t, "e2", rows[2][0])
	require.Equal(t, "3.25", rows[2][2])
}

func TestWorkbookRequiresSheet(t *testing.T) {
	_, err := Workbook()
	require.Error(t, err)
}
