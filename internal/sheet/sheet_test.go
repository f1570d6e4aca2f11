package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const marker = "Ready Order Number"

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("data/orders.XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)

	f, err = FormatOf("appointments.csv")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)

	_, err = FormatOf("orders.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeCSV_FindsHeaderBelowTitleRows(t *testing.T) {
	data := "\ufeffWeekly export,,\n,,\n Ready Order Number , Pick up Status ,Ready Date\nA100,Ready,10/15/2026\n,,\nB200, Fulfilled ,\n"

	tbl, err := Decode("orders.csv", []byte(data), marker)

	require.NoError(t, err)
	assert.Equal(t, []string{"Ready Order Number", "Pick up Status", "Ready Date"}, tbl.Header)
	require.Len(t, tbl.Rows, 2, "blank rows skipped")
	assert.Equal(t, "A100", tbl.Rows[0]["Ready Order Number"])
	assert.Equal(t, "10/15/2026", tbl.Rows[0]["Ready Date"])
	assert.Equal(t, "Fulfilled", tbl.Rows[1]["Pick up Status"])
}

func TestDecodeCSV_MarkerMissingUsesFirstRow(t *testing.T) {
	data := "OrderNumber,Appointment_Date\nA100,10/19/2026\nB200\n"

	tbl, err := Decode("appointments.csv", []byte(data), marker)

	require.NoError(t, err)
	assert.Equal(t, []string{"OrderNumber", "Appointment_Date"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Rows[1]["Appointment_Date"], "short rows padded")
}

func TestDecodeCSV_MarkerBeyondScanWindow(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < headerScanRows; i++ {
		buf.WriteString("note,x\n")
	}
	buf.WriteString("Ready Order Number,Ready Date\nA100,today\n")

	tbl, err := Decode("orders.csv", buf.Bytes(), marker)

	require.NoError(t, err)
	assert.Equal(t, []string{"note", "x"}, tbl.Header)
}

func TestDecodeEmpty(t *testing.T) {
	tbl, err := Decode("appointments.csv", nil, "")
	require.NoError(t, err)
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestEncodeCSV(t *testing.T) {
	cols := []string{"OrderNumber", "Appointment_Time"}
	out, err := Encode("appointments.csv", cols, []map[string]string{
		{"OrderNumber": "A100", "Appointment_Time": "9:00 AM"},
		{"OrderNumber": "B,200"},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t, "OrderNumber,Appointment_Time\nA100,9:00 AM\n\"B,200\",\n", string(out[len(utf8BOM):]))

	tbl, err := Decode("appointments.csv", out, "")
	require.NoError(t, err)
	assert.Equal(t, cols, tbl.Header)
	assert.Equal(t, "B,200", tbl.Rows[1]["OrderNumber"])
}

func TestXLSX_EncodeDecode(t *testing.T) {
	cols := []string{"OrderNumber", "Appointment_Date", "Customer_Email"}
	out, err := Encode("appointments.xlsx", cols, []map[string]string{
		{"OrderNumber": "A100", "Appointment_Date": "10/19/2026", "Customer_Email": "a@example.com"},
	})
	require.NoError(t, err)

	tbl, err := Decode("appointments.xlsx", out, "")
	require.NoError(t, err)
	assert.Equal(t, cols, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "a@example.com", tbl.Rows[0]["Customer_Email"])
}

func TestDecodeXLSX_HeaderDetection(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Pickup report"))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Ready Order Number", "Pick up Status"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"A100", "Ready"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Decode("orders.xlsx", buf.Bytes(), marker)

	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "A100", tbl.Rows[0]["Ready Order Number"])
	assert.Equal(t, "Ready", tbl.Rows[0]["Pick up Status"])
}

func TestDecodeXLSX_Corrupt(t *testing.T) {
	_, err := Decode("orders.xlsx", []byte("not a zip"), marker)
	assert.Error(t, err)
}
