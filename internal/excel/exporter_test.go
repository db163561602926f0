package excel

import (
	"bytes"
	"testing"

	"github.com/example/sleepbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func diary() *models.User {
	u := models.NewUser(5, "Ann")
	notes := "slept great"
	done := &models.Cycle{Date: "2024-03-01", SleepTime: "23:00:00", SleepInstant: 0, Quality: 9, Notes: &notes}
	done.Finish(7.5*3600, "06:30:00")
	u.PutCycle(done)
	u.PutCycle(&models.Cycle{Date: "2024-03-02", SleepTime: "22:45:00", SleepInstant: 86000})
	return u
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(diary(), FormatXLSX, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"2024-03-01", "23:00:00", "06:30:00", "7.5", "9", "slept great"}, rows[1])
	// trailing empty cells are trimmed by GetRows
	assert.Equal(t, []string{"2024-03-02", "22:45:00"}, rows[2])
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(diary(), FormatCSV, &buf))

	want := "Date,Sleep,Wake,Duration (h),Quality,Notes\n" +
		"2024-03-01,23:00:00,06:30:00,7.5,9,slept great\n" +
		"2024-03-02,22:45:00,,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "sleep-diary-5.csv", FileName(diary(), FormatCSV))
}
