package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/sleepbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the sheet the diary is written to
const SheetName = "Sheet1"

var header = []string{"Date", "Sleep", "Wake", "Duration (h)", "Quality", "Notes"}

// ParseFormat maps user input to a format; empty input means xlsx
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName returns the attachment name for a user's diary
func FileName(u *models.User, format Format) string {
	return fmt.Sprintf("sleep-diary-%d.%s", u.ChatID, format)
}

// Export writes every cycle of u, in iteration order, to w
func Export(u *models.User, format Format, w io.Writer) error {
	switch format {
	case FormatCSV:
		return exportCSV(u, w)
	case FormatXLSX:
		return exportXLSX(u, w)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func exportXLSX(u *models.User, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, toInterfaces(header)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range u.Cycles() {
		if err := writeRow(f, i+2, cycleValues(c)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "C", 12); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "F", "F", 48); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// cycleValues renders a cycle as a row; unset fields become empty cells
func cycleValues(c *models.Cycle) []interface{} {
	values := []interface{}{c.Date, c.SleepTime, c.WakeTime, "", "", ""}
	if c.DurationHours != nil {
		values[3] = *c.DurationHours
	}
	if c.Quality != 0 {
		values[4] = c.Quality
	}
	if c.Notes != nil {
		values[5] = *c.Notes
	}
	return values
}

func exportCSV(u *models.User, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range u.Cycles() {
		values := cycleValues(c)
		record := make([]string, len(values))
		for i, v := range values {
			switch v := v.(type) {
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func toInterfaces(ss []string) []interface{} {
	res := make([]interface{}, len(ss))
	for i, s := range ss {
		res[i] = s
	}
	return res
}
