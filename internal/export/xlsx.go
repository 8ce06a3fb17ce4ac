package export

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const timetableSheet = "Horari"

// WriteXLSX writes the timetable as a single-sheet workbook: the title on the first row,
// weekday headers on the third and one row per time band below.
func WriteXLSX(w io.Writer, t Timetable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", timetableSheet); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDE4EE"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders(),
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    borders(),
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(timetableSheet, "A1", t.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(timetableSheet, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if t.Subtitle != "" {
		if err := f.SetCellValue(timetableSheet, "A2", t.Subtitle); err != nil {
			return err
		}
	}

	const headerRow = 3
	headers := append([]string{"Hora"}, dayHeaders(t.Days)...)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(timetableSheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), headerRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(timetableSheet, "A3", last, headerStyle); err != nil {
		return err
	}

	for i, r := range t.Rows {
		rowNum := headerRow + 1 + i
		values := []string{r.Label()}
		maxLines := 1
		for _, d := range t.Days {
			text, lines := cellText(r.Cells[d])
			values = append(values, text)
			if lines > maxLines {
				maxLines = lines
			}
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(timetableSheet, cell, v); err != nil {
				return err
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, rowNum)
		end, _ := excelize.CoordinatesToCellName(len(values), rowNum)
		if err := f.SetCellStyle(timetableSheet, first, end, cellStyle); err != nil {
			return err
		}
		if err := f.SetRowHeight(timetableSheet, rowNum, float64(15*maxLines)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(timetableSheet, "A", "A", 13); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(timetableSheet, "B", lastCol, 32); err != nil {
		return err
	}
	return f.Write(w)
}

func borders() []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "999999", Style: 1})
	}
	return out
}

func dayHeaders(days []int) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = dayHeader(d)
	}
	return out
}

// cellText joins the entries of a cell, a blank line between entries.
func cellText(entries []Entry) (string, int) {
	var parts []string
	lines := 0
	for _, e := range entries {
		l := e.Lines()
		parts = append(parts, strings.Join(l, "\n"))
		lines += len(l) + 1
	}
	return strings.Join(parts, "\n\n"), lines
}
