package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/signintech/gopdf"
)

const (
	pdfFont       = "timetable"
	pdfMargin     = 30.0
	pdfTimeCol    = 70.0
	pdfLineHeight = 11.0
	pdfFontSize   = 8
	pdfPadding    = 3.0
)

// WritePDF renders the timetable on landscape A4 pages, repeating the weekday header
// on every page. fontPath must point to a TrueType font covering Catalan accents.
func WritePDF(w io.Writer, t Timetable, fontPath string) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4Landscape})
	if err := pdf.AddTTFFont(pdfFont, fontPath); err != nil {
		return fmt.Errorf("load font %s: %w", fontPath, err)
	}

	page := gopdf.PageSizeA4Landscape
	dayCol := (page.W - 2*pdfMargin - pdfTimeCol) / float64(len(t.Days))
	bottom := page.H - pdfMargin

	y, err := newPage(pdf, t, dayCol)
	if err != nil {
		return err
	}

	for _, r := range t.Rows {
		cells := make([][]string, len(t.Days))
		lines := 1
		for i, d := range t.Days {
			wrapped, err := wrapEntries(pdf, r.Cells[d], dayCol-2*pdfPadding)
			if err != nil {
				return err
			}
			cells[i] = wrapped
			if len(wrapped) > lines {
				lines = len(wrapped)
			}
		}
		height := float64(lines)*pdfLineHeight + 2*pdfPadding

		if y+height > bottom {
			if y, err = newPage(pdf, t, dayCol); err != nil {
				return err
			}
		}

		pdf.RectFromUpperLeftWithStyle(pdfMargin, y, pdfTimeCol, height, "D")
		if err := printLines(pdf, pdfMargin, y, []string{r.Label()}); err != nil {
			return err
		}
		for i := range t.Days {
			x := pdfMargin + pdfTimeCol + float64(i)*dayCol
			pdf.RectFromUpperLeftWithStyle(x, y, dayCol, height, "D")
			if err := printLines(pdf, x, y, cells[i]); err != nil {
				return err
			}
		}
		y += height
	}

	return pdf.Write(w)
}

// newPage starts a page with the title and the weekday header, returning the y where
// the first row goes.
func newPage(pdf *gopdf.GoPdf, t Timetable, dayCol float64) (float64, error) {
	pdf.AddPage()
	if err := pdf.SetFont(pdfFont, "", 14); err != nil {
		return 0, err
	}
	pdf.SetXY(pdfMargin, pdfMargin)
	if err := pdf.Cell(nil, t.Title); err != nil {
		return 0, err
	}
	y := pdfMargin + 20
	if err := pdf.SetFont(pdfFont, "", pdfFontSize); err != nil {
		return 0, err
	}
	if t.Subtitle != "" {
		pdf.SetXY(pdfMargin, y)
		if err := pdf.Cell(nil, t.Subtitle); err != nil {
			return 0, err
		}
		y += 14
	}

	header := pdfLineHeight + 2*pdfPadding
	pdf.SetFillColor(221, 228, 238)
	pdf.RectFromUpperLeftWithStyle(pdfMargin, y, pdfTimeCol, header, "FD")
	if err := printLines(pdf, pdfMargin, y, []string{"Hora"}); err != nil {
		return 0, err
	}
	for i, d := range t.Days {
		x := pdfMargin + pdfTimeCol + float64(i)*dayCol
		pdf.RectFromUpperLeftWithStyle(x, y, dayCol, header, "FD")
		if err := printLines(pdf, x, y, []string{dayHeader(d)}); err != nil {
			return 0, err
		}
	}
	pdf.SetFillColor(255, 255, 255)
	return y + header, nil
}

func printLines(pdf *gopdf.GoPdf, x, y float64, lines []string) error {
	for i, l := range lines {
		if l == "" {
			continue
		}
		pdf.SetXY(x+pdfPadding, y+pdfPadding+float64(i)*pdfLineHeight)
		if err := pdf.Cell(nil, l); err != nil {
			return err
		}
	}
	return nil
}

// wrapEntries splits the entry lines of a cell to fit width, leaving a blank line
// between entries.
func wrapEntries(pdf *gopdf.GoPdf, entries []Entry, width float64) ([]string, error) {
	var out []string
	for i, e := range entries {
		if i > 0 {
			out = append(out, "")
		}
		for _, l := range e.Lines() {
			if strings.TrimSpace(l) == "" {
				continue
			}
			parts, err := pdf.SplitText(l, width)
			if err != nil {
				return nil, err
			}
			out = append(out, parts...)
		}
	}
	return out, nil
}
