package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("aules.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("/tmp/horaris.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("horaris.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSV_SemicolonLatin1(t *testing.T) {
	raw := "Codi;Nom;Capacitat\nG.0.1;Taller gr\xe0fic;24\n;;\nP.1.3;Aula te\xf2rica;40\n"

	records, err := Read(strings.NewReader(raw), FormatCSV, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "G.0.1", records[0].Get("code"))
	assert.Equal(t, "Taller gràfic", records[0].Get("name"))
	assert.Equal(t, "24", records[0].Get("capacity"))

	// Rows without values are dropped but keep their line number.
	assert.Equal(t, 4, records[1].Row)
	assert.Equal(t, "Aula teòrica", records[1].Get("name"))
}

func TestReadCSV_BOMAndSkipRows(t *testing.T) {
	raw := "\xEF\xBB\xBFAssignació docent 25/26\n\ncode,name\nA1, Dibuix \n"

	records, err := Read(strings.NewReader(raw), FormatCSV, Options{SkipRows: 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Row)
	assert.Equal(t, "Dibuix", records[0].Get("name"))
}

func TestReadCSV_ExplicitDelimiter(t *testing.T) {
	raw := "name|version\nBlender|4.1\n"

	records, err := Read(strings.NewReader(raw), FormatCSV, Options{Delimiter: "|"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "4.1", records[0].Get("version"))
}

func TestReadCSV_UnknownEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("a\n1\n"), FormatCSV, Options{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Nom"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Curs"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "Torn"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "GR1-M1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", "mati"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	data := buf.Bytes()

	records, err := Read(bytes.NewReader(data), FormatXLSX, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "GR1-M1", records[0].Get("name"))
	assert.Equal(t, "1", records[0].Get("year"))
	assert.Equal(t, "mati", records[0].Get("shift"))

	_, err = Read(bytes.NewReader(data), FormatXLSX, Options{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	raw := `[
		{"name": "Photoshop", "version": 2024, "operating_systems": ["windows", "macos"], "expiry_date": null},
		{"Name": "Blender", "free": true}
	]`

	records, err := Read(strings.NewReader(raw), FormatJSON, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Row)
	assert.Equal(t, "2024", records[0].Get("version"))
	assert.Equal(t, "windows, macos", records[0].Get("operating_systems"))
	assert.False(t, records[0].Has("expiry_date"))
	assert.Equal(t, "Blender", records[1].Get("name"))
	assert.Equal(t, "true", records[1].Get("free"))

	_, err = Read(strings.NewReader(`{"name": "x"}`), FormatJSON, Options{})
	assert.Error(t, err)
}

func TestRecordGet_FirstNonEmpty(t *testing.T) {
	r := Record{Fields: map[string]string{"teacher_code": " ", "teacher_email": "anna@bau.cat"}}
	assert.Equal(t, "anna@bau.cat", r.Get("teacher_code", "teacher_email"))
	assert.Equal(t, "", r.Get("missing"))
}
