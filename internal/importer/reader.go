package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Format is the container format of an imported file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no header row")
)

// Options tunes how a file is read.
type Options struct {
	Sheet     string
	Encoding  string // "utf-8", "latin1" or empty to detect
	Delimiter string // "," or ";" or empty to detect
	SkipRows  int
}

// Record is one data row keyed by canonical header name. Row is the line number as
// the user sees it in the source file.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the trimmed value of the first non-empty field among keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Fields[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of the keys carries a value.
func (r Record) Has(keys ...string) bool {
	return r.Get(keys...) != ""
}

// DetectFormat infers the file format from its extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ReadFile opens path and reads its records.
func ReadFile(path string, opts Options) ([]Record, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, format, opts)
}

// Read parses r as the given format.
func Read(r io.Reader, format Format, opts Options) ([]Record, error) {
	switch format {
	case FormatCSV:
		return readCSV(r, opts)
	case FormatXLSX:
		return readXLSX(r, opts)
	case FormatJSON:
		return readJSON(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader, opts Options) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	text, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	lines := strings.SplitAfterN(text, "\n", opts.SkipRows+2)
	if len(lines) <= opts.SkipRows {
		return nil, ErrEmptyFile
	}
	body := strings.Join(lines[opts.SkipRows:], "")

	cr := csv.NewReader(strings.NewReader(body))
	cr.Comma = delimiter(opts.Delimiter, lines[opts.SkipRows])
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toRecords(rows, opts.SkipRows)
}

// decode converts raw bytes to UTF-8. Without an explicit encoding, invalid UTF-8 is
// taken to be Latin-1, which is what spreadsheet tools export on Windows.
func decode(raw []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "-", "")) {
	case "", "utf8":
		if encoding != "" || utf8.Valid(raw) {
			return string(raw), nil
		}
		fallthrough
	case "latin1", "iso88591", "windows1252", "cp1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode latin-1: %w", err)
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unknown encoding %q", encoding)
}

// delimiter picks the configured separator, or whichever of ';' and ',' appears more in
// the header line.
func delimiter(configured, header string) rune {
	if configured != "" {
		if configured == `\t` {
			return '\t'
		}
		r, _ := utf8.DecodeRuneInString(configured)
		return r
	}
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func readXLSX(r io.Reader, opts Options) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= opts.SkipRows {
		return nil, ErrEmptyFile
	}
	return toRecords(rows[opts.SkipRows:], opts.SkipRows)
}

func toRecords(rows [][]string, offset int) ([]Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = CanonicalHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(headers))
		empty := true
		for j, v := range row {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				empty = false
			}
			// Repeated columns keep the first non-empty value.
			if fields[headers[j]] == "" {
				fields[headers[j]] = v
			}
		}
		if empty {
			continue
		}
		records = append(records, Record{Row: offset + i + 2, Fields: fields})
	}
	return records, nil
}

func readJSON(r io.Reader) ([]Record, error) {
	var items []map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("parse json: expected an array of objects: %w", err)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		fields := make(map[string]string, len(item))
		for k, v := range item {
			fields[CanonicalHeader(k)] = stringify(v)
		}
		records = append(records, Record{Row: i + 1, Fields: fields})
	}
	return records, nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
