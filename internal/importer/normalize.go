package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents strips combining marks ("Gràfic" → "Grafic").
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var nonHeader = regexp.MustCompile(`[^a-z0-9]+`)

// headerAliases maps the Catalan column names found in the school's spreadsheets.
var headerAliases = map[string]string{
	"codi":           "code",
	"nom":            "name",
	"cognoms":        "last_name",
	"correu":         "email",
	"correu_e":       "email",
	"departament":    "department",
	"contracte":      "contract_type",
	"hores_maximes":  "max_hours",
	"edifici":        "building",
	"planta":         "floor",
	"capacitat":      "capacity",
	"tipus":          "type",
	"disponible":     "is_available",
	"curs":           "year",
	"torn":           "shift",
	"grup":           "group_code",
	"grups":          "groups",
	"aula":           "classrooms",
	"aules":          "classrooms",
	"dia":            "day",
	"inici":          "start_time",
	"hora_inici":     "start_time",
	"fi":             "end_time",
	"hora_fi":        "end_time",
	"setmanes":       "weeks",
	"assignatura":    "subject_code",
	"codi_professor": "teacher_code",
	"grup_estudiant": "student_group",
	"versio":         "version",
	"categoria":      "category",
	"llicencia":      "license_type",
	"caducitat":      "expiry_date",
	"proveidor":      "provider_name",
	"pla_estudis":    "program_code",
	"pla_d_estudis":  "program_code",
}

// CanonicalHeader lower-cases and folds a column name to snake_case, resolving the
// Catalan aliases ("Codi Professor" → "teacher_code").
func CanonicalHeader(h string) string {
	h = strings.ToLower(FoldAccents(strings.TrimSpace(h)))
	h = strings.Trim(nonHeader.ReplaceAllString(h, "_"), "_")
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// ClassroomCodes splits a free-text classroom cell into codes, dropping notes in
// parentheses: "P.1.3 (aula), P.1.4 / G.0.2" → [P.1.3 P.1.4 G.0.2].
func ClassroomCodes(s string) []string {
	s = parenthetical.ReplaceAllString(s, "")
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == '+'
	})
	seen := make(map[string]bool, len(parts))
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		codes = append(codes, p)
	}
	return codes
}

// CodeVariants returns the lookup keys a classroom code may be written as: verbatim,
// upper-case and without dots.
func CodeVariants(code string) []string {
	code = strings.TrimSpace(code)
	dotless := strings.ReplaceAll(strings.ReplaceAll(code, ".", ""), " ", "")
	candidates := []string{code, strings.ToUpper(code), dotless, strings.ToUpper(dotless)}

	out := candidates[:0]
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

var floorPattern = regexp.MustCompile(`\.(-?\d+)\.`)

// FloorFromCode extracts the floor from codes shaped like "G.0.1" or "L.1.2".
func FloorFromCode(code string) (int, bool) {
	m := floorPattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

var shiftCode = regexp.MustCompile(`(?i)-([MT])[0-9]*$|-[A-Z]([mt])[0-9]*$`)

// InferShift guesses the shift of a student group from its name: an explicit
// "tarda"/"mati", or the trailing code of names like "GR1-T2" or "GR3-Gt".
// Groups default to the morning.
func InferShift(name string) model.Shift {
	lower := strings.ToLower(FoldAccents(name))
	switch {
	case strings.Contains(lower, "tarda"):
		return model.ShiftAfternoon
	case strings.Contains(lower, "mati"):
		return model.ShiftMorning
	}
	m := shiftCode.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return model.ShiftMorning
	}
	if strings.EqualFold(m[1], "t") || strings.EqualFold(m[2], "t") {
		return model.ShiftAfternoon
	}
	return model.ShiftMorning
}

var yearInName = regexp.MustCompile(`[A-Za-z]+(\d)`)

// YearFromGroupName reads the course year from names like "GR2-M1".
func YearFromGroupName(name string) (int, bool) {
	m := yearInName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return n, n > 0
}

// SplitTeacherName splits "Last, First" or "First Last Last" into first and last name.
// Spanish and Catalan names usually carry two surnames, so without a comma the first
// word is the given name.
func SplitTeacherName(full string) (first, last string) {
	full = strings.Join(strings.Fields(full), " ")
	if i := strings.Index(full, ","); i >= 0 {
		return strings.TrimSpace(full[i+1:]), strings.TrimSpace(full[:i])
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// ParseBool accepts the yes/no spellings found in spreadsheets.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(FoldAccents(strings.TrimSpace(s))) {
	case "1", "true", "yes", "y", "si", "s", "x", "cert":
		return true, nil
	case "0", "false", "no", "n", "fals":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseFloat accepts a comma as decimal separator ("4,5").
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// ParseInt accepts integers written as "30" or "30.0".
func ParseInt(s string) (int, error) {
	f, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// SplitList splits a cell holding several values separated by ',', ';' or '/'.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
