package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultSemesterWeeks is the number of teaching weeks in a semester.
const DefaultSemesterWeeks = 15

// WeekSet is a set of teaching weeks, numbered from 1.
type WeekSet map[int]struct{}

// FullSemester returns weeks 1..n.
func FullSemester(n int) WeekSet {
	ws := make(WeekSet, n)
	for w := 1; w <= n; w++ {
		ws[w] = struct{}{}
	}
	return ws
}

// NewWeekSet builds a set from explicit week numbers. An empty selection means
// the whole semester of n weeks.
func NewWeekSet(weeks []int, n int) WeekSet {
	if len(weeks) == 0 {
		return FullSemester(n)
	}
	ws := make(WeekSet, len(weeks))
	for _, w := range weeks {
		if w >= 1 && w <= n {
			ws[w] = struct{}{}
		}
	}
	return ws
}

// Has reports whether week w is in the set.
func (ws WeekSet) Has(w int) bool {
	_, ok := ws[w]
	return ok
}

// Intersect returns the weeks present in both sets.
func (ws WeekSet) Intersect(o WeekSet) WeekSet {
	small, big := ws, o
	if len(big) < len(small) {
		small, big = big, small
	}
	out := make(WeekSet)
	for w := range small {
		if big.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Union returns the weeks present in either set.
func (ws WeekSet) Union(o WeekSet) WeekSet {
	out := make(WeekSet, len(ws)+len(o))
	for w := range ws {
		out[w] = struct{}{}
	}
	for w := range o {
		out[w] = struct{}{}
	}
	return out
}

// Sorted lists the weeks in ascending order.
func (ws WeekSet) Sorted() []int {
	out := make([]int, 0, len(ws))
	for w := range ws {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

// IsFull reports whether the set covers weeks 1..n.
func (ws WeekSet) IsFull(n int) bool {
	if len(ws) < n {
		return false
	}
	for w := 1; w <= n; w++ {
		if !ws.Has(w) {
			return false
		}
	}
	return true
}

// String renders the set compactly: "1-5, 8, 10-11".
func (ws WeekSet) String() string {
	weeks := ws.Sorted()
	if len(weeks) == 0 {
		return ""
	}

	var parts []string
	start, prev := weeks[0], weeks[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, w := range weeks[1:] {
		if w == prev+1 {
			prev = w
			continue
		}
		flush()
		start, prev = w, w
	}
	flush()

	return strings.Join(parts, ", ")
}

var rangeDash = regexp.MustCompile(`\s*-\s*`)

// ParseWeeks reads a week list such as "1-5, 8; 10" into sorted week numbers.
// An empty string yields nil (full semester).
func ParseWeeks(s string, n int) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "totes") || strings.EqualFold(s, "all") {
		return nil, nil
	}

	s = rangeDash.ReplaceAllString(s, "-")

	ws := make(WeekSet)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
		lo, hi := tok, tok
		if i := strings.Index(tok, "-"); i > 0 {
			lo, hi = tok[:i], tok[i+1:]
		}
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid week %q", tok)
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid week %q", tok)
		}
		if a > b || a < 1 || b > n {
			return nil, fmt.Errorf("week range %q outside 1-%d", tok, n)
		}
		for w := a; w <= b; w++ {
			ws[w] = struct{}{}
		}
	}
	return ws.Sorted(), nil
}
