// Package matching finds catalogue entries that name the same thing in different
// spellings, e.g. subjects typed by hand in several spreadsheets.
package matching

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// MatchType grades how close two names are.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchHigh    MatchType = "high"
	MatchMedium  MatchType = "medium"
	MatchPartial MatchType = "partial"
)

const (
	highThreshold    = 85
	mediumThreshold  = 70
	partialThreshold = 60
	partsRatio       = 0.7
	significantLen   = 3
)

var rank = map[MatchType]int{MatchPartial: 1, MatchMedium: 2, MatchHigh: 3, MatchExact: 4}

// AtLeast reports whether t is as strong as min.
func (t MatchType) AtLeast(min MatchType) bool {
	return rank[t] >= rank[min]
}

// ParseMatchType accepts a match type name, defaulting to medium.
func ParseMatchType(s string) MatchType {
	t := MatchType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[t]; ok {
		return t
	}
	return MatchMedium
}

// Match is the outcome of comparing two names.
type Match struct {
	Type       MatchType `json:"match_type"`
	Similarity int       `json:"similarity"`
}

var (
	elision     = regexp.MustCompile(`\b([dl])['’]`)
	nonWord     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	conjunction = regexp.MustCompile(`(^| )i( |$)`)
)

// Normalize lower-cases, folds accents, expands the Catalan elisions d' and l', drops
// punctuation and the conjunction "i", and collapses spaces.
func Normalize(s string) string {
	s = strings.ToLower(importer.FoldAccents(strings.TrimSpace(s)))
	s = strings.ReplaceAll(s, "l·l", "ll")
	s = elision.ReplaceAllStringFunc(s, func(m string) string {
		if m[0] == 'd' {
			return "de "
		}
		return "la "
	})
	s = nonWord.ReplaceAllString(s, " ")
	s = conjunction.ReplaceAllString(s, " ")
	// A second pass catches "a i i b" where matches overlap.
	s = conjunction.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns round((1 - distance/maxLen) * 100) over already normalised text.
func Similarity(a, b string) int {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round((1 - float64(d)/float64(maxLen)) * 100))
}

// SignificantParts reports whether at least 70% of the long words (more than three
// letters) of the shorter text appear in the longer one.
func SignificantParts(a, b string) bool {
	wa, wb := significantWords(a), significantWords(b)
	shorter, longer := wa, wb
	if len(wb) < len(wa) {
		shorter, longer = wb, wa
	}
	if len(shorter) == 0 {
		return false
	}

	matched := 0
	for _, w := range shorter {
		for _, l := range longer {
			if strings.Contains(l, w) || strings.Contains(w, l) {
				matched++
				break
			}
		}
	}
	return float64(matched)/float64(len(shorter)) >= partsRatio
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > significantLen {
			out = append(out, w)
		}
	}
	return out
}

// Compare grades two raw names. ok is false when they are unrelated.
func Compare(a, b string) (Match, bool) {
	return compareNormalized(Normalize(a), Normalize(b))
}

func compareNormalized(na, nb string) (Match, bool) {
	if na == "" || nb == "" {
		return Match{}, false
	}
	if na == nb {
		return Match{Type: MatchExact, Similarity: 100}, true
	}
	sim := Similarity(na, nb)
	parts := SignificantParts(na, nb)
	if parts && sim < mediumThreshold {
		// Shared significant words count as a medium match whatever the spelling distance.
		sim = mediumThreshold
	}
	switch {
	case sim >= highThreshold:
		return Match{Type: MatchHigh, Similarity: sim}, true
	case sim >= mediumThreshold:
		return Match{Type: MatchMedium, Similarity: sim}, true
	case sim >= partialThreshold:
		return Match{Type: MatchPartial, Similarity: sim}, true
	}
	return Match{Similarity: sim}, false
}

// Item is a catalogue entry to compare.
type Item struct {
	ID    uuid.UUID `json:"id"`
	Code  string    `json:"code,omitempty"`
	Label string    `json:"label"`
}

// Candidate is a pair of entries that may be duplicates.
type Candidate struct {
	A Item `json:"a"`
	B Item `json:"b"`
	Match
}

// Pairs returns every pair of items matching at least min, strongest first.
func Pairs(items []Item, min MatchType) []Candidate {
	normalized := make([]string, len(items))
	for i, it := range items {
		normalized[i] = Normalize(it.Label)
	}

	var out []Candidate
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			m, ok := compareNormalized(normalized[i], normalized[j])
			if !ok || !m.Type.AtLeast(min) {
				continue
			}
			out = append(out, Candidate{A: items[i], B: items[j], Match: m})
		}
	}
	sortCandidates(out)
	return out
}

// NameMatch is the best catalogue entry found for an external name.
type NameMatch struct {
	Input string `json:"input"`
	Item  *Item  `json:"item"`
	Match *Match `json:"match"`
}

// Best finds the catalogue entry closest to name. Item is nil when nothing matches.
func Best(name string, items []Item) NameMatch {
	res := NameMatch{Input: name}
	n := Normalize(name)
	for i := range items {
		m, ok := compareNormalized(n, Normalize(items[i].Label))
		if !ok {
			continue
		}
		if res.Match == nil || better(m, *res.Match) {
			m := m
			res.Item = &items[i]
			res.Match = &m
		}
	}
	return res
}

func better(a, b Match) bool {
	if rank[a.Type] != rank[b.Type] {
		return rank[a.Type] > rank[b.Type]
	}
	return a.Similarity > b.Similarity
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Similarity != c[j].Similarity {
			return c[i].Similarity > c[j].Similarity
		}
		return c[i].A.Label < c[j].A.Label
	})
}
