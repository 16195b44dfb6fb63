package inventory

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"kitchenstock/internal/models"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoMatch is returned when no item clears any resolution tier.
var ErrNoMatch = errors.New("no item matches name")

// DefaultMaxDistance bounds the edit-distance tier.
const DefaultMaxDistance = 2

// MatchKind is the tier that produced a match, strongest first.
type MatchKind int

const (
	MatchExact MatchKind = iota + 1
	MatchFold
	MatchSubstring
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFold:
		return "fold"
	case MatchSubstring:
		return "substring"
	case MatchFuzzy:
		return "fuzzy"
	}
	return "none"
}

type Match struct {
	Index    int
	Kind     MatchKind
	Distance int
}

// Resolver finds the best item for a free-text name. Tiers are tried in
// order: exact, case-insensitive exact, substring either way, then edit
// distance on accent-stripped names. Within a tier the closest candidate
// wins and ties go to the lower index, so the result does not depend on
// anything but the item list and the name.
type Resolver struct {
	MaxDistance int
}

func NewResolver(maxDistance int) Resolver {
	if maxDistance < 0 {
		maxDistance = 0
	}
	return Resolver{MaxDistance: maxDistance}
}

func (r Resolver) Resolve(name string, items []models.InventoryItem) (Match, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(items) == 0 {
		return Match{}, ErrNoMatch
	}

	for i := range items {
		if items[i].Name == name {
			return Match{Index: i, Kind: MatchExact}, nil
		}
	}

	folded := fold(name)
	foldedItems := make([]string, len(items))
	for i := range items {
		foldedItems[i] = fold(strings.TrimSpace(items[i].Name))
		if foldedItems[i] == folded {
			return Match{Index: i, Kind: MatchFold}, nil
		}
	}

	best := Match{Index: -1}
	nameLen := utf8.RuneCountInString(folded)
	for i, candidate := range foldedItems {
		if candidate == "" {
			continue
		}
		if !strings.Contains(candidate, folded) && !strings.Contains(folded, candidate) {
			continue
		}
		diff := abs(utf8.RuneCountInString(candidate) - nameLen)
		if best.Index < 0 || diff < best.Distance {
			best = Match{Index: i, Kind: MatchSubstring, Distance: diff}
		}
	}
	if best.Index >= 0 {
		return best, nil
	}

	if r.MaxDistance == 0 {
		return Match{}, ErrNoMatch
	}
	stripped := stripMarks(folded)
	for i, candidate := range foldedItems {
		candidate = stripMarks(candidate)
		limit := r.MaxDistance
		if quarter := utf8.RuneCountInString(candidate) / 4; quarter < limit {
			limit = quarter
		}
		d := levenshtein.ComputeDistance(stripped, candidate)
		if d > limit {
			continue
		}
		if best.Index < 0 || d < best.Distance {
			best = Match{Index: i, Kind: MatchFuzzy, Distance: d}
		}
	}
	if best.Index >= 0 {
		return best, nil
	}
	return Match{}, ErrNoMatch
}

// FindFold returns the index of the first item whose name equals name under
// Unicode case folding, or -1.
func FindFold(name string, items []models.InventoryItem) int {
	folded := fold(strings.TrimSpace(name))
	for i := range items {
		if fold(strings.TrimSpace(items[i].Name)) == folded {
			return i
		}
	}
	return -1
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
