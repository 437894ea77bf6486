// Package filters is the client-side list pipeline shared by the catalog and
// the admin screens: text search, composed categorical filters, and at most
// one comparator, recomputed as a pure function of the raw data and the
// filter state.
package filters

import (
	"sort"
	"strings"

	"boscov/client/internal/domain/models"
	"boscov/client/internal/lib/slug"
)

type Sort int

const (
	SortNone Sort = iota
	SortNameAsc
	SortNameDesc
	SortNumericAsc
	SortNumericDesc
)

type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusActiveOnly
	StatusInactiveOnly
)

// Outcome tells the screen what to render for the derived list. Loading
// always wins and is mutually exclusive with NoMatches: an empty filtered
// result gets its own indicator, never an empty table.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeOK
	OutcomeNoMatches
)

func Evaluate(loading bool, derivedLen int) Outcome {
	switch {
	case loading:
		return OutcomeLoading
	case derivedLen == 0:
		return OutcomeNoMatches
	default:
		return OutcomeOK
	}
}

// State is the filter-state record a screen holds.
type State struct {
	Query string
	Sort  Sort
}

// Pipeline derives the displayed subset of a raw collection. DisplayField is
// the designated search/sort field; Numeric backs the numeric comparators
// and may be nil when a screen has none.
type Pipeline[T any] struct {
	DisplayField func(T) string
	Numeric      func(T) float64
}

// Apply runs the fixed pipeline: search, categorical predicates (AND; a nil
// predicate is an unset filter and never excludes), then the comparator.
// Input order is preserved when no sort is selected.
func (p Pipeline[T]) Apply(items []T, st State, preds ...func(T) bool) []T {
	query := slug.Fold(strings.TrimSpace(st.Query))
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		if query != "" && !strings.Contains(slug.Fold(p.DisplayField(item)), query) {
			continue
		}
		for _, pred := range preds {
			if pred != nil && !pred(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	p.sortItems(out, st.Sort)
	return out
}

func (p Pipeline[T]) sortItems(items []T, by Sort) {
	switch by {
	case SortNameAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return slug.Fold(p.DisplayField(items[i])) < slug.Fold(p.DisplayField(items[j]))
		})
	case SortNameDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return slug.Fold(p.DisplayField(items[i])) > slug.Fold(p.DisplayField(items[j]))
		})
	case SortNumericAsc:
		if p.Numeric == nil {
			return
		}
		sort.SliceStable(items, func(i, j int) bool {
			return p.Numeric(items[i]) < p.Numeric(items[j])
		})
	case SortNumericDesc:
		if p.Numeric == nil {
			return
		}
		sort.SliceStable(items, func(i, j int) bool {
			return p.Numeric(items[i]) > p.Numeric(items[j])
		})
	}
}

// ByStatus builds the tri-state active/inactive predicate; StatusAll is a
// no-op (nil).
func ByStatus[T any](f StatusFilter, active func(T) bool) func(T) bool {
	switch f {
	case StatusActiveOnly:
		return active
	case StatusInactiveOnly:
		return func(item T) bool { return !active(item) }
	default:
		return nil
	}
}

// MovieHasGenre matches movies whose genre set contains the genre identified
// by the slugified token, regardless of accents or case in the stored
// description. An empty token is a no-op.
func MovieHasGenre(token string) func(models.Movie) bool {
	if token == "" {
		return nil
	}
	return func(m models.Movie) bool {
		for _, g := range m.Genres {
			if slug.Slugify(g.Genre.Description) == token {
				return true
			}
		}
		return false
	}
}

// ByRole matches users with the given role; empty is a no-op.
func ByRole(role models.Role) func(models.User) bool {
	if role == "" {
		return nil
	}
	return func(u models.User) bool { return u.Role == role }
}
