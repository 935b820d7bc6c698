package domain

import "strings"

const (
	// AllCategoriesSentinel selects every peak regardless of category.
	AllCategoriesSentinel = "__all__"
	// UncategorizedSentinel selects peaks that reference no category.
	UncategorizedSentinel = "__none__"
)

type criterionMode int

const (
	modeAll criterionMode = iota
	modeAny
	modeUncategorized
)

// CategoryCriterion selects peaks by category. The zero value matches all.
type CategoryCriterion struct {
	mode criterionMode
	ids  []string
}

// AllCategories disables category filtering.
func AllCategories() CategoryCriterion {
	return CategoryCriterion{mode: modeAll}
}

// SingleCategory matches peaks that list id among their categories.
func SingleCategory(id string) CategoryCriterion {
	return AnyCategory(id)
}

// AnyCategory matches peaks that list at least one of ids. An empty set
// applies no category filtering.
func AnyCategory(ids ...string) CategoryCriterion {
	if len(ids) == 0 {
		return AllCategories()
	}
	return CategoryCriterion{mode: modeAny, ids: append([]string{}, ids...)}
}

// Uncategorized matches peaks with no normalized categories.
func Uncategorized() CategoryCriterion {
	return CategoryCriterion{mode: modeUncategorized}
}

// ParseCategoryCriterion turns query values into a criterion. The sentinels
// are only honoured as the sole value; blank values are ignored.
func ParseCategoryCriterion(values []string) CategoryCriterion {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, v)
		}
	}
	if len(ids) == 1 {
		switch ids[0] {
		case AllCategoriesSentinel:
			return AllCategories()
		case UncategorizedSentinel:
			return Uncategorized()
		}
	}
	return AnyCategory(ids...)
}

// IsAll reports whether the criterion applies no category filtering.
func (c CategoryCriterion) IsAll() bool {
	return c.mode == modeAll
}

// Matches reports whether p satisfies the criterion.
func (c CategoryCriterion) Matches(p Peak) bool {
	switch c.mode {
	case modeAll:
		return true
	case modeUncategorized:
		return p.Categories.Len() == 0
	default:
		for _, id := range c.ids {
			if p.Categories.Contains(id) {
				return true
			}
		}
		return false
	}
}

// FilterOptions are the criteria applied by Filter.
type FilterOptions struct {
	Category     CategoryCriterion
	MinElevation float64
}

// Filter returns the peaks matching opts, in input order. A peak is dropped
// when its elevation is numeric and below MinElevation; peaks without a
// numeric elevation pass the elevation check.
func Filter(peaks []Peak, opts FilterOptions) []Peak {
	out := make([]Peak, 0, len(peaks))
	for _, p := range peaks {
		if p.Elevation.Numeric() && p.Elevation.Meters < opts.MinElevation {
			continue
		}
		if !opts.Category.Matches(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
