package domain

import (
	"bytes"
	"encoding/json"
)

// CategoryRefKind tags the shape a peak's categories field arrived in.
type CategoryRefKind int

const (
	// CategoryRefsNone means the field was absent or null.
	CategoryRefsNone CategoryRefKind = iota
	// CategoryRefsIDs means an array of identifier strings.
	CategoryRefsIDs
	// CategoryRefsObjects means an array of embedded category objects.
	CategoryRefsObjects
	// CategoryRefsMalformed means anything else: mixed arrays, numbers, objects without _id.
	CategoryRefsMalformed
)

// CategoryRefs is a peak's category references, resolved once when decoded.
// The backend sends either identifier strings or embedded category objects;
// both collapse to the same ordered identifier list here.
type CategoryRefs struct {
	kind    CategoryRefKind
	ids     []string
	objects []Category
}

// CategoryIDRefs builds references from identifier strings.
func CategoryIDRefs(ids ...string) CategoryRefs {
	return CategoryRefs{kind: CategoryRefsIDs, ids: append([]string{}, ids...)}
}

// CategoryObjectRefs builds references from embedded category objects.
func CategoryObjectRefs(cats ...Category) CategoryRefs {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return CategoryRefs{kind: CategoryRefsObjects, ids: ids, objects: append([]Category{}, cats...)}
}

// ParseCategoryRefs resolves a raw JSON categories value. It never fails;
// unrecognised shapes yield malformed references with no identifiers.
func ParseCategoryRefs(raw []byte) CategoryRefs {
	var r CategoryRefs
	_ = r.UnmarshalJSON(raw)
	return r
}

// Kind reports the shape the references were decoded from.
func (r CategoryRefs) Kind() CategoryRefKind {
	return r.kind
}

// IDs returns a copy of the normalized identifiers in original order.
func (r CategoryRefs) IDs() []string {
	if len(r.ids) == 0 {
		return []string{}
	}
	return append([]string{}, r.ids...)
}

// Len returns the number of normalized identifiers.
func (r CategoryRefs) Len() int {
	return len(r.ids)
}

// Contains reports whether id is among the normalized identifiers.
func (r CategoryRefs) Contains(id string) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *CategoryRefs) UnmarshalJSON(data []byte) error {
	*r = CategoryRefs{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		r.kind = CategoryRefsMalformed
		return nil
	}
	if len(elems) == 0 {
		r.kind = CategoryRefsIDs
		return nil
	}

	if ids, ok := decodeIDStrings(elems); ok {
		r.kind = CategoryRefsIDs
		r.ids = ids
		return nil
	}
	if cats, ok := decodeCategoryObjects(elems); ok {
		*r = CategoryObjectRefs(cats...)
		return nil
	}

	r.kind = CategoryRefsMalformed
	return nil
}

func (r CategoryRefs) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case CategoryRefsObjects:
		return json.Marshal(r.objects)
	case CategoryRefsIDs:
		return json.Marshal(r.IDs())
	default:
		return []byte("[]"), nil
	}
}

func decodeIDStrings(elems []json.RawMessage) ([]string, bool) {
	ids := make([]string, 0, len(elems))
	for _, e := range elems {
		var s string
		if !bytes.HasPrefix(bytes.TrimSpace(e), []byte(`"`)) {
			return nil, false
		}
		if err := json.Unmarshal(e, &s); err != nil {
			return nil, false
		}
		ids = append(ids, s)
	}
	return ids, true
}

func decodeCategoryObjects(elems []json.RawMessage) ([]Category, bool) {
	cats := make([]Category, 0, len(elems))
	for _, e := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(e, &fields); err != nil || fields == nil {
			return nil, false
		}
		rawID, ok := fields["_id"]
		if !ok {
			return nil, false
		}
		var c Category
		if err := json.Unmarshal(rawID, &c.ID); err != nil {
			return nil, false
		}
		if rawName, ok := fields["name"]; ok {
			_ = json.Unmarshal(rawName, &c.Name)
		}
		cats = append(cats, c)
	}
	return cats, true
}

// CategoryIDs returns the normalized category identifiers of a peak. Every
// component that needs a peak's categories goes through this function.
func CategoryIDs(p Peak) []string {
	return p.Categories.IDs()
}

// CategoryNames resolves a peak's category identifiers to display names.
// Identifiers without a matching category are dropped.
func CategoryNames(p Peak, categories []Category) []string {
	byID := indexCategories(categories)
	names := make([]string, 0, p.Categories.Len())
	for _, id := range CategoryIDs(p) {
		if c, ok := byID[id]; ok {
			names = append(names, c.Name)
		}
	}
	return names
}

// indexCategories maps identifiers to categories; the first occurrence wins.
func indexCategories(categories []Category) map[string]Category {
	byID := make(map[string]Category, len(categories))
	for _, c := range categories {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}
	return byID
}
