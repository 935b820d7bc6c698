package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAlpsID    = "c1"
	testIrelandID = "c2"
)

func testCategories() []Category {
	return []Category{
		{ID: testAlpsID, Name: "Alps"},
		{ID: testIrelandID, Name: "Ireland"},
	}
}

func testPeak(id, name string, elevation float64, categoryIDs ...string) Peak {
	return Peak{
		ID:         id,
		Name:       name,
		Elevation:  Meters(elevation),
		Categories: CategoryIDRefs(categoryIDs...),
	}
}

func TestParseCategoryRefs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     CategoryRefKind
		expected []string
	}{
		{"absent", ``, CategoryRefsNone, []string{}},
		{"null", `null`, CategoryRefsNone, []string{}},
		{"empty array", `[]`, CategoryRefsIDs, []string{}},
		{"identifier strings", `["c2","c1","c2"]`, CategoryRefsIDs, []string{"c2", "c1", "c2"}},
		{"embedded objects", `[{"_id":"c1","name":"Alps"},{"_id":"c2"}]`, CategoryRefsObjects, []string{"c1", "c2"}},
		{"mixed strings and objects", `["c1",{"_id":"c2"}]`, CategoryRefsMalformed, []string{}},
		{"objects without _id", `[{"name":"Alps"}]`, CategoryRefsMalformed, []string{}},
		{"numbers", `[1,2]`, CategoryRefsMalformed, []string{}},
		{"null element", `["c1",null]`, CategoryRefsMalformed, []string{}},
		{"numeric _id", `[{"_id":7}]`, CategoryRefsMalformed, []string{}},
		{"single string", `"c1"`, CategoryRefsMalformed, []string{}},
		{"object", `{"_id":"c1"}`, CategoryRefsMalformed, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := ParseCategoryRefs([]byte(tt.raw))
			assert.Equal(t, tt.kind, refs.Kind())
			assert.Equal(t, tt.expected, refs.IDs())
		})
	}
}

func TestCategoryIDs_FromPeakJSON(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		var p Peak
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","name":"A"}`), &p))
		assert.Empty(t, CategoryIDs(p))
	})

	t.Run("malformed field does not fail the peak", func(t *testing.T) {
		var p Peak
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","name":"A","categories":[true,"c1"]}`), &p))
		assert.Equal(t, "A", p.Name)
		assert.Empty(t, CategoryIDs(p))
	})

	t.Run("objects", func(t *testing.T) {
		var p Peak
		require.NoError(t, json.Unmarshal([]byte(`{"categories":[{"_id":"c2","name":"Ireland"},{"_id":"c1","name":"Alps"}]}`), &p))
		assert.Equal(t, []string{"c2", "c1"}, CategoryIDs(p))
	})
}

func TestCategoryIDs_ReturnsCopy(t *testing.T) {
	p := testPeak("p1", "A", 100, testAlpsID)
	ids := CategoryIDs(p)
	ids[0] = "mutated"
	assert.Equal(t, []string{testAlpsID}, CategoryIDs(p))
}

func TestCategoryRefs_MarshalJSON(t *testing.T) {
	t.Run("identifiers", func(t *testing.T) {
		data, err := json.Marshal(CategoryIDRefs("c1", "c2"))
		require.NoError(t, err)
		assert.JSONEq(t, `["c1","c2"]`, string(data))
	})

	t.Run("objects keep names", func(t *testing.T) {
		data, err := json.Marshal(CategoryObjectRefs(Category{ID: "c1", Name: "Alps"}))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"_id":"c1","name":"Alps"}]`, string(data))
	})

	t.Run("malformed renders empty", func(t *testing.T) {
		data, err := json.Marshal(ParseCategoryRefs([]byte(`[1]`)))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})
}

func TestCategoryNames(t *testing.T) {
	p := testPeak("p1", "A", 100, testIrelandID, "unknown", testAlpsID)

	assert.Equal(t, []string{"Ireland", "Alps"}, CategoryNames(p, testCategories()))
	assert.Empty(t, CategoryNames(testPeak("p2", "B", 100), testCategories()))
}
