package related

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractor_String(t *testing.T) {
	e := NewExtractor()

	assert.Equal(t, "Shillong", e.String("location", Record{"location": "  Shillong "}))
	assert.Equal(t, "", e.String("location", Record{"location": nil}))
	assert.Equal(t, "", e.String("location", Record{"district": "x"}))
	assert.Equal(t, "", e.String("location", nil))
	assert.Equal(t, "", e.String("", Record{"location": "Shillong"}))
	assert.Equal(t, "", e.String("location", Record{"location": []any{"a"}}))
}

func TestExtractor_First(t *testing.T) {
	e := NewExtractor()
	cases := []struct {
		name string
		val  any
		want string
	}{
		{"slice", []any{"East Khasi Hills", "Ri-Bhoi"}, "East Khasi Hills"},
		{"string slice", []string{"Jaintia Hills"}, "Jaintia Hills"},
		{"json text", `["West Garo Hills","South Garo Hills"]`, "West Garo Hills"},
		{"pg literal", `{"East Khasi Hills",Ri-Bhoi}`, "East Khasi Hills"},
		{"scalar", "Ri-Bhoi", "Ri-Bhoi"},
		{"empty", []any{}, ""},
		{"null", nil, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, e.String("firstOf(regions_covered)", Record{"regions_covered": c.val}))
		})
	}
	assert.Equal(t, "", e.String("firstOf(regions_covered)", Record{}))
}

func TestExtractor_Strings(t *testing.T) {
	e := NewExtractor()
	assert.Equal(t, []string{"trek", "waterfall"}, e.Strings("listOf(tags)", Record{"tags": `["trek"," waterfall",""]`}))
	assert.Nil(t, e.Strings("listOf(tags)", Record{}))
	assert.Nil(t, e.Strings("listOf(tags)", nil))
}

func TestExtractor_CompileError(t *testing.T) {
	e := NewExtractor()
	_, err := e.Compile("location ==")
	assert.Error(t, err)
	assert.Equal(t, "", e.String("location ==", Record{"location": "Shillong"}))
}
