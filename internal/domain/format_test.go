package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopupOverview(t *testing.T) {
	assert.Equal(t, "<strong>Zugspitze</strong><br/>2962 m", PopupOverview(testPeak("p", "Zugspitze", 2962)))
	assert.Equal(t, "<strong>Peak</strong><br/>", PopupOverview(Peak{Name: "  "}))
	assert.Equal(t, "<strong>Half</strong><br/>1200.5 m", PopupOverview(testPeak("p", "Half", 1200.5)))
}

func TestPopups_EscapeUserText(t *testing.T) {
	p := testPeak("p", "<b>X</b>", 100, "evil")
	p.Description = `"quoted" & 'single' <script>`
	cats := []Category{{ID: "evil", Name: "<img src=x>"}}

	popups := map[string]string{
		"overview": PopupOverview(p),
		"detail":   PopupDetail(p, cats),
		"nearby":   PopupNearby(p, 1234),
	}

	for name, html := range popups {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, html, "&lt;b&gt;X&lt;/b&gt;")
			assert.NotContains(t, html, "<b>")
		})
	}

	detail := popups["detail"]
	assert.Contains(t, detail, "&#34;quoted&#34; &amp; &#39;single&#39; &lt;script&gt;")
	assert.Contains(t, detail, "&lt;img src=x&gt;")
	assert.NotContains(t, detail, "<script>")
	assert.NotContains(t, detail, "<img")
}

func TestPopupDetail(t *testing.T) {
	t.Run("categories and description", func(t *testing.T) {
		p := testPeak("p", "Carrauntoohil", 1039, testIrelandID, "gone", testAlpsID)
		p.Description = "Highest in Ireland"

		assert.Equal(t,
			"<strong>Carrauntoohil</strong><br/>1039 m<br/><small>Ireland, Alps</small><br/><span>Highest in Ireland</span>",
			PopupDetail(p, testCategories()))
	})

	t.Run("blank description and no categories", func(t *testing.T) {
		p := testPeak("p", "Plain", 10)
		p.Description = "   "
		assert.Equal(t, "<strong>Plain</strong><br/>10 m", PopupDetail(p, testCategories()))
	})
}

func TestPopupNearby(t *testing.T) {
	assert.Equal(t, "<strong>Near</strong><br/>500 m<br/>1.23 km away", PopupNearby(testPeak("p", "Near", 500), 1234))
	assert.Equal(t, "<strong>Near</strong><br/>500 m<br/>0.00 km away", PopupNearby(testPeak("p", "Near", 500), 0))
}

func TestElevationText(t *testing.T) {
	assert.Equal(t, "0 m", ElevationText(Meters(0)))
	assert.Equal(t, "-12 m", ElevationText(Meters(-12)))
	assert.Empty(t, ElevationText(Elevation{}))
}
