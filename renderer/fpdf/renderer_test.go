package fpdfrenderer

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canvasrenderer "github.com/ByLCY/trainingdoc/renderer/canvas"

	"github.com/ByLCY/trainingdoc/dsl"
	"github.com/ByLCY/trainingdoc/layout"
	"github.com/ByLCY/trainingdoc/pdfutil"
)

const sampleManual = `
manual Sample v1 {
  meta {
    title: "Sample"
    keywords: ["erp", "training"]
  }
  chapter "01" "Overview" {
    subsection "01.1" "Orders"
    para { "Sales orders reserve stock, deliveries reduce it, and invoices post revenue." }
    statuses {
      status "Draft"
      status "Submitted" bg blue fg white
    }
    table {
      column "Code" 80
      column "Meaning"
      row "SO" "Sales order"
    }
  }
  closing {
    headline: "End"
  }
}
`

func TestTextWidth(t *testing.T) {
	r := NewRenderer(Options{})
	w, err := r.TextWidth("Goods Receipt", "sans-bold", 12)
	require.NoError(t, err)
	assert.Greater(t, w, 0.0)

	double, err := r.TextWidth("Goods Receipt", "sans-bold", 24)
	require.NoError(t, err)
	assert.InDelta(t, 2*w, double, 0.01*double)

	_, err = r.TextWidth("x", "unknown-font", 10)
	assert.Error(t, err)
}

func TestTextWidthAgreesWithCanvas(t *testing.T) {
	r := NewRenderer(Options{})
	c := canvasrenderer.NewRenderer("")
	for _, font := range []string{"serif", "mono", "sans-bold"} {
		a, err := r.TextWidth("Inventory valuation", font, 10)
		require.NoError(t, err)
		b, err := c.TextWidth("Inventory valuation", font, 10)
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(a-b), 0.05*b, font)
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(Options{})
	doc, err := dsl.ParseString(sampleManual)
	require.NoError(t, err)
	res, err := layout.Build(doc, nil, layout.BuildOptions{Typesetter: r})
	require.NoError(t, err)

	data, err := r.Render(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	n, err := pdfutil.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, len(res.Pages), n)
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(Options{})
	_, err := r.Render(nil)
	assert.Error(t, err)
	_, err = r.Render(&layout.Result{})
	assert.Error(t, err)
}

func TestFamilyName(t *testing.T) {
	assert.Equal(t, "fonts_brand_ttf", familyName("fonts/Brand.ttf"))
	assert.Equal(t, "sans-bold", familyName("sans-bold"))
}
