package content_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/trainingdoc/content"
	"github.com/ByLCY/trainingdoc/layout"
	canvasrenderer "github.com/ByLCY/trainingdoc/renderer/canvas"
)

func TestManualParses(t *testing.T) {
	doc, err := content.Parse()
	require.NoError(t, err)

	var chapters []string
	kinds := map[string]int{}
	for _, sec := range doc.Sections {
		kinds[sec.Kind()]++
		if sec.Chapter != nil {
			chapters = append(chapters, string(sec.Chapter.Number))
		}
	}
	require.Len(t, chapters, 14)
	for i, n := range chapters {
		assert.Equal(t, fmt.Sprintf("%02d", i+1), n)
	}
	assert.Equal(t, 1, kinds["meta"])
	assert.Equal(t, 1, kinds["cover"])
	assert.Equal(t, 1, kinds["contents"])
	assert.Equal(t, 1, kinds["closing"])
}

func TestManualBuilds(t *testing.T) {
	doc, err := content.Parse()
	require.NoError(t, err)

	res, err := layout.Build(doc, nil, layout.BuildOptions{Typesetter: canvasrenderer.NewRenderer("")})
	require.NoError(t, err)

	require.Len(t, res.Outline, 14)
	assert.Equal(t, "ERP-TRN-001", findOn(res.Pages[0], "ERP-TRN-001"))
	assert.Equal(t, "COVER", res.Pages[0].Section)
	assert.Equal(t, "TOC", res.Pages[1].Section)
	assert.Equal(t, "CLOSING", res.Pages[len(res.Pages)-1].Section)
	assert.Greater(t, len(res.Pages), 20)

	theme := layout.DefaultTheme()
	bottom := theme.Margin + 20
	prev := 0
	for _, entry := range res.Outline {
		assert.Greater(t, entry.Page, prev, "chapter %s should start after the previous one", entry.Number)
		prev = entry.Page
		page := res.Pages[entry.Page-1]
		assert.Equal(t, "SEC-"+entry.Number, page.Section)
		assert.Equal(t, entry.Title, findOn(page, entry.Title))
	}
	for _, p := range res.Pages {
		if !strings.HasPrefix(p.Section, "SEC-") {
			continue
		}
		for _, tb := range p.Body.Texts {
			assert.GreaterOrEqual(t, tb.Y, bottom-1e-6, "page %d: %q below the content area", p.Number, tb.Content)
		}
	}
	assert.Equal(t, "ERP System - Complete Training Guide", res.Meta.Title)
	assert.Contains(t, res.Meta.Keywords, "gst")
}

func findOn(p layout.Page, content string) string {
	for _, l := range []layout.Layer{p.Backdrop, p.Body, p.Frame} {
		for _, tb := range l.Texts {
			if tb.Content == content {
				return tb.Content
			}
		}
	}
	return ""
}
