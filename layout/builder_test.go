package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/trainingdoc/dsl"
)

// stubTypesetter 按字符数估算宽度，每个字符占字号的一半，仅用于测试。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(content, font string, size float64) (float64, error) {
	if font == "missing" {
		return 0, fmt.Errorf("字体 %s 未注册", font)
	}
	return float64(utf8.RuneCountInString(content)) * size * 0.5, nil
}

func buildDSL(t *testing.T, src string, data any, theme *Theme) (*Result, error) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	return Build(doc, data, BuildOptions{Typesetter: stubTypesetter{}, Theme: theme})
}

func mustBuild(t *testing.T, src string, data any) *Result {
	t.Helper()
	res, err := buildDSL(t, src, data, nil)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	return res
}

// chapterDoc 将章节内容包装为只含一章的文档。
func chapterDoc(body string) string {
	return "manual T v1 {\n  chapter \"01\" \"Intro\" {\n" + body + "\n  }\n}\n"
}

func findText(p Page, content string) (TextBox, bool) {
	for _, layer := range []Layer{p.Backdrop, p.Body, p.Frame} {
		for _, tb := range layer.Texts {
			if tb.Content == content {
				return tb, true
			}
		}
	}
	return TextBox{}, false
}

func pageOf(res *Result, content string) int {
	for _, p := range res.Pages {
		if _, ok := findText(p, content); ok {
			return p.Number
		}
	}
	return 0
}

const fullDoc = `
manual Guide v1 {
  meta {
    title: "ERP Guide"
    ref: "REF-1"
    keywords: "erp, training"
  }
  cover {
    kicker: "erp system"
    headline: ["Complete", "Guide"]
    tagline: "For everyone"
    fact "REF" "${meta.ref}"
    fact "PAGES" "${pages|many}"
  }
  contents
  chapter "01" "Intro" {
    subtitle: "Getting started"
    para { "Hello there." }
  }
  chapter "02" "Next" code OPS {
    summary: "Daily operations"
    "A bare literal becomes a paragraph."
  }
  closing {
    headline: "End of Document"
  }
}
`

func TestBuildFixedPagesAndContents(t *testing.T) {
	res := mustBuild(t, fullDoc, nil)

	if len(res.Pages) != 5 {
		t.Fatalf("expected cover, contents, two chapters and closing, got %d pages", len(res.Pages))
	}
	sections := []string{"COVER", "TOC", "SEC-01", "OPS", "CLOSING"}
	for i, p := range res.Pages {
		if p.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, p.Number)
		}
		if p.Section != sections[i] {
			t.Fatalf("page %d: expected section %s, got %s", p.Number, sections[i], p.Section)
		}
	}

	if len(res.Outline) != 2 || res.Outline[0].Page != 3 || res.Outline[1].Page != 4 {
		t.Fatalf("unexpected outline: %+v", res.Outline)
	}
	if res.Outline[0].Summary != "Getting started" || res.Outline[1].Summary != "Daily operations" {
		t.Fatalf("summary should fall back to subtitle: %+v", res.Outline)
	}

	toc := res.Pages[1]
	if _, ok := findText(toc, "Table of Contents"); !ok {
		t.Fatalf("contents page misses its title")
	}
	num, ok := findText(toc, "04")
	if !ok || num.Align != "right" {
		t.Fatalf("contents should list chapter 02 on page 04, got %+v", num)
	}

	cover := res.Pages[0]
	if !cover.Frame.Empty() {
		t.Fatalf("cover must not carry a frame")
	}
	if _, ok := findText(cover, "ERP SYSTEM"); !ok {
		t.Fatalf("cover kicker should be upper-cased")
	}
	if _, ok := findText(cover, "REF-1"); !ok {
		t.Fatalf("fact value should be interpolated from meta")
	}
	if _, ok := findText(cover, "many"); !ok {
		t.Fatalf("fact value should use its fallback")
	}

	chapter := res.Pages[3]
	if tb, ok := findText(chapter, "04"); !ok || tb.Align != "right" {
		t.Fatalf("chapter frame should print its page number")
	}
	if _, ok := findText(chapter, "A bare literal becomes a paragraph."); !ok {
		t.Fatalf("bare literal was not laid out")
	}

	if res.Meta.Title != "ERP Guide" || res.Meta.Creator != "trainingdoc" {
		t.Fatalf("unexpected meta: %+v", res.Meta)
	}
	if strings.Join(res.Meta.Keywords, "|") != "erp|training" {
		t.Fatalf("unexpected keywords: %v", res.Meta.Keywords)
	}
}

func TestChapterOverflowKeepsSection(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&sb, "    para { \"Paragraph number %d talks about purchase orders and goods receipt.\" }\n", i)
	}
	res := mustBuild(t, chapterDoc(sb.String()), nil)

	if len(res.Pages) < 2 {
		t.Fatalf("expected overflow onto several pages, got %d", len(res.Pages))
	}
	bottom := DefaultTheme().Margin + 20
	for _, p := range res.Pages {
		if p.Section != "SEC-01" {
			t.Fatalf("page %d lost the chapter code: %s", p.Number, p.Section)
		}
		for _, tb := range p.Body.Texts {
			if tb.Y < bottom {
				t.Fatalf("page %d: text %q below the content area (y=%g)", p.Number, tb.Content, tb.Y)
			}
		}
	}
	if pageOf(res, "Paragraph number 79 talks about purchase orders and goods receipt.") != len(res.Pages) {
		t.Fatalf("last paragraph should land on the last page")
	}
}

func TestParagraphStaysWithinContentWidth(t *testing.T) {
	long := strings.Repeat("inventory valuation uses weighted average cost ", 20)
	res := mustBuild(t, chapterDoc(`    para { "`+long+`" }`), nil)

	theme := DefaultTheme()
	lines := 0
	for _, tb := range res.Pages[0].Body.Texts {
		if tb.FontSize != 10.5 {
			continue
		}
		lines++
		w, _ := stubTypesetter{}.TextWidth(tb.Content, tb.Font, tb.FontSize)
		if tb.X+w > theme.PageWidth-theme.Margin+1e-6 {
			t.Fatalf("line %q overflows the right margin", tb.Content)
		}
	}
	if lines < 2 {
		t.Fatalf("expected the paragraph to wrap, got %d lines", lines)
	}
}

func TestParagraphResumesAtTopAfterBreak(t *testing.T) {
	long := strings.Repeat("inventory valuation uses weighted average cost ", 40)
	res := mustBuild(t, chapterDoc("    space 600\n    para { \""+long+"\" }"), nil)
	if len(res.Pages) < 2 {
		t.Fatalf("expected the paragraph to continue on a second page, got %d pages", len(res.Pages))
	}

	lowest := math.MaxFloat64
	for _, tb := range res.Pages[0].Body.Texts {
		if tb.FontSize == 10.5 {
			lowest = math.Min(lowest, tb.Y)
		}
	}
	var ys []float64
	for _, tb := range res.Pages[1].Body.Texts {
		if tb.FontSize == 10.5 {
			ys = append(ys, tb.Y)
		}
	}
	if lowest == math.MaxFloat64 || len(ys) == 0 {
		t.Fatalf("paragraph lines should appear on both pages")
	}
	if ys[0] <= lowest {
		t.Fatalf("continued lines should restart near the top: first %g, previous page lowest %g", ys[0], lowest)
	}
	for i := 1; i < len(ys); i++ {
		if math.Abs(ys[i-1]-ys[i]-15) > 1e-6 {
			t.Fatalf("line %d: expected 15pt leading, got %g", i, ys[i-1]-ys[i])
		}
	}
}

func TestTableHeaderRepeatsAfterBreak(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("    table {\n      column \"Code\" 120\n      column \"Meaning\"\n")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "      row \"C-%02d\" \"Row %d\"\n", i, i)
	}
	sb.WriteString("    }\n")
	res := mustBuild(t, chapterDoc(sb.String()), nil)

	if len(res.Pages) < 2 {
		t.Fatalf("expected the table to span pages, got %d", len(res.Pages))
	}
	for _, p := range res.Pages {
		if _, ok := findText(p, "Code"); !ok {
			t.Fatalf("page %d misses the repeated table header", p.Number)
		}
	}
	if pageOf(res, "C-59") != len(res.Pages) {
		t.Fatalf("last row should be on the last page")
	}
}

func TestKeepMovesBlockToNextPage(t *testing.T) {
	res := mustBuild(t, chapterDoc("    space 600\n    subsection \"01.1\" \"Late\" keep 200"), nil)
	if got := pageOf(res, "Late"); got != 2 {
		t.Fatalf("keep 200 should push the subsection to page 2, got page %d", got)
	}

	res = mustBuild(t, chapterDoc("    space 600\n    subsection \"01.1\" \"Late\""), nil)
	if got := pageOf(res, "Late"); got != 1 {
		t.Fatalf("without keep the subsection stays on page 1, got page %d", got)
	}
}

func TestBindingsReachBlocks(t *testing.T) {
	src := `manual T v1 {
  meta {
    ref: "ERP-7"
  }
  chapter "01" "Intro" {
    para { "Led by ${trainer} for ${meta.ref}" }
    bullets { "${missing|none}" }
  }
}`
	res := mustBuild(t, src, map[string]any{"trainer": "Asha"})
	if pageOf(res, "Led by Asha for ERP-7") == 0 {
		t.Fatalf("paragraph was not interpolated")
	}
	if pageOf(res, "none") == 0 {
		t.Fatalf("fallback was not applied")
	}

	res = mustBuild(t, chapterDoc(`    para { "${data|x}" }`), []any{"not", "a", "map"})
	if pageOf(res, "not, a, map") == 0 {
		t.Fatalf("non-map data should be reachable under data")
	}
}

func TestBuildRejectsInvalidTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Margin = 0
	_, err := buildDSL(t, chapterDoc(""), nil, &theme)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestBuildRejectsUnknownBlock(t *testing.T) {
	_, err := buildDSL(t, chapterDoc(`    sparkle "x"`), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "未知的内容块") {
		t.Fatalf("expected unknown block error, got %v", err)
	}
}

func TestBuildRejectsUnusableFont(t *testing.T) {
	theme := DefaultTheme()
	theme.Fonts.Body = "missing"
	_, err := buildDSL(t, chapterDoc(""), nil, &theme)
	if err == nil || !strings.Contains(err.Error(), "body") {
		t.Fatalf("expected font role error, got %v", err)
	}
}

func TestPaletteSectionOverridesTheme(t *testing.T) {
	src := `manual T v1 {
  palette {
    amber: #FF0000
  }
  chapter "01" "Intro" {
    marker "Watch"
  }
}`
	res := mustBuild(t, src, nil)
	want := Color{R: 255}
	for _, r := range res.Pages[0].Body.Rects {
		if r.FillColor != nil && *r.FillColor == want {
			return
		}
	}
	t.Fatalf("marker bar should use the overridden amber")
}

func TestPaletteAcceptsAlphaHex(t *testing.T) {
	src := `manual T v1 {
  palette {
    amber: #1E40AFCC
  }
  chapter "01" "Intro" {
    marker "Watch"
  }
}`
	res := mustBuild(t, src, nil)
	want := Color{R: 30, G: 64, B: 175}
	for _, r := range res.Pages[0].Body.Rects {
		if r.FillColor != nil && *r.FillColor == want {
			return
		}
	}
	t.Fatalf("marker bar should use the eight-digit amber without alpha")
}

func TestMissingThemeColorFailsBuild(t *testing.T) {
	theme := DefaultTheme()
	delete(theme.Palette, "navy")
	_, err := buildDSL(t, chapterDoc(`    para { "Body" }`), nil, &theme)
	if err == nil || !strings.Contains(err.Error(), "navy") {
		t.Fatalf("expected undefined colour error, got %v", err)
	}
}

func TestFlowDrawsArrowsBetweenNodes(t *testing.T) {
	res := mustBuild(t, chapterDoc(`    flow {
      node "Purchase\nOrder" color purchase label PO
      node "Goods\nReceipt" color inventory
      node "Invoice" color finance
    }`), nil)
	body := res.Pages[0].Body
	if len(body.Polygons) != 2 {
		t.Fatalf("expected 2 arrowheads, got %d", len(body.Polygons))
	}
	if _, ok := findText(res.Pages[0], "Receipt"); !ok {
		t.Fatalf("multi-line node text should be split")
	}
	if tb, ok := findText(res.Pages[0], "PO"); !ok || tb.Align != "center" {
		t.Fatalf("node label should be centred under its node")
	}
}
