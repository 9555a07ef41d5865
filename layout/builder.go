package layout

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ByLCY/trainingdoc/binding"
	"github.com/ByLCY/trainingdoc/dsl"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const defaultCreator = "trainingdoc"

// Build 将 DSL 文档与绑定数据转换为布局结果。
// data 为 map 时与 meta 合并成绑定根对象，其余类型挂在 data 键下。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, errors.New("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, errors.New("缺少 Typesetter，无法测量文本宽度")
	}

	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = opts.Theme.clone()
	}

	meta := map[string]any{}
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			for key, val := range assignments(sec.Meta.Block) {
				meta[key] = metaValue(val)
			}
		case sec.Palette != nil:
			if err := applyPalette(&theme, sec.Palette.Block); err != nil {
				return nil, err
			}
		}
	}
	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("主题配置无效: %w", err)
	}

	bindings := map[string]any{"meta": meta}
	switch d := data.(type) {
	case nil:
	case map[string]any:
		bindings = binding.Merge(bindings, d)
	default:
		bindings["data"] = d
	}

	b := &builder{
		theme:  theme,
		ts:     opts.Typesetter,
		data:   bindings,
		logger: opts.Logger,
		upper:  cases.Upper(language.English),
	}
	b.collector = &pageCollector{theme: &b.theme}
	if err := b.checkFonts(); err != nil {
		return nil, err
	}

	var toc *tocState
	for _, sec := range doc.Sections {
		var err error
		switch {
		case sec.Cover != nil:
			err = b.cover(sec.Cover.Block)
		case sec.Contents != nil:
			if toc != nil {
				return nil, errors.New("目录只能出现一次")
			}
			toc = b.reserveContents(sec.Contents, countChapters(doc))
		case sec.Chapter != nil:
			err = b.chapter(sec.Chapter)
		case sec.Closing != nil:
			err = b.closing(sec.Closing.Block)
		}
		if err != nil {
			return nil, err
		}
		if b.err != nil {
			return nil, b.err
		}
	}
	if toc != nil {
		if err := b.fillContents(toc); err != nil {
			return nil, err
		}
	}
	if b.err != nil {
		return nil, b.err
	}

	res := &Result{
		Outline: b.outline,
		Meta:    b.documentMeta(meta),
	}
	for _, p := range b.collector.pages {
		res.Pages = append(res.Pages, *p)
	}
	if b.logger != nil {
		b.logger.Printf("布局完成：%d 页，%d 章", len(res.Pages), len(res.Outline))
	}
	return res, nil
}

type builder struct {
	theme     Theme
	ts        Typesetter
	data      map[string]any
	collector *pageCollector
	logger    *log.Logger
	upper     cases.Caser
	outline   []OutlineEntry
	err       error // 测宽过程中的首个错误
}

// color 按名称取主题颜色，未定义时记录首个错误并以黑色继续排版。
func (b *builder) color(name string) Color {
	c, err := b.theme.Color(name)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return Color{}
	}
	return c
}

// measure 返回给定字体与字号的测宽函数，出错时记录首个错误并按 0 宽处理。
func (b *builder) measure(font string, size float64) MeasureFunc {
	return func(s string) float64 {
		w, err := b.ts.TextWidth(s, font, size)
		if err != nil {
			if b.err == nil {
				b.err = fmt.Errorf("测量文本宽度失败（%s %gpt）: %w", font, size, err)
			}
			return 0
		}
		return w
	}
}

func (b *builder) checkFonts() error {
	roles := b.theme.Fonts.byRole()
	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)
	for _, role := range names {
		if _, err := b.ts.TextWidth("M", roles[role], 10); err != nil {
			return fmt.Errorf("字体角色 %s（%s）不可用: %w", role, roles[role], err)
		}
	}
	return nil
}

// str 对文本做数据插值并规范化为 NFC。
func (b *builder) str(s string) string {
	return norm.NFC.String(binding.Interpolate(s, b.data))
}

// style 按字体角色构造文本样式，颜色取自调色板。
func (b *builder) style(role string, size float64, color string) textStyle {
	fonts := b.theme.Fonts
	font := fonts.Body
	switch role {
	case "heading":
		font = fonts.Heading
	case "italic":
		font = fonts.BodyItalic
	case "mono":
		font = fonts.Mono
	case "mono-bold":
		font = fonts.MonoBold
	case "light":
		font = fonts.Light
	}
	return textStyle{font: font, size: size, color: b.color(color), align: "left"}
}

// colorAttr 读取颜色参数，缺省时使用 def。
func (b *builder) colorAttr(a blockArgs, key, def string) (Color, error) {
	name, ok := a.attrs[key]
	if !ok {
		name = def
	}
	return b.theme.Color(name)
}

func (b *builder) documentMeta(meta map[string]any) DocumentMeta {
	text := func(key string) string {
		if v, ok := meta[key].(string); ok {
			return b.str(v)
		}
		return ""
	}
	out := DocumentMeta{
		Title:   text("title"),
		Author:  text("author"),
		Subject: text("subject"),
		Creator: text("creator"),
	}
	if out.Creator == "" {
		out.Creator = defaultCreator
	}
	switch kw := meta["keywords"].(type) {
	case []any:
		for _, k := range kw {
			if s, ok := k.(string); ok && strings.TrimSpace(s) != "" {
				out.Keywords = append(out.Keywords, b.str(s))
			}
		}
	case string:
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out.Keywords = append(out.Keywords, b.str(k))
			}
		}
	}
	return out
}

func metaValue(v *dsl.Value) any {
	if v != nil && v.Array != nil {
		items := v.Array.Strings()
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out
	}
	return v.Text()
}

func applyPalette(theme *Theme, block *dsl.Block) error {
	for name, val := range assignments(block) {
		c, err := theme.Color(val.Text())
		if err != nil {
			return fmt.Errorf("调色板 %s: %w", name, err)
		}
		theme.Palette[strings.ToLower(name)] = c
	}
	return nil
}

func countChapters(doc *dsl.Document) int {
	n := 0
	for _, sec := range doc.Sections {
		if sec.Chapter != nil {
			n++
		}
	}
	return n
}

// pageCollector 按顺序收集页面，页码从 1 开始。
type pageCollector struct {
	theme *Theme
	pages []*Page
}

func (c *pageCollector) newPage(section string) *Page {
	p := &Page{
		Number:  len(c.pages) + 1,
		Section: section,
		Width:   c.theme.PageWidth,
		Height:  c.theme.PageHeight,
	}
	c.pages = append(c.pages, p)
	return p
}

// framedPage 新建带页眉、页脚与边框的内容页。
func (b *builder) framedPage(section string) *Page {
	p := b.collector.newPage(section)
	t := b.theme
	w, h, m := t.PageWidth, t.PageHeight, t.Margin
	frame := pen{b: b, layer: &p.Frame}

	inset := m - 10
	border := b.color("border")
	frame.rect(inset, inset, w-2*inset, h-2*inset, nil, &border, 0.3, 0)
	frame.line(m, h-30, w-m, h-30, b.color("navy"), 0.8)
	frame.line(m, h-31.5, w-m, h-31.5, b.color("amber"), 0.3)

	small := b.style("mono", 7, "slate-light")
	frame.text(m, h-25, section, small)
	frame.line(m, m+5, w-m, m+5, border, 0.3)
	frame.text(w-m, m-5, fmt.Sprintf("%02d", p.Number), small.aligned("right"))
	return p
}

// sectionHeader 绘制章节编号、标题、分隔线与可选副标题。
func (f *flowContext) sectionHeader(number, title, subtitle string) {
	b := f.b
	p := f.pen()
	m := f.left

	f.cursorY -= 5
	p.text(m, f.cursorY, number, b.style("mono", 9, "amber"))
	f.cursorY -= 22
	p.text(m, f.cursorY, title, b.style("heading", 20, "navy"))
	f.cursorY -= 8
	p.line(m, f.cursorY, m+180, f.cursorY, b.color("amber"), 1.5)
	p.line(m+182, f.cursorY, f.right(), f.cursorY, b.color("slate-light"), 0.3)
	f.cursorY -= 6
	if subtitle != "" {
		f.cursorY -= 10
		p.text(m, f.cursorY, subtitle, b.style("italic", 9, "slate"))
		f.cursorY -= 8
	}
	f.cursorY -= 12
}

// darkBackdrop 铺满深色底并叠加 20pt 网格，用于封面与封底。
func (b *builder) darkBackdrop(p *Page) {
	t := b.theme
	bg := pen{b: b, layer: &p.Backdrop}
	bg.fill(0, 0, t.PageWidth, t.PageHeight, b.color("navy-dark"), 0)
	grid := b.color("cover-grid")
	for x := 0.0; x < t.PageWidth; x += 20 {
		bg.line(x, 0, x, t.PageHeight, grid, 0.2)
	}
	for y := 0.0; y < t.PageHeight; y += 20 {
		bg.line(0, y, t.PageWidth, y, grid, 0.2)
	}
}

func (b *builder) cover(block *dsl.Block) error {
	t := b.theme
	w, h, m := t.PageWidth, t.PageHeight, t.Margin
	fields := assignments(block)
	field := func(key string) string { return b.str(fields[key].Text()) }

	p := b.collector.newPage("COVER")
	b.darkBackdrop(p)
	body := pen{b: b, layer: &p.Body}

	ring := b.color("cover-ring")
	body.circle(w*0.8, h*0.75, 120, &ring, nil, 0)
	body.circle(w*0.15, h*0.25, 80, &ring, nil, 0)

	x := m + 5
	body.fill(x, h*0.62, 60, 3, b.color("amber"), 0)
	body.text(x, h*0.58, b.upper.String(field("kicker")), b.style("light", 14, "slate-light"))

	y := h * 0.50
	step := h * 0.06
	for _, line := range strings.Split(field("headline"), "\n") {
		body.text(x, y, line, b.style("heading", 42, "white"))
		y -= step
	}
	body.text(x, y, field("tagline"), b.style("italic", 11, "amber-light"))

	ruleY := y - h*0.02
	body.line(x, ruleY, w*0.7, ruleY, b.color("amber"), 0.5)
	if blurb := field("blurb"); blurb != "" {
		if _, err := body.place(blurb, x, ruleY-h*0.03, w*0.55, 15, b.style("body", 10, "slate-light")); err != nil {
			return fmt.Errorf("封面简介: %w", err)
		}
	}

	facts := children(block, "fact")
	if len(facts) > 0 {
		body.line(x, h*0.08, w-m, h*0.08, b.color("cover-grid"), 0.3)
	}
	for i, cmd := range facts {
		a, err := b.args(cmd)
		if err != nil {
			return fmt.Errorf("封面 fact: %w", err)
		}
		fx := x
		if i > 0 {
			fx = w * (0.15 + 0.2*float64(i))
		}
		body.text(fx, h*0.06, a.arg(0), b.style("mono", 7, "slate"))
		body.text(fx, h*0.045, a.arg(1), b.style("mono", 8, "amber-light"))
	}
	return nil
}

// tocState 记录为目录预留的页面，章节排完后再回填真实页码。
type tocState struct {
	title string
	pages []*Page
	first int // 首页可容纳条目数
	rest  int // 后续页可容纳条目数
}

const (
	tocEntryHeight  = 34.0
	tocHeaderHeight = 53.0
)

func (b *builder) reserveContents(sec *dsl.ContentsSection, entries int) *tocState {
	st := &tocState{title: "Table of Contents"}
	if sec.Title != nil && strings.TrimSpace(string(*sec.Title)) != "" {
		st.title = b.str(string(*sec.Title))
	}
	if title, ok := assignments(sec.Block)["title"]; ok {
		st.title = b.str(title.Text())
	}

	t := b.theme
	top := t.PageHeight - t.Margin
	bottom := t.Margin + 20
	st.first = max(1, int(math.Floor((top-tocHeaderHeight-bottom)/tocEntryHeight)))
	st.rest = max(1, int(math.Floor((top-bottom)/tocEntryHeight)))

	pages := 1
	for remaining := entries - st.first; remaining > 0; remaining -= st.rest {
		pages++
	}
	for range pages {
		st.pages = append(st.pages, b.framedPage("TOC"))
	}
	return st
}

func (b *builder) fillContents(st *tocState) error {
	t := b.theme
	m := t.Margin
	f := &flowContext{b: b, section: "TOC", left: m, width: t.ContentWidth()}
	f.page = st.pages[0]
	f.cursorY = f.top()
	f.sectionHeader("00", st.title, "")

	pageIdx, onPage := 0, 0
	for _, entry := range b.outline {
		limit := st.first
		if pageIdx > 0 {
			limit = st.rest
		}
		if onPage == limit {
			pageIdx++
			if pageIdx >= len(st.pages) {
				return fmt.Errorf("目录预留页不足：%d 页", len(st.pages))
			}
			f.page = st.pages[pageIdx]
			f.cursorY = f.top()
			onPage = 0
		}
		f.contentsEntry(entry)
		onPage++
	}
	return b.err
}

func (f *flowContext) contentsEntry(e OutlineEntry) {
	b := f.b
	p := f.pen()
	x, y := f.left, f.cursorY

	p.text(x+5, y, e.Number, b.style("mono", 10, "amber"))
	titleStyle := b.style("heading", 11, "navy")
	p.text(x+35, y, e.Title, titleStyle)

	dots := b.style("body", 8, "slate-light")
	start := x + 35 + p.width(e.Title, titleStyle) + 8
	end := f.right() - 25
	if dot := p.width(". ", dots); dot > 0 && end > start {
		n := int((end - start) / dot)
		p.text(start, y, strings.Repeat(". ", n), dots)
	}
	p.text(f.right()-5, y, fmt.Sprintf("%02d", e.Page), b.style("mono", 9, "slate").aligned("right"))

	y -= 14
	p.text(x+35, y, e.Summary, b.style("italic", 8.5, "slate"))
	f.cursorY = y - 20
}

func (b *builder) chapter(ch *dsl.ChapterSection) error {
	number := b.str(string(ch.Number))
	title := b.str(string(ch.Title))
	code, ok := ch.Param("code")
	if !ok {
		code = "SEC-" + number
	}
	fields := assignments(ch.Block)
	subtitle := b.str(fields["subtitle"].Text())
	summary := b.str(fields["summary"].Text())
	if summary == "" {
		summary = subtitle
	}

	f := b.newFlow(code)
	b.outline = append(b.outline, OutlineEntry{Number: number, Title: title, Summary: summary, Page: f.page.Number})
	if b.logger != nil {
		b.logger.Printf("排版第 %s 章：%s（第 %d 页起）", number, title, f.page.Number)
	}
	f.sectionHeader(number, title, subtitle)

	if ch.Block == nil {
		return nil
	}
	for _, stmt := range ch.Block.Statements {
		switch {
		case stmt.Text != nil:
			if err := f.paragraph(b.str(string(stmt.Text.Value)), blockArgs{attrs: map[string]string{}}); err != nil {
				return fmt.Errorf("第 %s 章: %w", number, err)
			}
		case stmt.Command != nil:
			cmd := stmt.Command
			if err := f.block(cmd); err != nil {
				return fmt.Errorf("第 %s 章第 %d 行 %s: %w", number, cmd.Pos.Line, cmd.Name, err)
			}
		}
		if b.err != nil {
			return b.err
		}
	}
	return nil
}

func (b *builder) closing(block *dsl.Block) error {
	t := b.theme
	w, h := t.PageWidth, t.PageHeight
	fields := assignments(block)
	field := func(key string) string { return b.str(fields[key].Text()) }

	p := b.collector.newPage("CLOSING")
	b.darkBackdrop(p)
	body := pen{b: b, layer: &p.Body}
	cx := w / 2

	body.text(cx, h*0.55, field("headline"), b.style("heading", 28, "white").aligned("center"))
	body.fill(cx-40, h*0.52, 80, 2, b.color("amber"), 0)
	body.text(cx, h*0.48, field("tagline"), b.style("italic", 12, "slate-light").aligned("center"))
	body.text(cx, h*0.44, field("note"), b.style("body", 10, "slate").aligned("center"))
	body.text(cx, h*0.1, field("ref"), b.style("mono", 8, "amber-light").aligned("center"))
	return nil
}
