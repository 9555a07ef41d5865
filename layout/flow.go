package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/trainingdoc/dsl"
)

// textStyle 描述单行文本的字体、字号、颜色与对齐方式。
type textStyle struct {
	font  string
	size  float64
	color Color
	align string
}

func (s textStyle) aligned(align string) textStyle {
	s.align = align
	return s
}

// pen 向某一页的指定图层追加图元。
type pen struct {
	b     *builder
	layer *Layer
}

func (p pen) text(x, y float64, content string, st textStyle) {
	if strings.TrimSpace(content) == "" {
		return
	}
	p.layer.Texts = append(p.layer.Texts, TextBox{
		Content:  content,
		X:        x,
		Y:        y,
		Font:     st.font,
		FontSize: st.size,
		Color:    st.color,
		Align:    st.align,
	})
}

func (p pen) line(x1, y1, x2, y2 float64, c Color, width float64) {
	p.layer.Lines = append(p.layer.Lines, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c, Width: width})
}

func (p pen) rect(x, y, w, h float64, fill, stroke *Color, strokeWidth, radius float64) {
	p.layer.Rects = append(p.layer.Rects, Rect{
		X: x, Y: y, Width: w, Height: h,
		Radius:      radius,
		FillColor:   fill,
		StrokeColor: stroke,
		StrokeWidth: strokeWidth,
	})
}

func (p pen) fill(x, y, w, h float64, c Color, radius float64) {
	p.rect(x, y, w, h, colorPtr(c), nil, 0, radius)
}

func (p pen) circle(cx, cy, r float64, fill, stroke *Color, strokeWidth float64) {
	p.layer.Circles = append(p.layer.Circles, Circle{
		CX: cx, CY: cy, R: r,
		FillColor:   fill,
		StrokeColor: stroke,
		StrokeWidth: strokeWidth,
	})
}

// arrow 画一条带实心三角箭头的线段，箭头长 6pt，张角 ±0.4 弧度。
func (p pen) arrow(x1, y1, x2, y2 float64, c Color, width float64) {
	p.line(x1, y1, x2, y2, c, width)
	const headLen, spread = 6.0, 0.4
	angle := math.Atan2(y2-y1, x2-x1)
	p.layer.Polygons = append(p.layer.Polygons, Polygon{
		Points: []Point{
			{X: x2, Y: y2},
			{X: x2 - headLen*math.Cos(angle-spread), Y: y2 - headLen*math.Sin(angle-spread)},
			{X: x2 - headLen*math.Cos(angle+spread), Y: y2 - headLen*math.Sin(angle+spread)},
		},
		FillColor: c,
	})
}

// width 返回文本在 st 下的宽度。
func (p pen) width(content string, st textStyle) float64 {
	return p.b.measure(st.font, st.size)(content)
}

// place 对段落做纯排版后逐行输出，返回最后一行之下的 y。
func (p pen) place(content string, x, y, maxWidth, leading float64, st textStyle) (float64, error) {
	placement, err := Place(content, y, maxWidth, leading, p.b.measure(st.font, st.size))
	if err != nil {
		return y, err
	}
	for i, line := range placement.Lines {
		p.text(x, placement.Baseline(i), line, st)
	}
	return placement.EndY, nil
}

// flowContext 维护章节内自上而下推进的游标，空间不足时换页并沿用章节代码。
type flowContext struct {
	b       *builder
	page    *Page
	section string
	left    float64
	width   float64
	cursorY float64
	onBreak func() // 换页后回调，例如重绘表头
}

func (b *builder) newFlow(section string) *flowContext {
	f := &flowContext{
		b:       b,
		section: section,
		left:    b.theme.Margin,
		width:   b.theme.ContentWidth(),
	}
	f.page = b.framedPage(section)
	f.cursorY = f.top()
	return f
}

func (f *flowContext) top() float64    { return f.b.theme.PageHeight - f.b.theme.Margin }
func (f *flowContext) bottom() float64 { return f.b.theme.Margin + 20 }
func (f *flowContext) right() float64  { return f.left + f.width }

func (f *flowContext) pen() pen { return pen{b: f.b, layer: &f.page.Body} }

func (f *flowContext) hasSpace(needed float64) bool {
	return f.cursorY-needed >= f.bottom()
}

func (f *flowContext) ensureSpace(needed float64) {
	if !f.hasSpace(needed) {
		f.pageBreak()
	}
}

// ensureLine 保证游标仍在内容区内，可以再放一行。
func (f *flowContext) ensureLine() {
	if f.cursorY < f.bottom() {
		f.pageBreak()
	}
}

func (f *flowContext) pageBreak() {
	f.page = f.b.framedPage(f.section)
	f.cursorY = f.top()
	if f.onBreak != nil {
		f.onBreak()
	}
}

// flowText 在当前游标处排版段落，逐行推进，越过底部时换页续排。
func (f *flowContext) flowText(content string, x, maxWidth, leading float64, st textStyle) error {
	placement, err := Place(content, f.cursorY, maxWidth, leading, f.b.measure(st.font, st.size))
	if err != nil {
		return err
	}
	// 换页会重置游标，因此逐行重新计算基线，不使用 Placement 的 Baseline 与 EndY
	for _, line := range placement.Lines {
		f.ensureLine()
		f.pen().text(x, f.cursorY, line, st)
		f.cursorY -= leading
	}
	return nil
}

// blockArgs 是命令参数：前置的非标识符参数为位置参数，其后为 key value 对。
type blockArgs struct {
	pos   []string
	attrs map[string]string
}

func parseArgs(args []*dsl.Lexeme) (blockArgs, error) {
	out := blockArgs{attrs: map[string]string{}}
	cursor := 0
	for cursor < len(args) && args[cursor].Type != "Ident" {
		out.pos = append(out.pos, args[cursor].Value)
		cursor++
	}
	for cursor < len(args) {
		if cursor+1 >= len(args) {
			return out, fmt.Errorf("参数 %s 缺少取值", args[cursor].Value)
		}
		out.attrs[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return out, nil
}

func (a blockArgs) arg(i int) string {
	if i < len(a.pos) {
		return a.pos[i]
	}
	return ""
}

func (a blockArgs) number(key string, def float64) (float64, error) {
	raw, ok := a.attrs[key]
	if !ok {
		return def, nil
	}
	l, err := ParseLength(raw)
	if err != nil {
		return 0, fmt.Errorf("参数 %s: %w", key, err)
	}
	return l.ToPT(), nil
}

func (a blockArgs) integer(key string, def int) (int, error) {
	raw, ok := a.attrs[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("参数 %s 需要整数: %w", key, err)
	}
	return n, nil
}

// leading 解析 leading 参数（如 1.4x 或 15pt），缺省返回 def。
func (a blockArgs) leading(size, def float64) (float64, error) {
	raw, ok := a.attrs["leading"]
	if !ok {
		return def, nil
	}
	spec, err := ParseLineHeight(raw)
	if err != nil {
		return 0, err
	}
	return spec.Resolve(size), nil
}

// args 解析命令参数，并对位置参数做插值与规范化。
func (b *builder) args(cmd *dsl.Command) (blockArgs, error) {
	a, err := parseArgs(cmd.Args)
	if err != nil {
		return a, err
	}
	for i := range a.pos {
		a.pos[i] = b.str(a.pos[i])
	}
	return a, nil
}

// texts 返回块内的所有字符串字面量。
func (b *builder) texts(block *dsl.Block) []string {
	if block == nil {
		return nil
	}
	var out []string
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			out = append(out, b.str(string(stmt.Text.Value)))
		}
	}
	return out
}

// children 返回块内名为 name 的子命令。
func children(block *dsl.Block, name string) []*dsl.Command {
	if block == nil {
		return nil
	}
	var out []*dsl.Command
	for _, stmt := range block.Statements {
		if stmt.Command != nil && stmt.Command.Name == name {
			out = append(out, stmt.Command)
		}
	}
	return out
}

// assignments 收集块内的 key: value 赋值。
func assignments(block *dsl.Block) map[string]*dsl.Value {
	out := map[string]*dsl.Value{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil {
			out[stmt.Assignment.Key] = stmt.Assignment.Value
		}
	}
	return out
}

func colorPtr(c Color) *Color { return &c }
