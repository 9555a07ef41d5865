package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/trainingdoc/dsl"
)

type blockFunc func(f *flowContext, cmd *dsl.Command, a blockArgs) error

var blockHandlers map[string]blockFunc

func init() {
	blockHandlers = map[string]blockFunc{
		"subsection": (*flowContext).subsection,
		"heading":    (*flowContext).heading,
		"para":       (*flowContext).para,
		"bullet":     (*flowContext).bullets,
		"bullets":    (*flowContext).bullets,
		"numbered":   (*flowContext).numbered,
		"code":       (*flowContext).code,
		"caption":    (*flowContext).caption,
		"note":       (*flowContext).note,
		"info":       (*flowContext).info,
		"statuses":   (*flowContext).statuses,
		"flow":       (*flowContext).flow,
		"fields":     (*flowContext).fields,
		"pairs":      (*flowContext).pairs,
		"modules":    (*flowContext).modules,
		"steps":      (*flowContext).steps,
		"events":     (*flowContext).events,
		"marker":     (*flowContext).marker,
		"table":      (*flowContext).table,
		"legend":     (*flowContext).legend,
		"methods":    (*flowContext).methods,
		"tree":       (*flowContext).tree,
		"panels":     (*flowContext).panels,
		"endpoints":  (*flowContext).endpoints,
		"space":      (*flowContext).space,
		"keep":       (*flowContext).keep,
		"pagebreak":  (*flowContext).pagebreak,
	}
}

// block 执行一条章节命令；任何命令都可带 keep N，要求当前页至少余 N pt。
func (f *flowContext) block(cmd *dsl.Command) error {
	handler, ok := blockHandlers[cmd.Name]
	if !ok {
		return fmt.Errorf("未知的内容块：%s", cmd.Name)
	}
	a, err := f.b.args(cmd)
	if err != nil {
		return err
	}
	if _, ok := a.attrs["keep"]; ok {
		need, err := a.number("keep", 0)
		if err != nil {
			return err
		}
		f.ensureSpace(need)
	}
	return handler(f, cmd, a)
}

// text 返回位置参数与块内字面量拼接的正文。
func (f *flowContext) text(cmd *dsl.Command, a blockArgs) string {
	parts := append([]string{}, a.pos...)
	parts = append(parts, f.b.texts(cmd.Block)...)
	return strings.Join(parts, " ")
}

// items 逐个返回子命令的参数。
func (f *flowContext) items(cmd *dsl.Command, name string) ([]*dsl.Command, []blockArgs, error) {
	cmds := children(cmd.Block, name)
	out := make([]blockArgs, 0, len(cmds))
	for _, c := range cmds {
		a, err := f.b.args(c)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, a)
	}
	return cmds, out, nil
}

func (f *flowContext) subsection(_ *dsl.Command, a blockArgs) error {
	label, title := "", a.arg(0)
	if len(a.pos) > 1 {
		label, title = a.arg(0), a.arg(1)
	}
	// 小节标题至少带一行正文，避免孤悬页底
	f.ensureSpace(50)
	b, p, m := f.b, f.pen(), f.left

	f.cursorY -= 8
	x := m
	if label != "" {
		p.text(m, f.cursorY+1, label, b.style("mono", 7, "amber"))
		x = m + 40
	}
	p.text(x, f.cursorY, title, b.style("heading", 13, "navy-dark"))
	f.cursorY -= 4
	p.line(m, f.cursorY, m+120, f.cursorY, b.color("amber"), 0.6)
	f.cursorY -= 14
	return nil
}

func (f *flowContext) heading(cmd *dsl.Command, a blockArgs) error {
	f.cursorY -= 6
	f.ensureLine()
	f.pen().text(f.left, f.cursorY, f.text(cmd, a), f.b.style("heading", 10.5, "navy"))
	f.cursorY -= 14
	return nil
}

func (f *flowContext) para(cmd *dsl.Command, a blockArgs) error {
	return f.paragraph(f.text(cmd, a), a)
}

func (f *flowContext) paragraph(content string, a blockArgs) error {
	indent, err := a.number("indent", 0)
	if err != nil {
		return err
	}
	st := f.b.style("body", 10.5, "charcoal")
	leading, err := a.leading(st.size, 15)
	if err != nil {
		return err
	}
	if err := f.flowText(content, f.left+indent, f.width-indent, leading, st); err != nil {
		return err
	}
	f.cursorY -= 4
	return nil
}

func (f *flowContext) bullets(cmd *dsl.Command, a blockArgs) error {
	indent, err := a.number("indent", 15)
	if err != nil {
		return err
	}
	items := append([]string{}, a.pos...)
	items = append(items, f.b.texts(cmd.Block)...)
	for _, item := range items {
		f.ensureLine()
		f.pen().text(f.left+indent-10, f.cursorY, "•", f.b.style("body", 10, "slate"))
		if err := f.flowText(item, f.left+indent+2, f.width-indent-2, 14, f.b.style("body", 10, "charcoal")); err != nil {
			return err
		}
		f.cursorY -= 3
	}
	return nil
}

func (f *flowContext) numbered(cmd *dsl.Command, a blockArgs) error {
	start, err := a.integer("start", 1)
	if err != nil {
		return err
	}
	indent, err := a.number("indent", 15)
	if err != nil {
		return err
	}
	items := append([]string{}, a.pos...)
	items = append(items, f.b.texts(cmd.Block)...)
	for i, item := range items {
		f.ensureLine()
		f.pen().text(f.left+indent-12, f.cursorY, strconv.Itoa(start+i)+".", f.b.style("mono", 8.5, "amber"))
		if err := f.flowText(item, f.left+indent+4, f.width-indent-4, 14, f.b.style("body", 10, "charcoal")); err != nil {
			return err
		}
		f.cursorY -= 3
	}
	return nil
}

func (f *flowContext) code(cmd *dsl.Command, a blockArgs) error {
	st := f.b.style("mono", 8, "navy-light")
	for _, line := range append(append([]string{}, a.pos...), f.b.texts(cmd.Block)...) {
		f.ensureLine()
		f.pen().text(f.left+15, f.cursorY, line, st)
		f.cursorY -= 12
	}
	return nil
}

func (f *flowContext) caption(cmd *dsl.Command, a blockArgs) error {
	indent, err := a.number("indent", 10)
	if err != nil {
		return err
	}
	f.ensureLine()
	f.pen().text(f.left+indent, f.cursorY, f.text(cmd, a), f.b.style("italic", 8.5, "slate"))
	f.cursorY -= 14
	return nil
}

// note 绘制带强调条的提示框，框高随正文行数增长。
func (f *flowContext) note(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	accent, err := b.colorAttr(a, "color", "amber")
	if err != nil {
		return err
	}
	title := a.arg(0)
	body := strings.Join(b.texts(cmd.Block), " ")
	st := b.style("body", 9, "charcoal")

	lines := Wrap(body, f.width-24, b.measure(st.font, st.size))
	boxH := math.Max(40, 28+12*float64(len(lines)))
	f.ensureSpace(boxH + 10)

	p, y, m := f.pen(), f.cursorY, f.left
	p.rect(m, y-boxH, f.width, boxH, colorPtr(b.color("note-bg")), &accent, 0.5, 3)
	p.fill(m, y-boxH, 3, boxH, accent, 1)
	p.text(m+12, y-14, b.upper.String(title), textStyle{font: b.theme.Fonts.Heading, size: 9, color: accent, align: "left"})
	if _, err := p.place(body, m+12, y-28, f.width-24, 12, st); err != nil {
		return err
	}
	f.cursorY = y - boxH - 10
	return nil
}

func (f *flowContext) info(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	accent, err := b.colorAttr(a, "color", "blue")
	if err != nil {
		return err
	}
	lines := b.texts(cmd.Block)
	boxH := 18 + 13*float64(len(lines))
	f.ensureSpace(boxH + 8)

	p, y, m := f.pen(), f.cursorY, f.left
	p.rect(m, y-boxH, f.width, boxH, colorPtr(b.color("info-bg")), &accent, 0.4, 3)
	p.fill(m, y-boxH, 3, boxH, accent, 1)
	p.text(m+12, y-13, a.arg(0), textStyle{font: b.theme.Fonts.Heading, size: 9, color: accent, align: "left"})
	st := b.style("body", 9, "charcoal")
	for i, line := range lines {
		p.text(m+12, y-27-13*float64(i), Ellipsize(line, f.width-24, b.measure(st.font, st.size)), st)
	}
	f.cursorY = y - boxH - 8
	return nil
}

// statuses 绘制状态胶囊序列，前 arrows 个之间以箭头相连，超出行宽时折行。
func (f *flowContext) statuses(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	_, pills, err := f.items(cmd, "status")
	if err != nil {
		return err
	}
	arrows, err := a.integer("arrows", len(pills)-1)
	if err != nil {
		return err
	}
	fixed, err := a.number("width", 0)
	if err != nil {
		return err
	}
	label := b.style("mono", 7, "charcoal")

	f.ensureSpace(38)
	sx := f.left + 10
	for i, pill := range pills {
		bg, err := b.colorAttr(pill, "bg", "slate-pale")
		if err != nil {
			return err
		}
		fg, err := b.colorAttr(pill, "fg", "charcoal")
		if err != nil {
			return err
		}
		name := pill.arg(0)
		w := fixed
		if w <= 0 {
			w = f.pen().width(name, label) + 14
		}
		if sx+w > f.right() && sx > f.left+10 {
			f.cursorY -= 26
			f.ensureSpace(38)
			sx = f.left + 10
		}
		p, y := f.pen(), f.cursorY
		p.fill(sx, y-20, w, 18, bg, 9)
		st := label
		st.color = fg
		p.text(sx+w/2, y-15, name, st.aligned("center"))
		if i < len(pills)-1 && i < arrows {
			p.arrow(sx+w+3, y-11, sx+w+18, y-11, b.color("slate-light"), 0.8)
			sx += w + 22
		} else {
			sx += w + 8
		}
	}
	f.cursorY -= 38
	return nil
}

// flow 绘制横向流程图：圆角节点、节点间箭头与节点下方标签。
func (f *flowContext) flow(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	_, nodes, err := f.items(cmd, "node")
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	h, err := a.number("height", 30)
	if err != nil {
		return err
	}
	size, err := a.number("size", 7.5)
	if err != nil {
		return err
	}
	gap, err := a.number("gap", 14)
	if err != nil {
		return err
	}
	start, err := a.number("start", 8)
	if err != nil {
		return err
	}
	n := float64(len(nodes))
	defW := math.Min(85, (f.width-2*start-(n-1)*gap)/n)

	hasLabels := false
	for _, node := range nodes {
		if node.attrs["label"] != "" {
			hasLabels = true
		}
	}
	need := h + 5 + 15
	if hasLabels {
		need += 20
	}
	f.ensureSpace(need)

	p := f.pen()
	nodeY := f.cursorY - (h + 5)
	x := f.left + start
	nodeStyle := b.style("heading", size, "white").aligned("center")
	labelStyle := b.style("mono", 7, "slate").aligned("center")
	arrowColor := b.color("amber")
	for i, node := range nodes {
		fill, err := b.colorAttr(node, "color", "navy")
		if err != nil {
			return err
		}
		w, err := node.number("width", defW)
		if err != nil {
			return err
		}
		p.fill(x, nodeY, w, h, fill, 4)
		lines := strings.Split(node.arg(0), "\n")
		ty := nodeY + h/2 + float64(len(lines)-1)*6 - size*0.35
		for _, line := range lines {
			p.text(x+w/2, ty, line, nodeStyle)
			ty -= 12
		}
		if label := b.str(node.attrs["label"]); label != "" {
			p.text(x+w/2, nodeY-15, label, labelStyle)
		}
		if i < len(nodes)-1 {
			p.arrow(x+w+2, nodeY+h/2, x+w+gap-2, nodeY+h/2, arrowColor, 0.8)
		}
		x += w + gap
	}
	f.cursorY = nodeY - 15
	if hasLabels {
		f.cursorY -= 20
	}
	return nil
}

func (f *flowContext) fields(cmd *dsl.Command, a blockArgs) error {
	column, err := a.number("column", 160)
	if err != nil {
		return err
	}
	_, rows, err := f.items(cmd, "field")
	if err != nil {
		return err
	}
	key := f.b.style("mono", 8, "teal")
	desc := f.b.style("body", 9.5, "charcoal")
	measure := f.b.measure(desc.font, desc.size)
	for _, row := range rows {
		f.ensureSpace(16)
		p := f.pen()
		p.text(f.left+10, f.cursorY, row.arg(0), key)
		p.text(f.left+column, f.cursorY, Ellipsize(row.arg(1), f.width-column, measure), desc)
		f.cursorY -= 15
	}
	return nil
}

func (f *flowContext) pairs(cmd *dsl.Command, a blockArgs) error {
	column, err := a.number("column", 90)
	if err != nil {
		return err
	}
	_, rows, err := f.items(cmd, "pair")
	if err != nil {
		return err
	}
	label := f.b.style("heading", 9, "navy")
	desc := f.b.style("body", 9.5, "charcoal")
	measure := f.b.measure(desc.font, desc.size)
	for _, row := range rows {
		f.ensureSpace(16)
		p := f.pen()
		p.text(f.left+5, f.cursorY, row.arg(0), label)
		p.text(f.left+column, f.cursorY, Ellipsize(row.arg(1), f.width-column, measure), desc)
		f.cursorY -= 16
	}
	return nil
}

func (f *flowContext) modules(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	_, rows, err := f.items(cmd, "module")
	if err != nil {
		return err
	}
	desc := b.style("body", 9, "charcoal")
	measure := b.measure(desc.font, desc.size)
	for _, row := range rows {
		accent, err := b.colorAttr(row, "color", "navy")
		if err != nil {
			return err
		}
		f.ensureSpace(27)
		p, y, m := f.pen(), f.cursorY, f.left
		p.fill(m, y-22, 4, 22, accent, 0)
		p.fill(m+4, y-22, f.width-4, 22, b.color("slate-pale"), 2)
		p.text(m+14, y-15, row.arg(0), textStyle{font: b.theme.Fonts.Heading, size: 9.5, color: accent, align: "left"})
		p.text(m+100, y-15, Ellipsize(row.arg(1), f.width-105, measure), desc)
		f.cursorY -= 27
	}
	return nil
}

// steps 绘制编号步骤：圆形序号、标题、接口路径与说明，步骤之间以竖线相连。
func (f *flowContext) steps(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	cmds, rows, err := f.items(cmd, "step")
	if err != nil {
		return err
	}
	amber := b.color("amber")
	for i, row := range rows {
		f.ensureSpace(70)
		p, y, m := f.pen(), f.cursorY, f.left
		p.circle(m+12, y-6, 10, &amber, nil, 0)
		p.text(m+12, y-10, strconv.Itoa(i+1), b.style("heading", 9, "white").aligned("center"))
		p.text(m+30, y, row.arg(0), b.style("heading", 11, "navy"))
		p.text(m+30, y-14, row.arg(1), b.style("mono", 7.5, "teal"))
		f.cursorY -= 30
		desc := strings.Join(b.texts(cmds[i].Block), " ")
		if err := f.flowText(desc, m+30, f.width-35, 13, b.style("body", 9.5, "charcoal")); err != nil {
			return err
		}
		if i < len(rows)-1 {
			f.cursorY -= 4
			f.pen().line(m+12, f.cursorY+2, m+12, f.cursorY-8, b.color("amber-light"), 0.5)
			f.cursorY -= 10
		}
	}
	return nil
}

// events 绘制业务事件列表：色条、标题、凭证类型、所属模块与说明。
func (f *flowContext) events(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	accent, err := b.colorAttr(a, "color", "amber")
	if err != nil {
		return err
	}
	column, err := a.number("column", 200)
	if err != nil {
		return err
	}
	cmds, rows, err := f.items(cmd, "event")
	if err != nil {
		return err
	}
	for i, row := range rows {
		f.ensureSpace(60)
		p, y, m := f.pen(), f.cursorY, f.left
		p.fill(m, y-2, 4, 14, accent, 0)
		p.text(m+12, y, row.arg(0), b.style("heading", 10, "navy"))
		if txn := row.arg(1); txn != "" {
			p.text(m+column, y+1, "txn: "+txn, b.style("mono", 7, "teal"))
		}
		if module := row.arg(2); module != "" {
			p.text(f.right(), y+1, "["+module+"]", b.style("mono", 7, "slate").aligned("right"))
		}
		f.cursorY -= 16
		desc := strings.Join(b.texts(cmds[i].Block), " ")
		if err := f.flowText(desc, m+12, f.width-15, 13, b.style("body", 9.5, "charcoal")); err != nil {
			return err
		}
		f.cursorY -= 10
	}
	return nil
}

func (f *flowContext) marker(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	accent, err := b.colorAttr(a, "color", "amber")
	if err != nil {
		return err
	}
	f.ensureSpace(30)
	p, y, m := f.pen(), f.cursorY, f.left
	p.fill(m, y-2, 4, 14, accent, 0)
	p.text(m+12, y, f.text(cmd, a), b.style("heading", 10, "navy"))
	f.cursorY -= 16
	return nil
}

// table 绘制表格，表头在每次换页后重绘，偶数行带底色，单元格超宽时截断。
func (f *flowContext) table(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	_, cols, err := f.items(cmd, "column")
	if err != nil {
		return err
	}
	_, rows, err := f.items(cmd, "row")
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("表格至少需要一列")
	}

	widths := make([]float64, len(cols))
	fixed, open := 0.0, 0
	for i, c := range cols {
		w, err := c.number("width", 0)
		if err != nil {
			return err
		}
		if len(c.pos) > 1 {
			l, err := ParseLength(c.arg(1))
			if err != nil {
				return fmt.Errorf("列 %s 宽度: %w", c.arg(0), err)
			}
			w = l.ToPT()
		}
		widths[i] = w
		if w > 0 {
			fixed += w
		} else {
			open++
		}
	}
	if open > 0 {
		share := math.Max(0, f.width-fixed) / float64(open)
		for i := range widths {
			if widths[i] <= 0 {
				widths[i] = share
			}
		}
	}

	header := func() {
		p, y := f.pen(), f.cursorY
		p.fill(f.left, y-20, f.width, 20, b.color("navy"), 0)
		cx := f.left + 8
		for i, c := range cols {
			p.text(cx, y-14, c.arg(0), b.style("heading", 8, "white"))
			cx += widths[i]
		}
		f.cursorY -= 20
	}
	f.ensureSpace(38)
	header()
	f.onBreak = header
	defer func() { f.onBreak = nil }()

	first := b.style("mono", 7.5, "charcoal")
	other := b.style("body", 9, "charcoal")
	for r, row := range rows {
		f.ensureSpace(20)
		p, y := f.pen(), f.cursorY
		if r%2 == 1 {
			p.fill(f.left, y-18, f.width, 18, b.color("slate-pale"), 0)
		}
		cx := f.left + 8
		for i, w := range widths {
			st := other
			if i == 0 {
				st = first
			}
			p.text(cx, y-12, Ellipsize(row.arg(i), w-12, b.measure(st.font, st.size)), st)
			cx += w
		}
		f.cursorY -= 18
	}
	return nil
}

func (f *flowContext) legend(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	column, err := a.number("column", 140)
	if err != nil {
		return err
	}
	_, rows, err := f.items(cmd, "entry")
	if err != nil {
		return err
	}
	desc := b.style("mono", 7, "charcoal")
	measure := b.measure(desc.font, desc.size)
	for _, row := range rows {
		accent, err := b.colorAttr(row, "color", "navy")
		if err != nil {
			return err
		}
		f.ensureSpace(22)
		p, y, m := f.pen(), f.cursorY, f.left
		p.fill(m, y-2, 3, 14, accent, 0)
		p.text(m+10, y, row.arg(0), b.style("heading", 8.5, "navy"))
		p.text(m+column, y, Ellipsize(row.arg(1), f.width-column, measure), desc)
		f.cursorY -= 19
	}
	return nil
}

func (f *flowContext) methods(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	_, rows, err := f.items(cmd, "method")
	if err != nil {
		return err
	}
	for _, row := range rows {
		f.ensureSpace(30)
		p, m := f.pen(), f.left
		p.text(m+5, f.cursorY, row.arg(0), b.style("mono", 7.5, "teal"))
		f.cursorY -= 13
		p.text(m+15, f.cursorY, row.arg(1), b.style("italic", 8.5, "slate"))
		f.cursorY -= 16
	}
	return nil
}

// tree 绘制分类树：左侧根节点色块，右侧子项横排，超出行宽时折行。
func (f *flowContext) tree(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	cmds, rows, err := f.items(cmd, "branch")
	if err != nil {
		return err
	}
	child := b.style("body", 9, "charcoal")
	connector := b.style("body", 9, "slate-light")
	for i, row := range rows {
		accent, err := b.colorAttr(row, "color", "navy")
		if err != nil {
			return err
		}
		leaves := b.texts(cmds[i].Block)
		f.ensureSpace(18 + 14*float64(len(leaves)))

		p, m := f.pen(), f.left
		p.fill(m+5, f.cursorY-14, 80, 16, accent, 3)
		p.text(m+45, f.cursorY-10, row.arg(0), b.style("heading", 8.5, "white").aligned("center"))

		cx := m + 100
		for _, leaf := range leaves {
			w := p.width(leaf, child)
			if cx+w > f.right() && cx > m+100 {
				cx = m + 100
				f.cursorY -= 14
			}
			p.text(cx-10, f.cursorY-10, "└", connector)
			p.text(cx, f.cursorY-10, leaf, child)
			cx += w + 18
		}
		f.cursorY -= 22
	}
	return nil
}

// panels 并排绘制若干说明面板，每个面板含标题、说明、公式与细节四行。
func (f *flowContext) panels(cmd *dsl.Command, a blockArgs) error {
	b := f.b
	h, err := a.number("height", 75)
	if err != nil {
		return err
	}
	gap, err := a.number("gap", 30)
	if err != nil {
		return err
	}
	_, items, err := f.items(cmd, "panel")
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	f.cursorY -= 5
	f.ensureSpace(h + 15)

	n := float64(len(items))
	boxW := (f.width - gap*(n-1)) / n
	p, y := f.pen(), f.cursorY
	for i, item := range items {
		accent, err := b.colorAttr(item, "color", "navy")
		if err != nil {
			return err
		}
		bg, err := b.colorAttr(item, "fill", "slate-pale")
		if err != nil {
			return err
		}
		x := f.left + float64(i)*(boxW+gap)
		p.rect(x, y-h, boxW, h, &bg, &accent, 0.5, 4)
		cx := x + boxW/2
		p.text(cx, y-15, item.arg(0), textStyle{font: b.theme.Fonts.Heading, size: 11, color: accent, align: "center"})
		p.text(cx, y-30, item.arg(1), b.style("italic", 9, "slate").aligned("center"))
		p.text(cx, y-50, item.arg(2), textStyle{font: b.theme.Fonts.MonoBold, size: 9, color: accent, align: "center"})
		p.text(cx, y-64, item.arg(3), b.style("body", 8.5, "slate").aligned("center"))
	}
	f.cursorY = y - h - 15
	return nil
}

func (f *flowContext) endpoints(cmd *dsl.Command, _ blockArgs) error {
	b := f.b
	cmds, rows, err := f.items(cmd, "endpoint")
	if err != nil {
		return err
	}
	for i, row := range rows {
		f.ensureSpace(40)
		p, m := f.pen(), f.left
		p.text(m+10, f.cursorY, row.arg(0), b.style("heading", 9.5, "navy"))
		p.text(m+10, f.cursorY-13, row.arg(1), b.style("mono", 7, "teal"))
		f.cursorY -= 26
		desc := strings.Join(b.texts(cmds[i].Block), " ")
		if err := f.flowText(desc, m+10, f.width-15, 12, b.style("body", 9, "charcoal")); err != nil {
			return err
		}
		f.cursorY -= 10
	}
	return nil
}

func (f *flowContext) space(_ *dsl.Command, a blockArgs) error {
	l, err := ParseLength(a.arg(0))
	if err != nil {
		return fmt.Errorf("space 需要长度参数: %w", err)
	}
	f.cursorY -= l.ToPT()
	return nil
}

func (f *flowContext) keep(_ *dsl.Command, a blockArgs) error {
	l, err := ParseLength(a.arg(0))
	if err != nil {
		return fmt.Errorf("keep 需要长度参数: %w", err)
	}
	f.ensureSpace(l.ToPT())
	return nil
}

func (f *flowContext) pagebreak(_ *dsl.Command, _ blockArgs) error {
	f.pageBreak()
	return nil
}
