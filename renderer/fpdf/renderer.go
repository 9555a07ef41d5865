// Package fpdfrenderer 使用 github.com/go-pdf/fpdf 输出 PDF，字体以 UTF-8 TrueType 方式嵌入。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/ByLCY/trainingdoc/fonts"
	"github.com/ByLCY/trainingdoc/layout"
	"github.com/ByLCY/trainingdoc/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer 绘制布局结果；布局坐标以左下角为原点，fpdf 以左上角为原点，绘制时翻转 y。
type Renderer struct {
	fonts fonts.Resolver

	mu       sync.Mutex
	measurer *fpdf.Fpdf
	measured map[string]bool // 已注册到 measurer 的字体
}

var _ renderer.Backend = (*Renderer)(nil)

// Options configures the fpdf renderer.
type Options struct {
	BaseDir string
	Fonts   map[string][]byte
}

// NewRenderer 创建渲染器。
func NewRenderer(opts Options) *Renderer {
	extra := map[string][]byte{}
	for name, data := range opts.Fonts {
		if name != "" && len(data) > 0 {
			extra[name] = data
		}
	}
	return &Renderer{
		fonts:    fonts.Resolver{BaseDir: opts.BaseDir, Extra: extra},
		measured: map[string]bool{},
	}
}

// TextWidth implements layout.Typesetter，单位为 pt。
func (r *Renderer) TextWidth(content, font string, size float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.measurer == nil {
		r.measurer = newDocument(layout.DefaultTheme().PageWidth, layout.DefaultTheme().PageHeight)
	}
	if !r.measured[font] {
		if err := r.register(r.measurer, font); err != nil {
			return 0, err
		}
		r.measured[font] = true
	}
	r.measurer.SetFont(familyName(font), "", size)
	w := r.measurer.GetStringWidth(content)
	if err := r.measurer.Error(); err != nil {
		return 0, fmt.Errorf("测量文本宽度失败: %w", err)
	}
	return w, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	first := result.Pages[0]
	doc := newDocument(first.Width, first.Height)
	setMeta(doc, result.Meta)

	registered := map[string]bool{}
	for _, page := range result.Pages {
		for _, layer := range []layout.Layer{page.Backdrop, page.Body, page.Frame} {
			for _, tb := range layer.Texts {
				if registered[tb.Font] {
					continue
				}
				if err := r.register(doc, tb.Font); err != nil {
					return nil, err
				}
				registered[tb.Font] = true
			}
		}
	}

	for _, page := range result.Pages {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		d := drawer{doc: doc, height: page.Height}
		for _, layer := range []layout.Layer{page.Backdrop, page.Body, page.Frame} {
			d.layer(layer)
		}
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) register(doc *fpdf.Fpdf, font string) error {
	data, err := r.fonts.Bytes(font)
	if err != nil {
		return err
	}
	doc.AddUTF8FontFromBytes(familyName(font), "", data)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	return nil
}

func newDocument(width, height float64) *fpdf.Fpdf {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	return doc
}

func setMeta(doc *fpdf.Fpdf, meta layout.DocumentMeta) {
	doc.SetTitle(meta.Title, true)
	doc.SetAuthor(meta.Author, true)
	doc.SetSubject(meta.Subject, true)
	doc.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	doc.SetCreator(meta.Creator, true)
}

// familyName 将字体名规范为 fpdf 的字体族名。
func familyName(font string) string {
	return strings.ToLower(strings.NewReplacer("/", "_", ".", "_", " ", "_").Replace(font))
}

type drawer struct {
	doc    *fpdf.Fpdf
	height float64
}

// y 将布局坐标翻转为 fpdf 坐标。
func (d drawer) y(v float64) float64 { return d.height - v }

// layer 按矩形、圆、线、多边形、文本的顺序绘制一个图层。
func (d drawer) layer(l layout.Layer) {
	for _, rc := range l.Rects {
		style := d.paint(rc.FillColor, rc.StrokeColor, rc.StrokeWidth)
		if style == "" {
			continue
		}
		top := d.y(rc.Y + rc.Height)
		if rc.Radius > 0 {
			d.doc.RoundedRect(rc.X, top, rc.Width, rc.Height, rc.Radius, "1234", style)
		} else {
			d.doc.Rect(rc.X, top, rc.Width, rc.Height, style)
		}
	}
	for _, c := range l.Circles {
		if style := d.paint(c.FillColor, c.StrokeColor, c.StrokeWidth); style != "" {
			d.doc.Circle(c.CX, d.y(c.CY), c.R, style)
		}
	}
	for _, ln := range l.Lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		d.doc.SetDrawColor(ln.Color.R, ln.Color.G, ln.Color.B)
		d.doc.SetLineWidth(w)
		d.doc.Line(ln.X1, d.y(ln.Y1), ln.X2, d.y(ln.Y2))
	}
	for _, pg := range l.Polygons {
		if len(pg.Points) < 3 {
			continue
		}
		points := make([]fpdf.PointType, len(pg.Points))
		for i, p := range pg.Points {
			points[i] = fpdf.PointType{X: p.X, Y: d.y(p.Y)}
		}
		d.doc.SetFillColor(pg.FillColor.R, pg.FillColor.G, pg.FillColor.B)
		d.doc.Polygon(points, "F")
	}
	for _, tb := range l.Texts {
		d.text(tb)
	}
}

// paint 设置填充与描边颜色并返回 fpdf 的绘制样式。
func (d drawer) paint(fill, stroke *layout.Color, strokeWidth float64) string {
	style := ""
	if fill != nil {
		d.doc.SetFillColor(fill.R, fill.G, fill.B)
		style += "F"
	}
	if stroke != nil {
		w := strokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		d.doc.SetDrawColor(stroke.R, stroke.G, stroke.B)
		d.doc.SetLineWidth(w)
		style += "D"
	}
	return style
}

func (d drawer) text(tb layout.TextBox) {
	d.doc.SetFont(familyName(tb.Font), "", tb.FontSize)
	d.doc.SetTextColor(tb.Color.R, tb.Color.G, tb.Color.B)
	x := tb.X
	switch strings.ToLower(tb.Align) {
	case "center":
		x -= d.doc.GetStringWidth(tb.Content) / 2
	case "right", "end":
		x -= d.doc.GetStringWidth(tb.Content)
	}
	d.doc.Text(x, d.y(tb.Y), tb.Content)
}
