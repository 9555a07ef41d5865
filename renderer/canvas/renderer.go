package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/trainingdoc/fonts"
	"github.com/ByLCY/trainingdoc/layout"
	"github.com/ByLCY/trainingdoc/renderer"
)

const defaultStrokeWidth = 0.2 // pt

var transparent = color.RGBA{}

// Renderer draws layout results via github.com/tdewolff/canvas.
// Layout coordinates are in points; canvas works in millimetres.
type Renderer struct {
	fonts fonts.Resolver

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var _ renderer.Backend = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string][]byte // extra fonts addressable by name
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fonts:        fonts.Resolver{BaseDir: opts.BaseDir, Extra: map[string][]byte{}},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, data := range opts.Fonts {
		if name == "" || len(data) == 0 {
			continue
		}
		r.fonts.Extra[name] = data
	}
	return r
}

// TextWidth implements layout.Typesetter; size and the returned width are in points.
func (r *Renderer) TextWidth(content, font string, size float64) (float64, error) {
	face, err := r.fontFace(font, size, layout.Color{})
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(content)), nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c, err := r.drawCanvas(page)
		if err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImages 将每页栅格化为图像，dpmm 为每毫米像素数。
func (r *Renderer) RenderImages(result *layout.Result, dpmm float64) ([]image.Image, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if dpmm <= 0 {
		return nil, fmt.Errorf("分辨率必须为正数：%g", dpmm)
	}
	out := make([]image.Image, 0, len(result.Pages))
	for _, page := range result.Pages {
		c, err := r.drawCanvas(page)
		if err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
		out = append(out, rasterizer.Draw(c, canvas.DPMM(dpmm), canvas.DefaultColorSpace))
	}
	return out, nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawCanvas(page layout.Page) (*canvas.Canvas, error) {
	c := canvas.New(toMm(page.Width), toMm(page.Height))
	ctx := canvas.NewContext(c)
	// 布局与 canvas 默认坐标系一致：左下角为原点，y 轴向上
	for _, layer := range []layout.Layer{page.Backdrop, page.Body, page.Frame} {
		if err := r.drawLayer(ctx, layer); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// drawLayer 按矩形、圆、线、多边形、文本的顺序绘制一个图层。
func (r *Renderer) drawLayer(ctx *canvas.Context, layer layout.Layer) error {
	for _, rc := range layer.Rects {
		setPaint(ctx, rc.FillColor, rc.StrokeColor, rc.StrokeWidth)
		var path *canvas.Path
		if rc.Radius > 0 {
			path = canvas.RoundedRectangle(toMm(rc.Width), toMm(rc.Height), toMm(rc.Radius))
		} else {
			path = canvas.Rectangle(toMm(rc.Width), toMm(rc.Height))
		}
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), path)
	}
	for _, ci := range layer.Circles {
		setPaint(ctx, ci.FillColor, ci.StrokeColor, ci.StrokeWidth)
		ctx.DrawPath(toMm(ci.CX), toMm(ci.CY), canvas.Circle(toMm(ci.R)))
	}
	for _, ln := range layer.Lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(transparent)
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(toMm(w))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
	for _, pg := range layer.Polygons {
		if len(pg.Points) < 3 {
			continue
		}
		ctx.SetFillColor(colorFromLayout(pg.FillColor))
		ctx.SetStrokeColor(transparent)
		origin := pg.Points[0]
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		for _, pt := range pg.Points[1:] {
			p.LineTo(toMm(pt.X-origin.X), toMm(pt.Y-origin.Y))
		}
		p.Close()
		ctx.DrawPath(toMm(origin.X), toMm(origin.Y), p)
	}
	for _, tb := range layer.Texts {
		if err := r.drawText(ctx, tb); err != nil {
			return err
		}
	}
	return nil
}

// drawText 在基线 (X, Y) 处绘制单行文本，X 依 Align 作为左端、中心或右端。
func (r *Renderer) drawText(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	var align canvas.TextAlign
	switch strings.ToLower(tb.Align) {
	case "center":
		align = canvas.Center
	case "right", "end":
		align = canvas.Right
	default:
		align = canvas.Left
	}
	ctx.DrawText(toMm(tb.X), toMm(tb.Y), canvas.NewTextLine(face, tb.Content, align))
	return nil
}

func setPaint(ctx *canvas.Context, fill, stroke *layout.Color, strokeWidth float64) {
	if fill != nil {
		ctx.SetFillColor(colorFromLayout(*fill))
	} else {
		ctx.SetFillColor(transparent)
	}
	if stroke != nil {
		w := strokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(*stroke))
		ctx.SetStrokeWidth(toMm(w))
	} else {
		ctx.SetStrokeColor(transparent)
	}
}

func (r *Renderer) fontFace(font string, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[font]; ok {
		return family, nil
	}
	data, err := r.fonts.Bytes(font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(font)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	r.fontFamilies[font] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
