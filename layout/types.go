package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。
// 所有坐标与尺寸单位均为 pt，原点位于页面左下角，y 轴向上。

// Result 保存布局后的页面、目录与文档元信息。
type Result struct {
	Pages   []Page         `json:"pages"`
	Outline []OutlineEntry `json:"outline"`
	Meta    DocumentMeta   `json:"meta"`
}

// OutlineEntry 记录章节起始页，目录页与 PDF 书签都依赖它。
type OutlineEntry struct {
	Number  string `json:"number"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Page    int    `json:"page"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸与可直接渲染的三个图层。
// 绘制顺序：Backdrop → Body → Frame。
type Page struct {
	Number   int     `json:"number"`
	Section  string  `json:"section,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Backdrop Layer   `json:"backdrop"`
	Body     Layer   `json:"body"`
	Frame    Layer   `json:"frame"`
}

// Layer 内的元素按 Rects → Circles → Lines → Polygons → Texts 的顺序绘制。
type Layer struct {
	Rects    []Rect    `json:"rects,omitempty"`
	Circles  []Circle  `json:"circles,omitempty"`
	Lines    []Line    `json:"lines,omitempty"`
	Polygons []Polygon `json:"polygons,omitempty"`
	Texts    []TextBox `json:"texts,omitempty"`
}

// Empty 判断图层是否没有任何元素。
func (l Layer) Empty() bool {
	return len(l.Rects) == 0 && len(l.Circles) == 0 && len(l.Lines) == 0 &&
		len(l.Polygons) == 0 && len(l.Texts) == 0
}

// TextBox 表示一行已定位的文本，Y 为基线，X 为对齐锚点。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"` // left（默认）/center/right
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Rect 表示一个矩形，(X, Y) 为左下角；Radius > 0 时为圆角矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius,omitempty"`
	FillColor   *Color  `json:"fillColor,omitempty"`   // 为空表示不填充
	StrokeColor *Color  `json:"strokeColor,omitempty"` // 为空表示不描边
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Circle 表示一个圆。
type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	FillColor   *Color  `json:"fillColor,omitempty"`
	StrokeColor *Color  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Point 是页面上的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon 是填充的闭合多边形（箭头头部等）。
type Polygon struct {
	Points    []Point `json:"points"`
	FillColor Color   `json:"fillColor"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
