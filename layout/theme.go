package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Theme 汇集页面几何、调色板与字体角色，布局过程中不读取任何全局状态。
type Theme struct {
	PageWidth  float64          `json:"pageWidth"`
	PageHeight float64          `json:"pageHeight"`
	Margin     float64          `json:"margin"`
	Palette    map[string]Color `json:"palette"`
	Fonts      FontRoles        `json:"fonts"`
}

// FontRoles 将排版角色映射到渲染器可识别的字体名。
type FontRoles struct {
	Heading    string `json:"heading"`
	Body       string `json:"body"`
	BodyItalic string `json:"bodyItalic"`
	Mono       string `json:"mono"`
	MonoBold   string `json:"monoBold"`
	Light      string `json:"light"`
}

// 纸张尺寸（pt，纵向）。
var pageSizes = map[string][2]float64{
	"A4":     {595.27, 841.89},
	"A5":     {419.53, 595.28},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// PageSize 返回纸张名对应的宽高（pt）。
func PageSize(name string) (float64, float64, error) {
	size, ok := pageSizes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", name)
	}
	return size[0], size[1], nil
}

// DefaultTheme 返回培训手册的默认主题：A4、45pt 边距、深蓝/琥珀配色。
func DefaultTheme() Theme {
	w, h, _ := PageSize("A4")
	palette := map[string]Color{}
	for name, hex := range defaultPalette {
		palette[name] = mustParseHex(hex)
	}
	return Theme{
		PageWidth:  w,
		PageHeight: h,
		Margin:     45,
		Palette:    palette,
		Fonts: FontRoles{
			Heading:    "sans-bold",
			Body:       "serif",
			BodyItalic: "serif-italic",
			Mono:       "mono",
			MonoBold:   "mono-bold",
			Light:      "sans",
		},
	}
}

var defaultPalette = map[string]string{
	"navy":        "#1B2A4A",
	"navy-dark":   "#0F1B33",
	"navy-light":  "#2D4470",
	"amber":       "#D4920B",
	"amber-light": "#F0C75E",
	"amber-pale":  "#FDF3DC",
	"slate":       "#64748B",
	"slate-light": "#94A3B8",
	"slate-pale":  "#F1F5F9",
	"white":       "#FFFFFF",
	"off-white":   "#FAFBFC",
	"warm-gray":   "#E8E4DF",
	"charcoal":    "#2D3748",
	"teal":        "#0D7377",
	"teal-light":  "#14B8A6",
	"rose":        "#BE185D",
	"rose-light":  "#F472B6",
	"green":       "#166534",
	"green-light": "#22C55E",
	"blue":        "#2563EB",
	"purple":      "#7C3AED",
	"border":      "#E2E8F0",
	"note-bg":     "#FFFBEB",
	"info-bg":     "#EFF6FF",
	"cover-grid":  "#263B6A",
	"cover-ring":  "#1E3A6E",
	"blue-pale":   "#DBEAFE",
	"green-pale":  "#D1FAE5",
	"rose-pale":   "#FEE2E2",
	"purple-pale": "#F3E8FF",
	"gray-pale":   "#F3F4F6",
	"amber-soft":  "#FEF3C7",

	"purchase":      "#1E40AF",
	"sales":         "#B45309",
	"inventory":     "#047857",
	"finance":       "#6D28D9",
	"manufacturing": "#BE185D",
}

// Color 按名称查找调色板，名称以 # 开头时按十六进制解析。
func (t Theme) Color(name string) (Color, error) {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "#") {
		return ParseHexColor(name)
	}
	if c, ok := t.Palette[strings.ToLower(name)]; ok {
		return c, nil
	}
	return Color{}, fmt.Errorf("未定义的颜色：%s", name)
}

// Validate 检查主题几何与字体角色是否完整。
func (t Theme) Validate() error {
	if t.PageWidth <= 0 || t.PageHeight <= 0 {
		return fmt.Errorf("%w: 页面尺寸 %gx%g", ErrInvalidGeometry, t.PageWidth, t.PageHeight)
	}
	if t.Margin <= 0 || 2*t.Margin >= t.PageWidth || 2*t.Margin >= t.PageHeight {
		return fmt.Errorf("%w: 边距 %g", ErrInvalidGeometry, t.Margin)
	}
	for role, font := range t.Fonts.byRole() {
		if font == "" {
			return fmt.Errorf("字体角色 %s 未配置", role)
		}
	}
	return nil
}

func (f FontRoles) byRole() map[string]string {
	return map[string]string{
		"heading":     f.Heading,
		"body":        f.Body,
		"body-italic": f.BodyItalic,
		"mono":        f.Mono,
		"mono-bold":   f.MonoBold,
		"light":       f.Light,
	}
}

// SetRole 按角色名修改字体，未知角色返回错误。
func (f *FontRoles) SetRole(role, font string) error {
	switch strings.ToLower(role) {
	case "heading":
		f.Heading = font
	case "body":
		f.Body = font
	case "body-italic", "bodyitalic", "italic":
		f.BodyItalic = font
	case "mono":
		f.Mono = font
	case "mono-bold", "monobold":
		f.MonoBold = font
	case "light":
		f.Light = font
	default:
		return fmt.Errorf("未知的字体角色：%s", role)
	}
	return nil
}

// ContentWidth 返回左右边距之间的宽度。
func (t Theme) ContentWidth() float64 { return t.PageWidth - 2*t.Margin }

// ParseHexColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略透明度）。
func ParseHexColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	case 6:
	case 8:
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
}

func mustParseHex(value string) Color {
	c, err := ParseHexColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

func (t Theme) clone() Theme {
	out := t
	out.Palette = make(map[string]Color, len(t.Palette))
	for k, v := range t.Palette {
		out.Palette[k] = v
	}
	return out
}
