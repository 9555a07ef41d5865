package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGeometry 表示行宽或行距不是正数。
var ErrInvalidGeometry = errors.New("layout: 行宽与行距必须为正数")

// MeasureFunc 返回字符串在当前字体/字号下的宽度（pt）。
type MeasureFunc func(s string) float64

// Placement 是一次段落排版的纯计算结果。
type Placement struct {
	Lines   []string `json:"lines"`
	StartY  float64  `json:"startY"`
	Leading float64  `json:"leading"`
	EndY    float64  `json:"endY"`
}

// Baseline 返回第 i 行的基线 y 坐标。
func (p Placement) Baseline(i int) float64 {
	return p.StartY - float64(i)*p.Leading
}

// Wrap 按空白切词后贪心拼行：候选行宽度不超过 maxWidth 即接受，
// 否则提交当前行并以该词另起一行。单个超宽的词独占一行，不做拆分。
func Wrap(text string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		acc   string
	)
	for _, word := range words {
		candidate := word
		if acc != "" {
			candidate = acc + " " + word
		}
		if measure(candidate) <= maxWidth {
			acc = candidate
			continue
		}
		if acc != "" {
			lines = append(lines, acc)
		}
		acc = word
	}
	if acc != "" {
		lines = append(lines, acc)
	}
	return lines
}

// Place 对 text 换行并计算各行位置，startY 为首行基线，逐行下移 leading。
// 返回的 EndY = startY - leading*len(Lines)。
func Place(text string, startY, maxWidth, leading float64, measure MeasureFunc) (Placement, error) {
	if maxWidth <= 0 || leading <= 0 {
		return Placement{}, fmt.Errorf("%w: maxWidth=%g leading=%g", ErrInvalidGeometry, maxWidth, leading)
	}
	if measure == nil {
		return Placement{}, fmt.Errorf("layout: 缺少测宽函数")
	}
	lines := Wrap(text, maxWidth, measure)
	return Placement{
		Lines:   lines,
		StartY:  startY,
		Leading: leading,
		EndY:    startY - leading*float64(len(lines)),
	}, nil
}

// Ellipsize 在文本超出 maxWidth 时逐步截断并追加 "..."。
func Ellipsize(text string, maxWidth float64, measure MeasureFunc) string {
	runes := []rune(text)
	if measure(text) <= maxWidth {
		return text
	}
	out := text
	for measure(out) > maxWidth && len(runes) > 3 {
		cut := len(runes) - 4
		if cut < 0 {
			cut = 0
		}
		runes = runes[:cut]
		out = string(runes) + "..."
	}
	return out
}
