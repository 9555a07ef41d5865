package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// debugDump 在布局结果之外附带每页元素计数，便于快速比对两次排版。
type debugDump struct {
	Units   string      `json:"units"`
	Summary []pageStats `json:"summary"`
	*Result
}

type pageStats struct {
	Number  int    `json:"number"`
	Section string `json:"section"`
	Texts   int    `json:"texts"`
	Shapes  int    `json:"shapes"`
}

func statsOf(p Page) pageStats {
	st := pageStats{Number: p.Number, Section: p.Section}
	for _, l := range []Layer{p.Backdrop, p.Body, p.Frame} {
		st.Texts += len(l.Texts)
		st.Shapes += len(l.Rects) + len(l.Circles) + len(l.Lines) + len(l.Polygons)
	}
	return st
}

// EncodeDebugJSON 将布局结果以缩进 JSON 写入 w。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return fmt.Errorf("布局结果为空")
	}
	dump := debugDump{Units: "pt", Result: res}
	for _, p := range res.Pages {
		dump.Summary = append(dump.Summary, statsOf(p))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，必要时创建目录。
func WriteDebugJSON(res *Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	if err := EncodeDebugJSON(f, res); err != nil {
		f.Close()
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return f.Close()
}
