// Package fonts 提供随程序分发的 TrueType 字体，按名称取用。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/liberation/liberationserifbold"
	"github.com/go-fonts/liberation/liberationserifitalic"
	"github.com/go-fonts/liberation/liberationserifregular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名。
const (
	Sans        = "sans"
	SansBold    = "sans-bold"
	SansItalic  = "sans-italic"
	SansMedium  = "sans-medium"
	Serif       = "serif"
	SerifBold   = "serif-bold"
	SerifItalic = "serif-italic"
	Mono        = "mono"
	MonoBold    = "mono-bold"
)

var builtin = map[string][]byte{
	Sans:        goregular.TTF,
	SansBold:    gobold.TTF,
	SansItalic:  goitalic.TTF,
	SansMedium:  gomedium.TTF,
	Serif:       liberationserifregular.TTF,
	SerifBold:   liberationserifbold.TTF,
	SerifItalic: liberationserifitalic.TTF,
	Mono:        gomono.TTF,
	MonoBold:    gomonobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:serif" 或直接 "serif"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Has 判断 name 是否为内置字体。
func Has(name string) bool {
	_, err := Load(name)
	return err == nil
}

// Names 按字母序列出所有内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolver 按名称查找字体：先查注入字体，再查内置字体，最后读取 BaseDir 下的 .ttf/.otf 文件。
type Resolver struct {
	BaseDir string
	Extra   map[string][]byte
}

// Bytes 返回名为 name 的字体数据。
func (r Resolver) Bytes(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("字体名为空")
	}
	if blob, ok := r.Extra[name]; ok {
		return blob, nil
	}
	if Has(name) {
		return Load(name)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".ttf" && ext != ".otf" {
		return nil, fmt.Errorf("找不到字体 %s（内置字体：%s）", name, strings.Join(Names(), ", "))
	}
	path := name
	if !filepath.IsAbs(path) {
		if r.BaseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用内置字体名）", name)
		}
		path = filepath.Join(r.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", name, err)
	}
	return data, nil
}
