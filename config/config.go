// Package config 读取 YAML 配置文件，覆盖默认主题与输出选项。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ByLCY/trainingdoc/layout"
)

// 支持的渲染后端。
const (
	BackendCanvas = "canvas"
	BackendFPDF   = "fpdf"
)

// Config 对应配置文件的顶层结构。
type Config struct {
	Page      PageConfig        `yaml:"page"`
	Palette   map[string]string `yaml:"palette"`
	Fonts     map[string]string `yaml:"fonts"`     // 角色 -> 字体名
	FontFiles map[string]string `yaml:"fontFiles"` // 字体名 -> TTF 文件路径
	Output    OutputConfig      `yaml:"output"`

	dir string // 配置文件所在目录，用于解析相对路径
}

// PageConfig 描述纸张与边距。
type PageConfig struct {
	Size   string `yaml:"size"`
	Margin string `yaml:"margin"`
}

// OutputConfig 描述输出位置与后处理。
type OutputConfig struct {
	Path        string  `yaml:"path"`
	Backend     string  `yaml:"backend"`
	Optimize    bool    `yaml:"optimize"`
	Preview     string  `yaml:"preview"` // PNG 预览目录，为空则不生成
	PreviewDPMM float64 `yaml:"previewDpmm"`
}

// Default 返回未提供配置文件时使用的配置。
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path:        "output/erp_training_guide.pdf",
			Backend:     BackendCanvas,
			PreviewDPMM: 4,
		},
	}
}

// Load 读取并校验配置文件，未填写的项沿用 Default。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查后端、纸张、边距与颜色是否有效。
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Backend) {
	case "", BackendCanvas, BackendFPDF:
	default:
		return fmt.Errorf("未知的渲染后端：%s", c.Output.Backend)
	}
	if c.Output.PreviewDPMM < 0 {
		return fmt.Errorf("预览分辨率不能为负数：%g", c.Output.PreviewDPMM)
	}
	theme := layout.DefaultTheme()
	return c.Apply(&theme)
}

// Apply 将配置覆盖到主题上。
func (c *Config) Apply(theme *layout.Theme) error {
	if c.Page.Size != "" {
		w, h, err := layout.PageSize(c.Page.Size)
		if err != nil {
			return err
		}
		theme.PageWidth, theme.PageHeight = w, h
	}
	if c.Page.Margin != "" {
		l, err := layout.ParseLength(c.Page.Margin)
		if err != nil {
			return fmt.Errorf("页边距: %w", err)
		}
		if l.ToPT() <= 0 {
			return fmt.Errorf("%w: 页边距 %s", layout.ErrInvalidGeometry, c.Page.Margin)
		}
		theme.Margin = l.ToPT()
	}
	if len(c.Palette) > 0 && theme.Palette == nil {
		theme.Palette = map[string]layout.Color{}
	}
	for name, hex := range c.Palette {
		col, err := layout.ParseHexColor(hex)
		if err != nil {
			return fmt.Errorf("调色板 %s: %w", name, err)
		}
		theme.Palette[strings.ToLower(name)] = col
	}
	for role, font := range c.Fonts {
		if err := theme.Fonts.SetRole(role, font); err != nil {
			return err
		}
	}
	return theme.Validate()
}

// Backend 返回规范化的后端名，缺省为 canvas。
func (c *Config) Backend() string {
	if b := strings.ToLower(c.Output.Backend); b != "" {
		return b
	}
	return BackendCanvas
}

// FontData 读取 fontFiles 中声明的字体，相对路径按配置文件所在目录解析。
func (c *Config) FontData() (map[string][]byte, error) {
	out := make(map[string][]byte, len(c.FontFiles))
	for name, path := range c.FontFiles {
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取字体文件 %s 失败: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}
