package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/trainingdoc/config"
	"github.com/ByLCY/trainingdoc/content"
	"github.com/ByLCY/trainingdoc/dsl"
	"github.com/ByLCY/trainingdoc/layout"
	"github.com/ByLCY/trainingdoc/pdfutil"
	"github.com/ByLCY/trainingdoc/renderer"
	canvasrenderer "github.com/ByLCY/trainingdoc/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/trainingdoc/renderer/fpdf"
)

var version = "dev"

// options 汇总命令行参数，非空的参数覆盖配置文件。
type options struct {
	Input      string
	Output     string
	ConfigPath string
	Backend    string
	DebugPath  string
	Data       any
	PreviewDir string
	Optimize   bool
}

// summary 为一次生成的结果摘要。
type summary struct {
	Output   string
	Pages    int
	Previews int
}

func main() {
	input := flag.String("in", "", "手册 DSL 文件路径，留空使用内嵌的 ERP 培训手册")
	output := flag.String("out", "", "PDF 输出路径，默认取配置文件")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	backend := flag.String("backend", "", "渲染后端：canvas 或 fpdf")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	preview := flag.String("preview", "", "PNG 预览输出目录")
	optimize := flag.Bool("optimize", false, "使用 pdfcpu 优化输出的 PDF")
	showVersion := flag.Bool("version", false, "打印版本号后退出")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trainingdoc %s\n", version)
		return
	}

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	res, err := run(options{
		Input:      *input,
		Output:     *output,
		ConfigPath: *configPath,
		Backend:    *backend,
		DebugPath:  *debug,
		Data:       inputData,
		PreviewDir: *preview,
		Optimize:   *optimize,
	}, log.Default())
	if err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s（共 %d 页）\n", res.Output, res.Pages)
	if res.Previews > 0 {
		fmt.Printf("已生成预览图：%d 张\n", res.Previews)
	}
}

// run 串联配置、解析、布局、渲染与后处理。
func run(opts options, logger *log.Logger) (*summary, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.Output != "" {
		cfg.Output.Path = opts.Output
	}
	if opts.Backend != "" {
		cfg.Output.Backend = opts.Backend
	}
	if opts.PreviewDir != "" {
		cfg.Output.Preview = opts.PreviewDir
	}
	cfg.Output.Optimize = cfg.Output.Optimize || opts.Optimize
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	theme := layout.DefaultTheme()
	if err := cfg.Apply(&theme); err != nil {
		return nil, fmt.Errorf("应用配置失败: %w", err)
	}

	doc, baseDir, err := loadDocument(opts.Input)
	if err != nil {
		return nil, err
	}

	extra, err := cfg.FontData()
	if err != nil {
		return nil, err
	}
	backend := newBackend(cfg.Backend(), baseDir, extra)

	result, err := layout.Build(doc, opts.Data, layout.BuildOptions{
		Typesetter: backend,
		Theme:      &theme,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.DebugPath != "" {
		if err := layout.WriteDebugJSON(result, opts.DebugPath); err != nil {
			return nil, err
		}
	}

	pdfBytes, err := backend.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if cfg.Output.Optimize {
		if pdfBytes, err = pdfutil.Optimize(pdfBytes); err != nil {
			return nil, err
		}
	}
	pages, err := pdfutil.PageCount(pdfBytes)
	if err != nil {
		return nil, err
	}

	out := cfg.Output.Path
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	res := &summary{Output: out, Pages: pages}
	if dir := cfg.Output.Preview; dir != "" {
		// 预览统一使用 canvas 栅格化，与所选后端无关
		previewer := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Fonts: extra})
		if res.Previews, err = writePreviews(previewer, result, dir, cfg.Output.PreviewDPMM); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// loadDocument 读取 DSL 文件；路径为空时使用内嵌手册。
// 返回的目录用于解析相对字体路径。
func loadDocument(path string) (*dsl.Document, string, error) {
	if path == "" {
		doc, err := content.Parse()
		if err != nil {
			return nil, "", fmt.Errorf("解析内嵌手册 %s 失败: %w", content.Name, err)
		}
		return doc, "", nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("无法打开 DSL 文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, "", fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return doc, filepath.Dir(path), nil
}

func newBackend(name, baseDir string, fonts map[string][]byte) renderer.Backend {
	if name == config.BackendFPDF {
		return fpdfrenderer.NewRenderer(fpdfrenderer.Options{BaseDir: baseDir, Fonts: fonts})
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Fonts: fonts})
}

// writePreviews 将每页写为 page-NN.png，返回写出的文件数。
func writePreviews(r *canvasrenderer.Renderer, result *layout.Result, dir string, dpmm float64) (int, error) {
	if dpmm == 0 {
		dpmm = config.Default().Output.PreviewDPMM
	}
	images, err := r.RenderImages(result, dpmm)
	if err != nil {
		return 0, fmt.Errorf("生成预览失败: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("创建预览目录失败: %w", err)
	}
	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("page-%02d.png", i+1))
		f, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("创建预览文件失败: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return 0, fmt.Errorf("写入预览 %s 失败: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return 0, err
		}
	}
	return len(images), nil
}
