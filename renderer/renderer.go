package renderer

import "github.com/ByLCY/trainingdoc/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供测宽与绘制，布局与渲染使用同一套字体度量。
type Backend interface {
	Renderer
	layout.Typesetter
}
