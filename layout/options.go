package layout

import "log"

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与主题。
type BuildOptions struct {
	Typesetter Typesetter
	Theme      *Theme      // 为空时使用 DefaultTheme()
	Logger     *log.Logger // 可选：逐章输出进度
}

// Typesetter 提供文本测宽能力，布局引擎只依赖这一项度量。
type Typesetter interface {
	// TextWidth 返回 content 以 font/size(pt) 排版后的宽度（pt）。
	TextWidth(content, font string, size float64) (float64, error)
}
