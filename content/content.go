// Package content 内嵌默认的 ERP 培训手册源文件。
package content

import (
	_ "embed"
	"strings"

	"github.com/ByLCY/trainingdoc/dsl"
)

// Name 为内嵌手册的文件名，用于日志与错误信息。
const Name = "erp_training.manual"

//go:embed erp_training.manual
var manual string

// Source 返回内嵌手册的原文。
func Source() string { return manual }

// Parse 解析内嵌手册。
func Parse() (*dsl.Document, error) {
	return dsl.Parse(strings.NewReader(manual))
}
