// Package pdfutil 对已生成的 PDF 做后处理：统计页数与压缩优化。
package pdfutil

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount 读取 PDF 并返回页数。
func PageCount(data []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("读取 PDF 失败: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("统计页数失败: %w", err)
	}
	return ctx.PageCount, nil
}

// Optimize 去除重复对象并压缩 PDF，返回优化后的字节。
func Optimize(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("优化 PDF 失败: %w", err)
	}
	return out.Bytes(), nil
}
