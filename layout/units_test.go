package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 pt 的换算。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45", 45},
		{"45pt", 45},
		{" 12PT ", 12},
		{"1in", 72},
		{"10mm", 10 * MmToPt},
		{"2.54cm", 25.4 * MmToPt},
	}
	for _, tc := range cases {
		l, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", tc.in, err)
		}
		if diff := math.Abs(l.ToPT() - tc.want); diff > 1e-6 {
			t.Fatalf("%q 转 pt 期望 %g，实际 %g", tc.in, tc.want, l.ToPT())
		}
	}
	for _, bad := range []string{"", "abc", "12px"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}

// TestLineHeightResolve 验证倍数与绝对行距两种语义。
func TestLineHeightResolve(t *testing.T) {
	factor, err := ParseLineHeight("1.5x")
	if err != nil {
		t.Fatalf("解析 1.5x 失败: %v", err)
	}
	if got := factor.Resolve(10); math.Abs(got-15) > 1e-9 {
		t.Fatalf("1.5x@10pt 期望 15，实际 %g", got)
	}
	abs, err := ParseLineHeight("14pt")
	if err != nil {
		t.Fatalf("解析 14pt 失败: %v", err)
	}
	if got := abs.Resolve(10); math.Abs(got-14) > 1e-9 {
		t.Fatalf("14pt 期望 14，实际 %g", got)
	}
	mm, _ := ParseLineHeight("5mm")
	if got := mm.Resolve(10); math.Abs(got-5*MmToPt) > 1e-9 {
		t.Fatalf("5mm 期望 %g，实际 %g", 5*MmToPt, got)
	}
}
