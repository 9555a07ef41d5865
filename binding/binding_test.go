package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"meta": map[string]any{
			"ref":      "ERP-TRN-001",
			"version":  "1.0",
			"keywords": []any{"erp", "training"},
		},
		"trainees": []any{
			map[string]any{"name": "Asha"},
		},
		"count": float64(14),
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no placeholders", "no placeholders"},
		{"nested", "Ref ${meta.ref} v${meta.version}", "Ref ERP-TRN-001 v1.0"},
		{"index", "Hello ${trainees[0].name}", "Hello Asha"},
		{"array", "${meta.keywords}", "erp, training"},
		{"number", "${count} sections", "14 sections"},
		{"missing keeps placeholder", "${meta.owner}", "${meta.owner}"},
		{"fallback", "${meta.owner|Training Team}", "Training Team"},
		{"fallback unused", "${meta.ref|none}", "ERP-TRN-001"},
		{"bad index", "${trainees[3].name}", "${trainees[3].name}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Interpolate(tc.in, data))
		})
	}
}

func TestInterpolateNilData(t *testing.T) {
	assert.Equal(t, "${a}", Interpolate("${a}", nil))
	assert.Equal(t, "x", Interpolate("${a|x}", nil))
}

func TestMerge(t *testing.T) {
	base := map[string]any{
		"meta": map[string]any{"ref": "A", "version": "1.0"},
		"keep": true,
	}
	overlay := map[string]any{
		"meta": map[string]any{"version": "2.0"},
		"new":  "x",
	}
	out := Merge(base, overlay)

	meta := out["meta"].(map[string]any)
	assert.Equal(t, "A", meta["ref"])
	assert.Equal(t, "2.0", meta["version"])
	assert.Equal(t, true, out["keep"])
	assert.Equal(t, "x", out["new"])
	assert.Equal(t, "1.0", base["meta"].(map[string]any)["version"], "base must stay untouched")
}
