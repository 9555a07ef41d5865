package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/trainingdoc/fonts"
	"github.com/ByLCY/trainingdoc/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trainingdoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
page:
  size: letter
  margin: 20mm
palette:
  navy: "#000080"
  brand: "#123"
fonts:
  body: sans
  italic: sans-italic
output:
  path: out/manual.pdf
  backend: fpdf
  optimize: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFPDF, cfg.Backend())
	assert.Equal(t, "out/manual.pdf", cfg.Output.Path)
	assert.True(t, cfg.Output.Optimize)
	assert.Equal(t, 4.0, cfg.Output.PreviewDPMM, "unset keys keep their defaults")

	theme := layout.DefaultTheme()
	require.NoError(t, cfg.Apply(&theme))
	assert.Equal(t, 612.0, theme.PageWidth)
	assert.InDelta(t, 20*layout.MmToPt, theme.Margin, 1e-9)
	assert.Equal(t, layout.Color{B: 128}, theme.Palette["navy"])
	assert.Equal(t, layout.Color{R: 0x11, G: 0x22, B: 0x33}, theme.Palette["brand"])
	assert.Equal(t, "sans", theme.Fonts.Body)
	assert.Equal(t, "sans-italic", theme.Fonts.BodyItalic)
	assert.Equal(t, "sans-bold", theme.Fonts.Heading, "untouched roles keep defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":   "output:\n  backend: postscript\n",
		"page size": "page:\n  size: B7\n",
		"colour":    "palette:\n  navy: \"#GGGGGG\"\n",
		"font role": "fonts:\n  caption: serif\n",
		"unknown":   "colour: red\n",
		"margin":    "page:\n  margin: wide\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestMarginMustLeaveContentArea(t *testing.T) {
	_, err := Load(writeConfig(t, "page:\n  margin: 400pt\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrInvalidGeometry))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestFontDataResolvesRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	data, err := fonts.Load("mono")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brand.ttf"), data, 0o644))
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fontFiles:\n  brand: brand.ttf\nfonts:\n  mono: brand\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	blobs, err := cfg.FontData()
	require.NoError(t, err)
	assert.Equal(t, data, blobs["brand"])
}

func TestDefaultBackend(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, BackendCanvas, cfg.Backend())
	assert.NoError(t, cfg.Validate())
}
