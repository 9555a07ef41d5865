package layout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDebugJSONSummarisesPages(t *testing.T) {
	res := mustBuild(t, fullDoc, nil)

	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got struct {
		Units   string `json:"units"`
		Summary []struct {
			Number  int    `json:"number"`
			Section string `json:"section"`
			Texts   int    `json:"texts"`
		} `json:"summary"`
		Pages   []json.RawMessage `json:"pages"`
		Outline []OutlineEntry    `json:"outline"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Units != "pt" {
		t.Fatalf("unexpected units %q", got.Units)
	}
	if len(got.Summary) != len(res.Pages) || len(got.Pages) != len(res.Pages) {
		t.Fatalf("summary and pages should cover %d pages", len(res.Pages))
	}
	if got.Summary[0].Section != "COVER" || got.Summary[0].Texts == 0 {
		t.Fatalf("unexpected cover stats: %+v", got.Summary[0])
	}
	if len(got.Outline) != 2 || got.Outline[1].Page != 4 {
		t.Fatalf("outline not embedded: %+v", got.Outline)
	}
}

func TestEncodeDebugJSONRejectsNil(t *testing.T) {
	if err := EncodeDebugJSON(&bytes.Buffer{}, nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func TestWriteDebugJSONCreatesDirectories(t *testing.T) {
	res := mustBuild(t, chapterDoc(`    para { "Hello" }`), nil)
	path := filepath.Join(t.TempDir(), "nested", "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Contains(data, []byte(`"Hello"`)) {
		t.Fatalf("debug JSON misses laid out text")
	}
}
