package fontsvg

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestWriteSVG(t *testing.T) {
	f := loadSquareFont(t)
	layout := f.LayoutText("A", &TextOptions{Size: 100})

	sb := &strings.Builder{}
	test.Error(t, layout.WriteSVG(sb, nil))
	out := sb.String()
	test.That(t, strings.HasPrefix(out, `<svg version="1.1"`))
	test.That(t, strings.HasSuffix(out, `</svg>`))
	test.That(t, strings.Contains(out, `viewBox="-10 60 30 30"`))
	test.That(t, strings.Contains(out, `<path d="M 0 80 L 10 80 L 10 70 L 0 70 Z" fill="currentColor"/>`))
}

func TestWriteSVGOptions(t *testing.T) {
	f := loadSquareFont(t)
	layout := f.LayoutText("A", &TextOptions{Size: 100})

	sb := &strings.Builder{}
	test.Error(t, layout.WriteSVG(sb, &SVGOptions{Fill: "#f00", Class: "glyph"}))
	test.That(t, strings.Contains(sb.String(), `fill="#f00" class="glyph"`))
}

func TestWriteSVGEmptyPath(t *testing.T) {
	f := loadSquareFont(t)
	layout := f.LayoutText(" ", &TextOptions{Size: 100})

	sb := &strings.Builder{}
	test.Error(t, layout.WriteSVG(sb, nil))
	test.That(t, !strings.Contains(sb.String(), "<path"))
}

func TestWriteSVGCompressed(t *testing.T) {
	f := loadSquareFont(t)
	layout := f.LayoutText("A", &TextOptions{Size: 100})

	plain := &strings.Builder{}
	test.Error(t, layout.WriteSVG(plain, nil))

	buf := &bytes.Buffer{}
	test.Error(t, layout.WriteSVG(buf, &SVGOptions{Compression: gzip.BestCompression}))

	gz, err := gzip.NewReader(buf)
	test.Error(t, err)
	out, err := io.ReadAll(gz)
	test.Error(t, err)
	test.String(t, string(out), plain.String())
}
