package fontsvg

import (
	"testing"

	"github.com/tdewolff/test"

	"github.com/arthurcloche/font-to-svg/font"
)

// buildSquareTTF assembles a TrueType font with unitsPerEm 1000 whose glyph 1
// is a 100×100 square mapped from 'A', advance 600, ascender 800, and wght/
// wdth variation axes.
func buildSquareTTF() []byte {
	glyf := font.NewBinaryWriter([]byte{})
	glyf.WriteInt16(1) // numberOfContours
	glyf.WriteInt16(0)
	glyf.WriteInt16(0)
	glyf.WriteInt16(100)
	glyf.WriteInt16(100)
	glyf.WriteUint16(3) // last point index
	glyf.WriteUint16(0) // instructionLength
	for i := 0; i < 4; i++ {
		glyf.WriteByte(0x01) // on-curve, 16-bit deltas
	}
	for _, dx := range []int16{0, 100, 0, -100} {
		glyf.WriteInt16(dx)
	}
	for _, dy := range []int16{0, 0, 100, 0} {
		glyf.WriteInt16(dy)
	}

	head := font.NewBinaryWriter(make([]byte, 0, 54))
	head.WriteBytes(make([]byte, 18))
	head.WriteUint16(1000) // unitsPerEm
	head.WriteBytes(make([]byte, 16))
	head.WriteInt16(0)   // xMin
	head.WriteInt16(0)   // yMin
	head.WriteInt16(100) // xMax
	head.WriteInt16(100) // yMax
	head.WriteBytes(make([]byte, 6))
	head.WriteInt16(0) // indexToLocFormat
	head.WriteInt16(0) // glyphDataFormat

	maxp := font.NewBinaryWriter([]byte{})
	maxp.WriteUint32(0x00010000)
	maxp.WriteUint16(2)

	cmap := font.NewBinaryWriter([]byte{})
	cmap.WriteUint16(0) // version
	cmap.WriteUint16(1) // numTables
	cmap.WriteUint16(3) // platformID
	cmap.WriteUint16(1) // encodingID
	cmap.WriteUint32(12)
	cmap.WriteUint16(4)  // format
	cmap.WriteUint16(32) // length
	cmap.WriteUint16(0)  // language
	cmap.WriteUint16(4)  // segCountX2
	cmap.WriteUint16(0)  // searchRange
	cmap.WriteUint16(0)  // entrySelector
	cmap.WriteUint16(0)  // rangeShift
	cmap.WriteUint16(65) // endCode
	cmap.WriteUint16(0xFFFF)
	cmap.WriteUint16(0)  // reservedPad
	cmap.WriteUint16(65) // startCode
	cmap.WriteUint16(0xFFFF)
	cmap.WriteUint16(0xFFC0) // idDelta: 'A' is glyph 1
	cmap.WriteUint16(1)
	cmap.WriteUint16(0) // idRangeOffset
	cmap.WriteUint16(0)

	hhea := font.NewBinaryWriter(make([]byte, 0, 36))
	hhea.WriteUint32(0x00010000)
	hhea.WriteInt16(800)  // ascender
	hhea.WriteInt16(-200) // descender
	hhea.WriteInt16(0)    // lineGap
	hhea.WriteBytes(make([]byte, 24))
	hhea.WriteUint16(2) // numberOfHMetrics

	hmtx := font.NewBinaryWriter([]byte{})
	hmtx.WriteUint16(500) // glyph 0
	hmtx.WriteInt16(0)
	hmtx.WriteUint16(600) // glyph 1
	hmtx.WriteInt16(50)

	loca := font.NewBinaryWriter([]byte{})
	loca.WriteUint16(0)
	loca.WriteUint16(0)
	loca.WriteUint16(uint16(glyf.Len() / 2))

	fvar := font.NewBinaryWriter([]byte{})
	fvar.WriteUint16(1) // majorVersion
	fvar.WriteUint16(0)
	fvar.WriteUint16(16) // axesArrayOffset
	fvar.WriteUint16(0)
	fvar.WriteUint16(2)  // axisCount
	fvar.WriteUint16(20) // axisSize
	fvar.WriteUint16(0)
	fvar.WriteUint16(0)
	fvar.WriteTag("wght")
	fvar.WriteFixed(100)
	fvar.WriteFixed(400)
	fvar.WriteFixed(900)
	fvar.WriteUint16(0)
	fvar.WriteUint16(256)
	fvar.WriteTag("wdth")
	fvar.WriteFixed(50)
	fvar.WriteFixed(100)
	fvar.WriteFixed(200)
	fvar.WriteUint16(0)
	fvar.WriteUint16(257)

	tables := []struct {
		tag  string
		data []byte
	}{
		{"head", head.Bytes()},
		{"maxp", maxp.Bytes()},
		{"cmap", cmap.Bytes()},
		{"hhea", hhea.Bytes()},
		{"hmtx", hmtx.Bytes()},
		{"loca", loca.Bytes()},
		{"glyf", glyf.Bytes()},
		{"fvar", fvar.Bytes()},
	}

	w := font.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00010000)
	w.WriteUint16(uint16(len(tables)))
	w.WriteUint16(0) // searchRange
	w.WriteUint16(0) // entrySelector
	w.WriteUint16(0) // rangeShift
	offset := uint32(12 + 16*len(tables))
	for _, table := range tables {
		w.WriteTag(table.tag)
		w.WriteUint32(0) // checksum
		w.WriteUint32(offset)
		w.WriteUint32(uint32(len(table.data)))
		offset += uint32(len(table.data))
	}
	for _, table := range tables {
		w.WriteBytes(table.data)
	}
	return w.Bytes()
}

func loadSquareFont(t *testing.T) *Font {
	t.Helper()
	f, err := LoadFont(buildSquareTTF())
	test.Error(t, err)
	return f
}

func TestLoadFont(t *testing.T) {
	f := loadSquareFont(t)
	test.Float(t, f.UnitsPerEm(), 1000.0)
	test.T(t, f.NumGlyphs(), 2)
	test.That(t, !f.IsCFF())
	test.T(t, len(f.Warnings()), 0)
	test.T(t, f.GlyphIndex('A'), uint16(1))
	test.T(t, f.GlyphIndex('B'), uint16(0))
}

func TestLoadFontBad(t *testing.T) {
	_, err := LoadFont([]byte{0x00, 0x01})
	test.That(t, err != nil)
}

func TestGlyphPath(t *testing.T) {
	f := loadSquareFont(t)
	p, err := f.GlyphPath(1, nil)
	test.Error(t, err)
	test.String(t, p.String(), "M 0 0 L 100 0 L 100 100 L 0 100 Z")
}

func TestGlyphPathOptions(t *testing.T) {
	f := loadSquareFont(t)
	p, err := f.GlyphPath(1, &PathOptions{Scale: 0.5, FlipY: true, OffsetX: 10, OffsetY: 200})
	test.Error(t, err)
	test.String(t, p.String(), "M 10 200 L 60 200 L 60 150 L 10 150 Z")
}

func TestPathFor(t *testing.T) {
	f := loadSquareFont(t)
	test.String(t, f.PathFor('A', nil), "M 0 0 L 100 0 L 100 100 L 0 100 Z")
	test.String(t, f.PathFor('B', nil), "") // unmapped
}

func TestBoundsFor(t *testing.T) {
	f := loadSquareFont(t)
	b := f.BoundsFor('A', &PathOptions{Scale: 0.1})
	test.Float(t, b.W(), 10.0)
	test.Float(t, b.H(), 10.0)
	test.T(t, f.BoundsFor('B', nil), Bounds{})
}

func TestMetrics(t *testing.T) {
	f := loadSquareFont(t)
	m := f.Metrics(1)
	test.Float(t, m.Advance, 600.0)
	test.Float(t, m.LeftSideBearing, 50.0)

	// beyond hmtx falls back to unitsPerEm
	m = f.Metrics(99)
	test.Float(t, m.Advance, 1000.0)
}

func TestAxes(t *testing.T) {
	f := loadSquareFont(t)
	axes := f.Axes()
	test.T(t, len(axes), 2)
	test.T(t, axes[0].Tag, "wght")
	test.Float(t, axes[0].Def, 400.0)
}

func TestSetAxisValuesClamps(t *testing.T) {
	f := loadSquareFont(t)
	f.SetAxisValues(map[string]float64{"wght": 2000, "wdth": 10})
	values := f.AxisValues()
	test.Float(t, values["wght"], 900.0) // clamped to axis max
	test.Float(t, values["wdth"], 50.0)  // clamped to axis min

	f.SetAxisValues(map[string]float64{"wght": 400})
	test.Float(t, f.AxisValues()["wght"], 400.0)
}

func TestCacheCoherence(t *testing.T) {
	f := loadSquareFont(t)

	// repeated calls under the same axis state are identical
	first := f.PathFor('A', nil)
	second := f.PathFor('A', nil)
	test.String(t, second, first)
	test.T(t, f.Generation(), uint64(0))

	// axis changes invalidate the cache and change the output
	f.SetAxisValues(map[string]float64{"wdth": 200})
	test.T(t, f.Generation(), uint64(1))
	stretched := f.PathFor('A', nil)
	test.String(t, stretched, "M 0 0 L 200 0 L 200 100 L 0 100 Z")

	// unrelated lookups never change cached output
	_ = f.PathFor('B', nil)
	test.String(t, f.PathFor('A', nil), stretched)
}

func TestAxisValuesCopy(t *testing.T) {
	f := loadSquareFont(t)
	f.SetAxisValues(map[string]float64{"wght": 500})
	values := f.AxisValues()
	values["wght"] = 900.0
	test.Float(t, f.AxisValues()["wght"], 500.0)
}
