package font

import (
	"fmt"
	"math"
)

// MaxCmapSegments is the maximum number of cmap segments or groups that will
// be accepted.
const MaxCmapSegments = 20000

// TableRecord is one entry of the sfnt table directory.
type TableRecord struct {
	Tag    string
	Offset uint32
	Length uint32
}

// HeadTable holds the fields of the head table used by the decoder.
type HeadTable struct {
	UnitsPerEm             uint16
	XMin, YMin, XMax, YMax int16
	IndexToLocFormat       int16
}

// HheaTable holds the horizontal header metrics.
type HheaTable struct {
	Ascender         int16
	Descender        int16
	LineGap          int16
	NumberOfHMetrics uint16
}

// Metric is one hmtx entry, in design units.
type Metric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// Font is a parsed sfnt-wrapped TrueType or CFF font.
type Font struct {
	Data              []byte
	Version           string
	IsCFF, IsTrueType bool // exactly one is true
	Tables            map[string]TableRecord

	Head *HeadTable
	Cmap map[rune]uint16
	Hhea *HheaTable
	Hmtx []Metric
	Fvar *FvarTable

	NumGlyphs uint16

	// TrueType
	Loca []uint32

	// CFF
	CFF *CFFTable

	// Warnings collects non-fatal degradations encountered while parsing:
	// missing metrics tables and CFF decode failures.
	Warnings []string
}

func (f *Font) warnf(format string, args ...interface{}) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

func (f *Font) tableBytes(tag string) ([]byte, bool) {
	record, ok := f.Tables[tag]
	if !ok {
		return nil, false
	}
	return f.Data[record.Offset : record.Offset+record.Length : record.Offset+record.Length], true
}

// GlyphIndex returns the glyph index for a code point. Unmapped code points
// return 0, the missing glyph.
func (f *Font) GlyphIndex(r rune) uint16 {
	return f.Cmap[r]
}

// Metrics returns the advance width and left side bearing of a glyph in
// design units. When metrics are unavailable, or the glyph index lies beyond
// the hmtx table, it falls back to {unitsPerEm, 0}. The sfnt spec says to
// reuse the last hmtx entry's advance for trailing glyph indices; this
// decoder keeps the flat default instead.
func (f *Font) Metrics(glyphID uint16) Metric {
	if int(glyphID) < len(f.Hmtx) {
		return f.Hmtx[glyphID]
	}
	return Metric{AdvanceWidth: f.Head.UnitsPerEm, LeftSideBearing: 0}
}

// GlyphOutline decodes the raw, unblended outline of a glyph.
func (f *Font) GlyphOutline(glyphID uint16) (*Glyph, error) {
	if f.IsTrueType {
		return f.glyfOutline(glyphID, 0)
	}
	return f.cffOutline(glyphID)
}

// Parse parses an OpenType font (TTF or OTF) from an in-memory buffer.
func Parse(b []byte) (*Font, error) {
	if len(b) < 12 || uint(math.MaxUint32) < uint(len(b)) {
		return nil, fmt.Errorf("sfnt: %w", ErrUnexpectedEnd)
	}

	f := &Font{
		Data: b,
	}

	r := NewBinaryReader(b)
	f.Version = r.ReadTag()
	numTables := r.ReadUint16()
	_ = r.ReadUint16() // searchRange
	_ = r.ReadUint16() // entrySelector
	_ = r.ReadUint16() // rangeShift

	f.Tables = make(map[string]TableRecord, numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadTag()
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("sfnt: table directory: %w", err)
		}
		if uint32(len(b)) < offset || uint32(len(b))-offset < length {
			return nil, fmt.Errorf("sfnt: table %s: %w", tag, ErrOutOfRange)
		}
		// duplicate tags: last record wins
		f.Tables[tag] = TableRecord{Tag: tag, Offset: offset, Length: length}
	}

	_, hasGlyf := f.Tables["glyf"]
	_, hasLoca := f.Tables["loca"]
	_, hasCFF := f.Tables["CFF "]
	if hasGlyf && hasLoca {
		f.IsTrueType = true
	} else if hasCFF {
		f.IsCFF = true
	} else {
		return nil, ErrUnsupportedFontType
	}

	if err := f.parseHead(); err != nil {
		return nil, err
	}
	if err := f.parseMaxp(); err != nil {
		return nil, err
	}
	if err := f.parseCmap(); err != nil {
		return nil, err
	}
	f.parseHmtx()
	f.parseFvar()

	if f.IsTrueType {
		if err := f.parseLoca(); err != nil {
			return nil, err
		}
	} else {
		if err := f.parseCFF(); err != nil {
			// a broken CFF table degrades to a font without outlines
			f.CFF = &CFFTable{charStrings: &cffINDEX{}}
			f.warnf("CFF: %v", err)
		}
	}
	return f, nil
}

func (f *Font) parseHead() error {
	b, ok := f.tableBytes("head")
	if !ok {
		return fmt.Errorf("head: %w", ErrMissingTable)
	}

	f.Head = &HeadTable{}
	r := NewBinaryReader(b)
	if err := r.Seek(18); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	f.Head.UnitsPerEm = r.ReadUint16()
	if err := r.Seek(36); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	f.Head.XMin = r.ReadInt16()
	f.Head.YMin = r.ReadInt16()
	f.Head.XMax = r.ReadInt16()
	f.Head.YMax = r.ReadInt16()
	if err := r.Seek(50); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	f.Head.IndexToLocFormat = r.ReadInt16()
	if err := r.Err(); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	if f.Head.UnitsPerEm == 0 {
		f.Head.UnitsPerEm = 1000
	}
	return nil
}

func (f *Font) parseMaxp() error {
	b, ok := f.tableBytes("maxp")
	if !ok {
		return fmt.Errorf("maxp: %w", ErrMissingTable)
	}

	r := NewBinaryReader(b)
	_ = r.ReadUint32() // version
	f.NumGlyphs = r.ReadUint16()
	if err := r.Err(); err != nil {
		return fmt.Errorf("maxp: %w", err)
	}
	return nil
}

func (f *Font) parseCmap() error {
	b, ok := f.tableBytes("cmap")
	if !ok {
		return fmt.Errorf("cmap: %w", ErrMissingTable)
	}

	r := NewBinaryReader(b)
	_ = r.ReadUint16() // version
	numTables := r.ReadUint16()

	// the first (3,1) or (0,3) record in directory order wins
	var offset uint32
	found := false
	for i := 0; i < int(numTables); i++ {
		platformID := r.ReadUint16()
		encodingID := r.ReadUint16()
		subtableOffset := r.ReadUint32()
		if !found && (platformID == 3 && encodingID == 1 || platformID == 0 && encodingID == 3) {
			offset = subtableOffset
			found = true
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("cmap: %w", err)
	}
	if !found {
		return fmt.Errorf("cmap: %w", ErrNoUnicodeCmap)
	}
	if uint32(len(b)) <= offset {
		return fmt.Errorf("cmap: %w", ErrOutOfRange)
	}

	f.Cmap = map[rune]uint16{}
	rs := NewBinaryReader(b[offset:])
	format := rs.ReadUint16()
	switch format {
	case 4:
		return f.parseCmapFormat4(rs)
	case 12:
		return f.parseCmapFormat12(rs)
	}
	return fmt.Errorf("cmap: format %d: %w", format, ErrUnsupportedCmapFormat)
}

func (f *Font) parseCmapFormat4(r *BinaryReader) error {
	_ = r.ReadUint16() // length
	_ = r.ReadUint16() // language
	segCount := r.ReadUint16() / 2
	_ = r.ReadUint16() // searchRange
	_ = r.ReadUint16() // entrySelector
	_ = r.ReadUint16() // rangeShift
	if err := r.Err(); err != nil {
		return fmt.Errorf("cmap: %w", err)
	}
	if segCount == 0 || MaxCmapSegments < segCount {
		return fmt.Errorf("cmap: bad segment count: %w", ErrBadFontData)
	}

	endCode := make([]uint16, segCount)
	for i := range endCode {
		endCode[i] = r.ReadUint16()
	}
	_ = r.ReadUint16() // reservedPad
	startCode := make([]uint16, segCount)
	for i := range startCode {
		startCode[i] = r.ReadUint16()
	}
	idDelta := make([]uint16, segCount)
	for i := range idDelta {
		idDelta[i] = r.ReadUint16()
	}
	// remember where the idRangeOffset array starts: indirect lookups are
	// byte offsets relative to each entry's own position
	idRangeOffsetPos := r.Pos()
	idRangeOffset := make([]uint16, segCount)
	for i := range idRangeOffset {
		idRangeOffset[i] = r.ReadUint16()
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("cmap: %w", err)
	}

	for i := 0; i < int(segCount); i++ {
		if endCode[i] < startCode[i] {
			continue
		}
		for c := uint32(startCode[i]); c <= uint32(endCode[i]); c++ {
			if c == 0xFFFF {
				// segment terminator, not a character
				continue
			}
			var glyphID uint16
			if idRangeOffset[i] == 0 {
				glyphID = uint16(c) + idDelta[i] // modulo 65536 by overflow
			} else {
				pos := idRangeOffsetPos + uint32(i)*2 + uint32(idRangeOffset[i]) + (c-uint32(startCode[i]))*2
				if err := r.Seek(pos); err != nil {
					r.err = nil // a bad offset drops only this codepoint
					continue
				}
				glyphID = r.ReadUint16()
				if r.Err() != nil {
					r.err = nil
					continue
				}
				if glyphID != 0 {
					glyphID += idDelta[i]
				}
			}
			if glyphID != 0 {
				f.Cmap[rune(c)] = glyphID
			}
		}
	}
	return nil
}

func (f *Font) parseCmapFormat12(r *BinaryReader) error {
	_ = r.ReadUint16() // reserved
	_ = r.ReadUint32() // length
	_ = r.ReadUint32() // language
	numGroups := r.ReadUint32()
	if err := r.Err(); err != nil {
		return fmt.Errorf("cmap: %w", err)
	}
	if MaxCmapSegments < numGroups {
		return fmt.Errorf("cmap: too many groups: %w", ErrBadFontData)
	}

	for i := uint32(0); i < numGroups; i++ {
		startCharCode := r.ReadUint32()
		endCharCode := r.ReadUint32()
		startGlyphID := r.ReadUint32()
		if err := r.Err(); err != nil {
			return fmt.Errorf("cmap: %w", err)
		}
		if endCharCode < startCharCode || 0x10FFFF < endCharCode {
			continue
		}
		for c := startCharCode; c <= endCharCode; c++ {
			glyphID := uint16(startGlyphID + (c - startCharCode))
			if glyphID != 0 {
				f.Cmap[rune(c)] = glyphID
			}
		}
	}
	return nil
}

// parseHmtx parses hhea and hmtx. Both are optional: a font without them
// degrades to default metrics with a warning.
func (f *Font) parseHmtx() {
	hhea, ok := f.tableBytes("hhea")
	if !ok {
		f.warnf("hhea: %v", ErrMissingTable)
		return
	}

	r := NewBinaryReader(hhea)
	if err := r.Seek(4); err != nil {
		f.warnf("hhea: %v", err)
		return
	}
	ascender := r.ReadInt16()
	descender := r.ReadInt16()
	lineGap := r.ReadInt16()
	if err := r.Seek(34); err != nil {
		f.warnf("hhea: %v", err)
		return
	}
	numberOfHMetrics := r.ReadUint16()
	if err := r.Err(); err != nil {
		f.warnf("hhea: %v", err)
		return
	}
	f.Hhea = &HheaTable{
		Ascender:         ascender,
		Descender:        descender,
		LineGap:          lineGap,
		NumberOfHMetrics: numberOfHMetrics,
	}

	hmtx, ok := f.tableBytes("hmtx")
	if !ok {
		f.warnf("hmtx: %v", ErrMissingTable)
		return
	}
	rm := NewBinaryReader(hmtx)
	metrics := make([]Metric, 0, numberOfHMetrics)
	for i := 0; i < int(numberOfHMetrics); i++ {
		advance := rm.ReadUint16()
		lsb := rm.ReadInt16()
		if rm.Err() != nil {
			f.warnf("hmtx: %v", rm.Err())
			return
		}
		metrics = append(metrics, Metric{AdvanceWidth: advance, LeftSideBearing: lsb})
	}
	f.Hmtx = metrics
}

func (f *Font) parseLoca() error {
	if _, ok := f.Tables["maxp"]; !ok {
		return fmt.Errorf("maxp: %w", ErrMissingTable)
	}
	b, ok := f.tableBytes("loca")
	if !ok {
		return fmt.Errorf("loca: %w", ErrMissingTable)
	}

	r := NewBinaryReader(b)
	n := int(f.NumGlyphs) + 1
	f.Loca = make([]uint32, n)
	if f.Head.IndexToLocFormat == 0 {
		for i := 0; i < n; i++ {
			f.Loca[i] = uint32(r.ReadUint16()) * 2
		}
	} else {
		for i := 0; i < n; i++ {
			f.Loca[i] = r.ReadUint32()
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("loca: %w", err)
	}
	return nil
}
