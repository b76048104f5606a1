// Package fontsvg converts glyph outlines of TrueType and CFF fonts into
// SVG path geometry. It decodes the font once and serves path, bounds and
// layout queries from a glyph cache that follows the current variation axis
// state.
package fontsvg

import (
	"fmt"

	"github.com/arthurcloche/font-to-svg/font"
)

// Metrics are the horizontal metrics of one glyph in design units.
type Metrics struct {
	Advance         float64
	LeftSideBearing float64
}

// PathOptions control how glyph outlines are emitted as path geometry.
type PathOptions struct {
	Scale   float64 // coordinate multiplier, 1.0 when zero
	FlipY   bool    // negate Y for top-down coordinate systems
	OffsetX float64
	OffsetY float64
}

func (opts *PathOptions) scale() float64 {
	if opts == nil || opts.Scale == 0.0 {
		return 1.0
	}
	return opts.Scale
}

// Font is a loaded font ready to serve glyph paths. It is not safe for
// concurrent use; each goroutine should load its own instance.
type Font struct {
	sfnt       *font.Font
	axisValues map[string]float64
	cache      glyphCache
}

// glyphCache memoizes decoded and blended outlines per glyph index. Axis
// changes bump the generation, which empties the cache wholesale.
type glyphCache struct {
	entries    map[uint16]*font.Glyph
	generation uint64
}

func (c *glyphCache) get(glyphID uint16) (*font.Glyph, bool) {
	g, ok := c.entries[glyphID]
	return g, ok
}

func (c *glyphCache) put(glyphID uint16, g *font.Glyph) {
	if c.entries == nil {
		c.entries = map[uint16]*font.Glyph{}
	}
	c.entries[glyphID] = g
}

func (c *glyphCache) invalidate() {
	c.entries = nil
	c.generation++
}

// LoadFont parses a TTF or OTF font from an in-memory buffer.
func LoadFont(b []byte) (*Font, error) {
	sfnt, err := font.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("fontsvg: %w", err)
	}
	return &Font{
		sfnt:       sfnt,
		axisValues: map[string]float64{},
	}, nil
}

// UnitsPerEm returns the design grid size of the font.
func (f *Font) UnitsPerEm() float64 {
	return float64(f.sfnt.Head.UnitsPerEm)
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return int(f.sfnt.NumGlyphs)
}

// IsCFF returns true for CFF-flavored fonts.
func (f *Font) IsCFF() bool {
	return f.sfnt.IsCFF
}

// Warnings lists non-fatal degradations encountered while parsing.
func (f *Font) Warnings() []string {
	return f.sfnt.Warnings
}

// GlyphIndex returns the glyph index for a code point, 0 when unmapped.
func (f *Font) GlyphIndex(r rune) uint16 {
	return f.sfnt.GlyphIndex(r)
}

// Metrics returns the horizontal metrics of a glyph in design units, blended
// by the current axis values.
func (f *Font) Metrics(glyphID uint16) Metrics {
	advance, lsb := font.BlendMetrics(f.sfnt.Metrics(glyphID), f.axisValues)
	return Metrics{Advance: advance, LeftSideBearing: lsb}
}

// Axes returns a copy of the font's variation axes, empty for non-variable
// fonts.
func (f *Font) Axes() []font.VariationAxis {
	if f.sfnt.Fvar == nil {
		return nil
	}
	axes := make([]font.VariationAxis, len(f.sfnt.Fvar.Axes))
	copy(axes, f.sfnt.Fvar.Axes)
	return axes
}

// SetAxisValues updates the variation axis state. Values for axes the font
// declares are clamped to their [min,max] range; unknown tags are stored
// as-is. Any change invalidates cached glyphs.
func (f *Font) SetAxisValues(values map[string]float64) {
	for tag, v := range values {
		if axis := f.sfnt.Fvar.Axis(tag); axis != nil {
			v = axis.ClampAxis(v)
		}
		f.axisValues[tag] = v
	}
	f.cache.invalidate()
}

// AxisValues returns a copy of the current axis state.
func (f *Font) AxisValues() map[string]float64 {
	values := make(map[string]float64, len(f.axisValues))
	for tag, v := range f.axisValues {
		values[tag] = v
	}
	return values
}

// Generation returns the cache generation, bumped on every axis change.
func (f *Font) Generation() uint64 {
	return f.cache.generation
}

// glyph returns the blended outline of a glyph, from cache when possible.
func (f *Font) glyph(glyphID uint16) (*font.Glyph, error) {
	if g, ok := f.cache.get(glyphID); ok {
		return g, nil
	}
	g, err := f.sfnt.GlyphOutline(glyphID)
	if err != nil {
		return nil, err
	}
	g = font.BlendGlyph(g, f.axisValues)
	f.cache.put(glyphID, g)
	return g, nil
}

// GlyphPath emits the outline of a glyph as a path. Empty glyphs yield an
// empty path.
func (f *Font) GlyphPath(glyphID uint16, opts *PathOptions) (*Path, error) {
	g, err := f.glyph(glyphID)
	if err != nil {
		return nil, fmt.Errorf("fontsvg: glyph %d: %w", glyphID, err)
	}

	p := &Path{}
	var dx, dy float64
	flipY := false
	if opts != nil {
		dx, dy = opts.OffsetX, opts.OffsetY
		flipY = opts.FlipY
	}
	g.ToPath(p, opts.scale(), flipY, dx, dy)
	return p, nil
}

// PathFor returns the SVG path data for a character, or the empty string when
// the character is unmapped or its glyph cannot be decoded.
func (f *Font) PathFor(r rune, opts *PathOptions) string {
	glyphID := f.GlyphIndex(r)
	if glyphID == 0 {
		return ""
	}
	p, err := f.GlyphPath(glyphID, opts)
	if err != nil {
		return ""
	}
	return p.String()
}

// BoundsFor returns the bounding rectangle of a character's path, control
// points included. Unmapped or undecodable characters have zero bounds.
func (f *Font) BoundsFor(r rune, opts *PathOptions) Bounds {
	glyphID := f.GlyphIndex(r)
	if glyphID == 0 {
		return Bounds{}
	}
	p, err := f.GlyphPath(glyphID, opts)
	if err != nil {
		return Bounds{}
	}
	return p.Bounds()
}
