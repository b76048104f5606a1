package fontsvg

// spaceAdvanceFactor is the pen advance of a space character, as a fraction
// of the point size.
const spaceAdvanceFactor = 0.3

// viewBoxPaddingFactor pads the layout's viewBox on all sides, as a fraction
// of the point size.
const viewBoxPaddingFactor = 0.1

// TextOptions control text layout. The zero value lays out at the default
// size with no kerning adjustment.
type TextOptions struct {
	Size    float64 // point size, default 32, minimum 1
	Kerning float64 // advance adjustment factor, clamped to [-1,1]
}

func (opts *TextOptions) size() float64 {
	if opts == nil || opts.Size == 0.0 {
		return 32.0
	}
	if opts.Size < 1.0 {
		return 1.0
	}
	return opts.Size
}

func (opts *TextOptions) kerning() float64 {
	if opts == nil {
		return 0.0
	}
	if opts.Kerning < -1.0 {
		return -1.0
	} else if 1.0 < opts.Kerning {
		return 1.0
	}
	return opts.Kerning
}

// PlacedGlyph is one laid-out character.
type PlacedGlyph struct {
	Rune    rune
	GlyphID uint16
	X       float64 // pen position at emission, scaled units
	Advance float64 // scaled pen advance, kerning applied
	Path    *Path   // nil for spaces and unmapped characters
}

// TextLayout is the result of laying out a string: the concatenated path
// geometry in a top-down coordinate system, per-character placements, and
// scaled vertical metrics.
type TextLayout struct {
	Path   *Path
	Glyphs []PlacedGlyph

	ViewBox   Bounds
	Width     float64 // final pen position
	Baseline  float64 // Y of the baseline from the top
	Ascender  float64
	Descender float64
}

// D returns the layout's concatenated SVG path data.
func (l *TextLayout) D() string {
	return l.Path.String()
}

// LayoutText lays out a string left to right at the baseline. Spaces advance
// the pen without geometry; every other character resolves through the
// character map and emits its glyph path at the pen position, Y-flipped so
// the output is top-down. The viewBox is the tight bounds of the emitted
// geometry padded on all sides.
func (f *Font) LayoutText(text string, opts *TextOptions) *TextLayout {
	size := opts.size()
	kerning := opts.kerning()
	scale := size / f.UnitsPerEm()

	ascender, descender := f.VerticalMetrics()
	baseline := ascender * scale

	layout := &TextLayout{
		Path:      &Path{},
		Baseline:  baseline,
		Ascender:  ascender * scale,
		Descender: descender * scale,
	}

	penX := 0.0
	for _, r := range text {
		if r == ' ' {
			advance := spaceAdvanceFactor * size
			layout.Glyphs = append(layout.Glyphs, PlacedGlyph{Rune: r, X: penX, Advance: advance})
			penX += advance
			continue
		}

		glyphID := f.GlyphIndex(r)
		placed := PlacedGlyph{Rune: r, GlyphID: glyphID, X: penX}
		if glyphID != 0 {
			p, err := f.GlyphPath(glyphID, &PathOptions{
				Scale:   scale,
				FlipY:   true,
				OffsetX: penX,
				OffsetY: baseline,
			})
			if err == nil && !p.Empty() {
				placed.Path = p
				layout.Path.Append(p)
			}
			placed.Advance = f.Metrics(glyphID).Advance * scale * (1.0 + kerning)
		}
		// unmapped characters stay zero-width with no geometry
		layout.Glyphs = append(layout.Glyphs, placed)
		penX += placed.Advance
	}
	layout.Width = penX

	padding := viewBoxPaddingFactor * size
	if layout.Path.Empty() {
		layout.ViewBox = Bounds{-padding, -padding, penX + padding, baseline + padding}
	} else {
		b := layout.Path.Bounds()
		layout.ViewBox = Bounds{b.MinX - padding, b.MinY - padding, b.MaxX + padding, b.MaxY + padding}
	}
	return layout
}

// VerticalMetrics returns the font's ascender and descender in design units.
// Fonts without an hhea table fall back to a flat {unitsPerEm, 0} default,
// matching the horizontal fallback.
func (f *Font) VerticalMetrics() (ascender, descender float64) {
	if hhea := f.sfnt.Hhea; hhea != nil {
		return float64(hhea.Ascender), float64(hhea.Descender)
	}
	return f.UnitsPerEm(), 0.0
}
