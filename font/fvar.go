package font

// VariationAxis is one design axis of a variable font.
type VariationAxis struct {
	Tag    string
	Min    float64
	Def    float64
	Max    float64
	Flags  uint16
	NameID uint16
}

// FvarTable lists the variation axes of a variable font, in table order.
type FvarTable struct {
	Axes []VariationAxis
}

// Axis returns the axis with the given tag, or nil.
func (t *FvarTable) Axis(tag string) *VariationAxis {
	if t == nil {
		return nil
	}
	for i := range t.Axes {
		if t.Axes[i].Tag == tag {
			return &t.Axes[i]
		}
	}
	return nil
}

// ClampAxis clamps v to the axis's [Min,Max] range.
func (axis *VariationAxis) ClampAxis(v float64) float64 {
	if v < axis.Min {
		return axis.Min
	} else if axis.Max < v {
		return axis.Max
	}
	return v
}

// parseFvar parses the fvar table if present. A malformed fvar degrades to a
// non-variable font with a warning.
func (f *Font) parseFvar() {
	b, ok := f.tableBytes("fvar")
	if !ok {
		return
	}

	r := NewBinaryReader(b)
	majorVersion := r.ReadUint16()
	_ = r.ReadUint16() // minorVersion
	axesArrayOffset := r.ReadUint16()
	_ = r.ReadUint16() // reserved
	axisCount := r.ReadUint16()
	axisSize := r.ReadUint16()
	if err := r.Err(); err != nil || majorVersion != 1 || axisSize < 20 {
		f.warnf("fvar: malformed header, ignoring axes")
		return
	}

	fvar := &FvarTable{Axes: make([]VariationAxis, 0, axisCount)}
	for i := 0; i < int(axisCount); i++ {
		if err := r.Seek(uint32(axesArrayOffset) + uint32(i)*uint32(axisSize)); err != nil {
			f.warnf("fvar: axis %d out of range, ignoring axes", i)
			return
		}
		axis := VariationAxis{
			Tag: r.ReadTag(),
			Min: r.ReadFixed(),
			Def: r.ReadFixed(),
			Max: r.ReadFixed(),
		}
		axis.Flags = r.ReadUint16()
		axis.NameID = r.ReadUint16()
		if err := r.Err(); err != nil {
			f.warnf("fvar: axis %d truncated, ignoring axes", i)
			return
		}
		if axis.Max < axis.Min {
			axis.Min, axis.Max = axis.Max, axis.Min
		}
		if axis.Def < axis.Min {
			axis.Def = axis.Min
		} else if axis.Max < axis.Def {
			axis.Def = axis.Max
		}
		fvar.Axes = append(fvar.Axes, axis)
	}
	f.Fvar = fvar
}

// Fallbacks used by the blender when an axis is unset. The weight fallback of
// 150 deviates from the usual fvar default of 400; kept as-is because the
// derived factors below are calibrated against it.
const (
	defaultBlendWeight = 150.0
	defaultBlendWidth  = 100.0
)

// blendWidthFactor derives the horizontal scale from the wdth axis value.
func blendWidthFactor(axisValues map[string]float64) float64 {
	wdth := defaultBlendWidth
	if v, ok := axisValues["wdth"]; ok {
		wdth = v
	}
	return wdth / defaultBlendWidth
}

// blendWeightFactor derives the vertical outline scale from the wght axis
// value.
func blendWeightFactor(axisValues map[string]float64) float64 {
	wght := defaultBlendWeight
	if v, ok := axisValues["wght"]; ok {
		wght = v
	}
	return 1.0 + (wght-defaultBlendWeight)/1500.0
}

// blendMetricsFactor derives the advance/bearing scale from the wght axis
// value. It is deliberately shallower than the outline factor.
func blendMetricsFactor(axisValues map[string]float64) float64 {
	wght := defaultBlendWeight
	if v, ok := axisValues["wght"]; ok {
		wght = v
	}
	return 1.0 + (wght-defaultBlendWeight)/2000.0
}

// BlendGlyph scales a glyph's outline by the heuristic per-axis factors:
// x by wdth/100 and y by the weight factor, control points included. The
// bounding box is recomputed afterwards. This approximates variation without
// gvar delta interpolation.
func BlendGlyph(g *Glyph, axisValues map[string]float64) *Glyph {
	widthFactor := blendWidthFactor(axisValues)
	weightFactor := blendWeightFactor(axisValues)
	if widthFactor == 1.0 && weightFactor == 1.0 {
		return g
	}

	blended := &Glyph{Contours: make([]Contour, len(g.Contours))}
	for i, contour := range g.Contours {
		dst := make(Contour, len(contour))
		for j, p := range contour {
			p.X *= widthFactor
			p.Y *= weightFactor
			if p.Cubic {
				p.CX1 *= widthFactor
				p.CY1 *= weightFactor
				p.CX2 *= widthFactor
				p.CY2 *= weightFactor
			}
			dst[j] = p
		}
		blended.Contours[i] = dst
	}
	blended.UpdateBounds()
	return blended
}

// BlendMetrics scales a glyph's horizontal metrics by the metrics weight
// factor and width factor.
func BlendMetrics(m Metric, axisValues map[string]float64) (advance, lsb float64) {
	factor := blendMetricsFactor(axisValues) * blendWidthFactor(axisValues)
	return float64(m.AdvanceWidth) * factor, float64(m.LeftSideBearing) * factor
}
