package font

// Pather receives a glyph's outline as absolute path segments.
type Pather interface {
	MoveTo(float64, float64)
	LineTo(float64, float64)
	QuadTo(float64, float64, float64, float64)
	CubeTo(float64, float64, float64, float64, float64, float64)
	Close()
}

// Point is one outline point in font design units. Off-curve points are
// quadratic control points (TrueType). A point decoded from a CFF CharString
// is always on-curve and may carry the two cubic control points of the curve
// segment it terminates.
type Point struct {
	X, Y    float64
	OnCurve bool

	Cubic              bool
	CX1, CY1, CX2, CY2 float64
}

// Contour is one closed loop of points. Order defines the winding.
type Contour []Point

// Glyph is the decoded outline of one glyph: its contours and axis-aligned
// bounding box, both in design units.
type Glyph struct {
	Contours               []Contour
	XMin, YMin, XMax, YMax float64
}

// IsEmpty returns true when the glyph has no contours, e.g. a space.
func (g *Glyph) IsEmpty() bool {
	return len(g.Contours) == 0
}

// UpdateBounds recomputes the bounding box over all points and control points.
func (g *Glyph) UpdateBounds() {
	g.XMin, g.YMin, g.XMax, g.YMax = 0.0, 0.0, 0.0, 0.0
	first := true
	grow := func(x, y float64) {
		if first {
			g.XMin, g.YMin, g.XMax, g.YMax = x, y, x, y
			first = false
			return
		}
		if x < g.XMin {
			g.XMin = x
		}
		if g.XMax < x {
			g.XMax = x
		}
		if y < g.YMin {
			g.YMin = y
		}
		if g.YMax < y {
			g.YMax = y
		}
	}
	for _, contour := range g.Contours {
		for _, pt := range contour {
			grow(pt.X, pt.Y)
			if pt.Cubic {
				grow(pt.CX1, pt.CY1)
				grow(pt.CX2, pt.CY2)
			}
		}
	}
}

// ToPath walks the glyph's contours and emits move/line/quad/cube segments to
// p. Coordinates are multiplied by scale, negated in Y when flipY is set, and
// translated by (dx,dy), so the consumer needs no further transform. Every
// contour starts with exactly one moveto and is closed.
//
// TrueType contours may start on an off-curve point; a leading on-curve point
// is then synthesized, either the last point of the contour when that is
// on-curve or the midpoint between last and first. Two consecutive off-curve
// points imply an on-curve midpoint between them.
func (g *Glyph) ToPath(p Pather, scale float64, flipY bool, dx, dy float64) {
	fy := scale
	if flipY {
		fy = -scale
	}
	tx := func(x float64) float64 { return dx + x*scale }
	ty := func(y float64) float64 { return dy + y*fy }

	for _, contour := range g.Contours {
		if len(contour) == 0 {
			continue
		}

		var startX, startY float64
		i := 0
		if contour[0].OnCurve {
			startX, startY = contour[0].X, contour[0].Y
			i = 1
		} else {
			last := contour[len(contour)-1]
			if last.OnCurve {
				startX, startY = last.X, last.Y
			} else {
				startX = (last.X + contour[0].X) / 2.0
				startY = (last.Y + contour[0].Y) / 2.0
			}
		}
		p.MoveTo(tx(startX), ty(startY))

		var ctrl *Point
		for ; i < len(contour); i++ {
			pt := contour[i]
			if pt.OnCurve {
				if ctrl != nil {
					p.QuadTo(tx(ctrl.X), ty(ctrl.Y), tx(pt.X), ty(pt.Y))
					ctrl = nil
				} else if pt.Cubic {
					p.CubeTo(tx(pt.CX1), ty(pt.CY1), tx(pt.CX2), ty(pt.CY2), tx(pt.X), ty(pt.Y))
				} else {
					p.LineTo(tx(pt.X), ty(pt.Y))
				}
			} else if ctrl != nil {
				// two consecutive off-curve points imply an on-curve midpoint
				xMid := (ctrl.X + pt.X) / 2.0
				yMid := (ctrl.Y + pt.Y) / 2.0
				p.QuadTo(tx(ctrl.X), ty(ctrl.Y), tx(xMid), ty(yMid))
				ctrl = &contour[i]
			} else {
				ctrl = &contour[i]
			}
		}
		if ctrl != nil {
			p.QuadTo(tx(ctrl.X), ty(ctrl.Y), tx(startX), ty(startY))
		}
		p.Close()
	}
}
