package font

import "fmt"

// maxCompositeDepth bounds composite glyph nesting so that a font whose
// components reference each other cannot recurse unbounded.
const maxCompositeDepth = 7

// composite glyph flags
const (
	flagArg1And2AreWords   = 0x0001
	flagWeHaveAScale       = 0x0008
	flagMoreComponents     = 0x0020
	flagWeHaveAnXAndYScale = 0x0040
	flagWeHaveATwoByTwo    = 0x0080
	flagWeHaveInstructions = 0x0100
)

// glyfOutline decodes glyph data from the glyf table. The raw loca offsets
// bound each glyph's byte range; equal bounds mean an empty glyph, such as a
// space. Composite glyphs recurse to decode their components.
func (f *Font) glyfOutline(glyphID uint16, level int) (*Glyph, error) {
	if maxCompositeDepth < level {
		return nil, fmt.Errorf("glyf: composite: %w", ErrRecursionLimit)
	}
	if len(f.Loca) <= int(glyphID)+1 {
		return &Glyph{}, nil
	}
	start, end := f.Loca[glyphID], f.Loca[glyphID+1]
	if end <= start {
		return &Glyph{}, nil
	}

	b, ok := f.tableBytes("glyf")
	if !ok {
		return nil, fmt.Errorf("glyf: %w", ErrMissingTable)
	}
	if uint32(len(b)) < end {
		return nil, fmt.Errorf("glyf: %w", ErrOutOfRange)
	}

	r := NewBinaryReader(b[start:end])
	numberOfContours := r.ReadInt16()
	g := &Glyph{
		XMin: float64(r.ReadInt16()),
		YMin: float64(r.ReadInt16()),
		XMax: float64(r.ReadInt16()),
		YMax: float64(r.ReadInt16()),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("glyf: %w", err)
	}

	if 0 <= numberOfContours {
		if err := f.glyfSimple(r, g, int(numberOfContours)); err != nil {
			return nil, err
		}
	} else {
		if err := f.glyfComposite(r, g, level); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (f *Font) glyfSimple(r *BinaryReader, g *Glyph, numberOfContours int) error {
	endPoints := make([]uint16, numberOfContours)
	for i := range endPoints {
		endPoints[i] = r.ReadUint16()
		if 0 < i && endPoints[i] < endPoints[i-1] {
			return fmt.Errorf("glyf: bad end points: %w", ErrBadFontData)
		}
	}
	instructionLength := r.ReadUint16()
	_ = r.ReadBytes(uint32(instructionLength)) // not executed
	if err := r.Err(); err != nil {
		return fmt.Errorf("glyf: %w", err)
	}

	numPoints := 0
	if 0 < numberOfContours {
		numPoints = int(endPoints[numberOfContours-1]) + 1
	}

	// flags, with bit 3 repeating the previous flag byte
	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; i++ {
		flag := r.ReadByte()
		flags[i] = flag
		if flag&0x08 != 0 {
			repeats := int(r.ReadByte())
			for j := 0; j < repeats && i+1 < numPoints; j++ {
				i++
				flags[i] = flag
			}
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("glyf: flags: %w", err)
	}

	xs := make([]float64, numPoints)
	x := 0
	for i := 0; i < numPoints; i++ {
		flag := flags[i]
		if flag&0x02 != 0 {
			dx := int(r.ReadUint8())
			if flag&0x10 == 0 {
				dx = -dx
			}
			x += dx
		} else if flag&0x10 == 0 {
			x += int(r.ReadInt16())
		}
		xs[i] = float64(x)
	}
	ys := make([]float64, numPoints)
	y := 0
	for i := 0; i < numPoints; i++ {
		flag := flags[i]
		if flag&0x04 != 0 {
			dy := int(r.ReadUint8())
			if flag&0x20 == 0 {
				dy = -dy
			}
			y += dy
		} else if flag&0x20 == 0 {
			y += int(r.ReadInt16())
		}
		ys[i] = float64(y)
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("glyf: coordinates: %w", err)
	}

	first := 0
	for _, endPoint := range endPoints {
		last := int(endPoint)
		contour := make(Contour, 0, last-first+1)
		for i := first; i <= last; i++ {
			contour = append(contour, Point{
				X:       xs[i],
				Y:       ys[i],
				OnCurve: flags[i]&0x01 != 0,
			})
		}
		g.Contours = append(g.Contours, contour)
		first = last + 1
	}
	return nil
}

func (f *Font) glyfComposite(r *BinaryReader, g *Glyph, level int) error {
	for {
		flags := r.ReadUint16()
		componentID := r.ReadUint16()

		// arguments are always XY offsets, not point-matching indices
		var dx, dy float64
		if flags&flagArg1And2AreWords != 0 {
			dx = float64(r.ReadInt16())
			dy = float64(r.ReadInt16())
		} else {
			dx = float64(r.ReadInt8())
			dy = float64(r.ReadInt8())
		}

		a, b2, c, d := 1.0, 0.0, 0.0, 1.0
		if flags&flagWeHaveAScale != 0 {
			a = r.ReadF2Dot14()
			d = a
		} else if flags&flagWeHaveAnXAndYScale != 0 {
			a = r.ReadF2Dot14()
			d = r.ReadF2Dot14()
		} else if flags&flagWeHaveATwoByTwo != 0 {
			a = r.ReadF2Dot14()
			b2 = r.ReadF2Dot14()
			c = r.ReadF2Dot14()
			d = r.ReadF2Dot14()
		}
		if err := r.Err(); err != nil {
			return fmt.Errorf("glyf: composite: %w", err)
		}

		component, err := f.glyfOutline(componentID, level+1)
		if err != nil {
			return err
		}

		identity := a == 1.0 && b2 == 0.0 && c == 0.0 && d == 1.0
		for _, contour := range component.Contours {
			transformed := make(Contour, len(contour))
			for i, p := range contour {
				if identity {
					p.X += dx
					p.Y += dy
					if p.Cubic {
						p.CX1 += dx
						p.CY1 += dy
						p.CX2 += dx
						p.CY2 += dy
					}
				} else {
					p.X, p.Y = a*p.X+c*p.Y+dx, b2*p.X+d*p.Y+dy
					if p.Cubic {
						p.CX1, p.CY1 = a*p.CX1+c*p.CY1+dx, b2*p.CX1+d*p.CY1+dy
						p.CX2, p.CY2 = a*p.CX2+c*p.CY2+dx, b2*p.CX2+d*p.CY2+dy
					}
				}
				transformed[i] = p
			}
			g.Contours = append(g.Contours, transformed)
		}

		if flags&flagMoreComponents == 0 {
			if flags&flagWeHaveInstructions != 0 {
				instructionLength := r.ReadUint16()
				_ = r.ReadBytes(uint32(instructionLength))
			}
			break
		}
	}
	return nil
}
