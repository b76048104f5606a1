package font

import (
	"fmt"
	"math"
	"strconv"
)

// maxSubrDepth bounds nested CharString subroutine calls so that a font with
// self-referential subroutines cannot exhaust the call stack.
const maxSubrDepth = 64

// CFFTable holds the parts of a CFF table needed to render CharStrings.
type CFFTable struct {
	charStrings *cffINDEX
	globalSubrs *cffINDEX
	localSubrs  *cffINDEX

	defaultWidthX float64
	nominalWidthX float64
}

// NumGlyphs returns the number of CharStrings.
func (cff *CFFTable) NumGlyphs() int {
	return cff.charStrings.Count()
}

type cffINDEX struct {
	offset []uint32
	data   []byte
}

// Count returns the number of entries.
func (t *cffINDEX) Count() int {
	if len(t.offset) == 0 {
		return 0
	}
	return len(t.offset) - 1
}

// Get returns entry i, or nil when out of range.
func (t *cffINDEX) Get(i int) []byte {
	if i < 0 || t.Count() <= i {
		return nil
	}
	return t.data[t.offset[i]:t.offset[i+1]]
}

// Bias returns the call-operand bias for a subroutine INDEX of this size.
// The thresholds are fixed by the CFF spec.
func (t *cffINDEX) Bias() int {
	n := t.Count()
	if n < 1240 {
		return 107
	} else if n < 33900 {
		return 1131
	}
	return 32768
}

func parseINDEX(r *BinaryReader) (*cffINDEX, error) {
	t := &cffINDEX{}
	count := int(r.ReadUint16())
	if err := r.Err(); err != nil {
		return nil, err
	}
	if count == 0 {
		return t, nil
	}

	offSize := r.ReadUint8()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if offSize == 0 || 4 < offSize {
		return nil, fmt.Errorf("INDEX: bad offSize: %w", ErrBadFontData)
	}

	t.offset = make([]uint32, count+1)
	for i := 0; i < count+1; i++ {
		var v uint32
		switch offSize {
		case 1:
			v = uint32(r.ReadUint8())
		case 2:
			v = uint32(r.ReadUint16())
		case 3:
			v = uint32(r.ReadUint16())<<8 | uint32(r.ReadUint8())
		default:
			v = r.ReadUint32()
		}
		if v == 0 {
			return nil, fmt.Errorf("INDEX: bad offset: %w", ErrBadFontData)
		}
		t.offset[i] = v - 1 // offsets are relative to the byte before the data
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		if t.offset[i+1] < t.offset[i] {
			return nil, fmt.Errorf("INDEX: bad offsets: %w", ErrBadFontData)
		}
	}
	t.data = r.ReadBytes(t.offset[count])
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// cffDICT holds the Top DICT and Private DICT operators the decoder uses.
type cffDICT struct {
	CharStrings   int
	PrivateOffset int
	PrivateLength int

	Subrs         int
	DefaultWidthX float64
	NominalWidthX float64
}

// parseDICT scans operator/operand pairs. Operators not listed in cffDICT
// are decoded for operand alignment and dropped.
func parseDICT(b []byte) (*cffDICT, error) {
	dict := &cffDICT{}
	r := NewBinaryReader(b)
	operands := []float64{}
	for 0 < r.Len() {
		b0 := int(r.ReadUint8())
		if b0 < 22 {
			// operator
			if b0 == 12 {
				b0 = 256 + int(r.ReadUint8())
			}
			switch b0 {
			case 17: // CharStrings
				if 1 <= len(operands) {
					dict.CharStrings = int(operands[len(operands)-1])
				}
			case 18: // Private
				if 2 <= len(operands) {
					dict.PrivateLength = int(operands[len(operands)-2])
					dict.PrivateOffset = int(operands[len(operands)-1])
				}
			case 19: // Subrs, relative to the Private DICT offset
				if 1 <= len(operands) {
					dict.Subrs = int(operands[len(operands)-1])
				}
			case 20:
				if 1 <= len(operands) {
					dict.DefaultWidthX = operands[len(operands)-1]
				}
			case 21:
				if 1 <= len(operands) {
					dict.NominalWidthX = operands[len(operands)-1]
				}
			}
			operands = operands[:0]
		} else if 22 <= b0 && b0 < 28 || b0 == 31 || b0 == 255 {
			// reserved, push a zero to keep alignment
			operands = append(operands, 0.0)
		} else {
			if 48 <= len(operands) {
				return nil, fmt.Errorf("DICT: too many operands: %w", ErrBadFontData)
			}
			operands = append(operands, parseDICTNumber(b0, r))
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

func parseDICTNumber(b0 int, r *BinaryReader) float64 {
	if b0 == 28 {
		return float64(r.ReadInt16())
	} else if b0 == 29 {
		return float64(r.ReadInt32())
	} else if b0 == 30 {
		// nibble-coded real
		num := []byte{}
		for 0 < r.Len() {
			b := r.ReadUint8()
			for i := 0; i < 2; i++ {
				switch b >> 4 {
				case 0x0A:
					num = append(num, '.')
				case 0x0B:
					num = append(num, 'E')
				case 0x0C:
					num = append(num, 'E', '-')
				case 0x0E:
					num = append(num, '-')
				case 0x0F:
					f, err := strconv.ParseFloat(string(num), 64)
					if err != nil {
						return 0.0
					}
					return f
				default:
					num = append(num, '0'+byte(b>>4))
				}
				b = b << 4
			}
		}
		return 0.0
	} else if b0 < 247 {
		return float64(b0 - 139)
	} else if b0 < 251 {
		b1 := int(r.ReadUint8())
		return float64((b0-247)*256 + b1 + 108)
	} else if b0 < 255 {
		b1 := int(r.ReadUint8())
		return float64(-(b0-251)*256 - b1 - 108)
	}
	return 0.0
}

func (f *Font) parseCFF() error {
	b, ok := f.tableBytes("CFF ")
	if !ok {
		return fmt.Errorf("CFF: %w", ErrMissingTable)
	}

	r := NewBinaryReader(b)
	major := r.ReadUint8()
	minor := r.ReadUint8()
	headerSize := r.ReadUint8()
	_ = r.ReadUint8() // offSize
	if err := r.Err(); err != nil {
		return err
	}
	if major != 1 || minor != 0 {
		return fmt.Errorf("CFF: bad version: %w", ErrBadFontData)
	}
	if err := r.Seek(uint32(headerSize)); err != nil {
		return fmt.Errorf("CFF: header: %w", err)
	}

	nameINDEX, err := parseINDEX(r)
	if err != nil {
		return fmt.Errorf("CFF: Name INDEX: %w", err)
	}
	_ = nameINDEX

	topINDEX, err := parseINDEX(r)
	if err != nil {
		return fmt.Errorf("CFF: Top DICT INDEX: %w", err)
	}
	if topINDEX.Count() == 0 {
		return fmt.Errorf("CFF: Top DICT INDEX: %w", ErrBadFontData)
	}

	if _, err := parseINDEX(r); err != nil { // String INDEX, unused
		return fmt.Errorf("CFF: String INDEX: %w", err)
	}

	globalSubrsINDEX, err := parseINDEX(r)
	if err != nil {
		return fmt.Errorf("CFF: Global Subrs INDEX: %w", err)
	}

	topDICT, err := parseDICT(topINDEX.Get(0))
	if err != nil {
		return fmt.Errorf("CFF: Top DICT: %w", err)
	}

	cff := &CFFTable{
		globalSubrs: globalSubrsINDEX,
		localSubrs:  &cffINDEX{},
	}

	if 0 < topDICT.PrivateLength {
		if len(b) < topDICT.PrivateOffset || len(b)-topDICT.PrivateOffset < topDICT.PrivateLength {
			return fmt.Errorf("CFF: Private DICT: %w", ErrOutOfRange)
		}
		privateDICT, err := parseDICT(b[topDICT.PrivateOffset : topDICT.PrivateOffset+topDICT.PrivateLength])
		if err != nil {
			return fmt.Errorf("CFF: Private DICT: %w", err)
		}
		cff.defaultWidthX = privateDICT.DefaultWidthX
		cff.nominalWidthX = privateDICT.NominalWidthX

		if 0 < privateDICT.Subrs {
			// local subrs offset is relative to the Private DICT offset
			if err := r.Seek(uint32(topDICT.PrivateOffset + privateDICT.Subrs)); err != nil {
				return fmt.Errorf("CFF: Local Subrs INDEX: %w", err)
			}
			cff.localSubrs, err = parseINDEX(r)
			if err != nil {
				return fmt.Errorf("CFF: Local Subrs INDEX: %w", err)
			}
		}
	}

	if topDICT.CharStrings <= 0 {
		return fmt.Errorf("CFF: CharStrings INDEX: %w", ErrMissingTable)
	}
	if err := r.Seek(uint32(topDICT.CharStrings)); err != nil {
		return fmt.Errorf("CFF: CharStrings INDEX: %w", err)
	}
	cff.charStrings, err = parseINDEX(r)
	if err != nil {
		return fmt.Errorf("CFF: CharStrings INDEX: %w", err)
	}

	f.CFF = cff
	return nil
}

////////////////////////////////////////////////////////////////

type pathOp int

const (
	opMoveTo pathOp = iota
	opLineTo
	opCurveTo
	opClosePath
)

// pathCommand is one absolute outline command produced by the CharString
// interpreter. CurveTo carries its two control points in (X1,Y1) and (X2,Y2).
type pathCommand struct {
	Op             pathOp
	X1, Y1, X2, Y2 float64
	X, Y           float64
}

// charStringInterp executes one CharString and its subroutines against a
// single mutable pen state. Subroutine calls recurse over run with the same
// interpreter, so position, stem count, width state and the open-contour flag
// propagate across call and return.
type charStringInterp struct {
	cff *CFFTable

	stack         []float64
	x, y          float64
	stems         int
	width         float64
	widthConsumed bool
	open          bool
	done          bool
	depth         int

	cmds []pathCommand
}

func newCharStringInterp(cff *CFFTable) *charStringInterp {
	return &charStringInterp{
		cff:   cff,
		stack: make([]float64, 0, 48),
		width: cff.defaultWidthX,
	}
}

func (p *charStringInterp) moveTo(x, y float64) {
	if p.open {
		p.closePath()
	}
	p.cmds = append(p.cmds, pathCommand{Op: opMoveTo, X: x, Y: y})
	p.open = true
}

func (p *charStringInterp) lineTo(x, y float64) {
	p.cmds = append(p.cmds, pathCommand{Op: opLineTo, X: x, Y: y})
}

func (p *charStringInterp) curveTo(x1, y1, x2, y2, x, y float64) {
	p.cmds = append(p.cmds, pathCommand{Op: opCurveTo, X1: x1, Y1: y1, X2: x2, Y2: y2, X: x, Y: y})
}

func (p *charStringInterp) closePath() {
	if p.open {
		p.cmds = append(p.cmds, pathCommand{Op: opClosePath})
		p.open = false
	}
}

// consumeWidth takes a leading glyph-width operand when the operand count
// exceeds what the operator needs. Only the first width-capable operator may
// carry one.
func (p *charStringInterp) consumeWidth(nArgs int) {
	if !p.widthConsumed {
		if 0 <= nArgs && nArgs < len(p.stack) && (len(p.stack)-nArgs)%2 == 1 || nArgs < 0 && len(p.stack)%2 == 1 {
			p.width = p.cff.nominalWidthX + p.stack[0]
			p.stack = p.stack[1:]
		}
		p.widthConsumed = true
	}
}

func (p *charStringInterp) clearStack() {
	p.stack = p.stack[:0]
}

func (p *charStringInterp) run(code []byte) error {
	if maxSubrDepth < p.depth {
		return fmt.Errorf("CFF: %w", ErrRecursionLimit)
	}

	r := NewBinaryReader(code)
	for 0 < r.Len() && !p.done {
		b0 := int(r.ReadUint8())
		if 32 <= b0 || b0 == 28 {
			var v float64
			if b0 == 28 {
				v = float64(r.ReadInt16())
			} else if b0 < 247 {
				v = float64(b0 - 139)
			} else if b0 < 251 {
				b1 := int(r.ReadUint8())
				v = float64((b0-247)*256 + b1 + 108)
			} else if b0 < 255 {
				b1 := int(r.ReadUint8())
				v = float64(-(b0-251)*256 - b1 - 108)
			} else {
				v = float64(r.ReadInt32()) / 65536.0
			}
			if err := r.Err(); err != nil {
				return fmt.Errorf("CFF: CharString: %w", err)
			}
			if 48 <= len(p.stack) {
				return fmt.Errorf("CFF: CharString: operand stack overflow: %w", ErrBadFontData)
			}
			p.stack = append(p.stack, v)
			continue
		}

		if b0 == 12 {
			b0 = 256 + int(r.ReadUint8())
		}
		switch b0 {
		case 1, 3, 18, 23:
			// hstem, vstem, hstemhm, vstemhm
			p.consumeWidth(-1)
			p.stems += len(p.stack) / 2
			p.clearStack()
		case 19, 20:
			// hintmask, cntrmask carry an implicit vstem
			p.consumeWidth(-1)
			p.stems += len(p.stack) / 2
			p.clearStack()
			_ = r.ReadBytes(uint32((p.stems + 7) / 8))
		case 21:
			// rmoveto
			p.consumeWidth(2)
			if 2 <= len(p.stack) {
				p.x += p.stack[len(p.stack)-2]
				p.y += p.stack[len(p.stack)-1]
			}
			p.moveTo(p.x, p.y)
			p.clearStack()
		case 22:
			// hmoveto
			p.consumeWidth(1)
			if 1 <= len(p.stack) {
				p.x += p.stack[len(p.stack)-1]
			}
			p.moveTo(p.x, p.y)
			p.clearStack()
		case 4:
			// vmoveto
			p.consumeWidth(1)
			if 1 <= len(p.stack) {
				p.y += p.stack[len(p.stack)-1]
			}
			p.moveTo(p.x, p.y)
			p.clearStack()
		case 5:
			// rlineto
			for i := 0; i+1 < len(p.stack); i += 2 {
				p.x += p.stack[i]
				p.y += p.stack[i+1]
				p.lineTo(p.x, p.y)
			}
			p.clearStack()
		case 6, 7:
			// hlineto, vlineto: single-axis deltas with alternating axis
			vertical := b0 == 7
			for i := 0; i < len(p.stack); i++ {
				if vertical {
					p.y += p.stack[i]
				} else {
					p.x += p.stack[i]
				}
				p.lineTo(p.x, p.y)
				vertical = !vertical
			}
			p.clearStack()
		case 8:
			// rrcurveto
			for i := 0; i+5 < len(p.stack); i += 6 {
				p.rrcurve(p.stack[i], p.stack[i+1], p.stack[i+2], p.stack[i+3], p.stack[i+4], p.stack[i+5])
			}
			p.clearStack()
		case 24:
			// rcurveline
			i := 0
			for ; i+5 < len(p.stack)-2; i += 6 {
				p.rrcurve(p.stack[i], p.stack[i+1], p.stack[i+2], p.stack[i+3], p.stack[i+4], p.stack[i+5])
			}
			if i+1 < len(p.stack) {
				p.x += p.stack[i]
				p.y += p.stack[i+1]
				p.lineTo(p.x, p.y)
			}
			p.clearStack()
		case 25:
			// rlinecurve
			i := 0
			for ; i+1 < len(p.stack)-6; i += 2 {
				p.x += p.stack[i]
				p.y += p.stack[i+1]
				p.lineTo(p.x, p.y)
			}
			if i+5 < len(p.stack) {
				p.rrcurve(p.stack[i], p.stack[i+1], p.stack[i+2], p.stack[i+3], p.stack[i+4], p.stack[i+5])
			}
			p.clearStack()
		case 26, 27:
			// vvcurveto, hhcurveto
			vertical := b0 == 26
			i := 0
			if len(p.stack)%4 == 1 {
				if vertical {
					p.x += p.stack[0]
				} else {
					p.y += p.stack[0]
				}
				i++
			}
			for ; i+3 < len(p.stack); i += 4 {
				var x1, y1 float64
				if vertical {
					p.y += p.stack[i]
				} else {
					p.x += p.stack[i]
				}
				x1, y1 = p.x, p.y
				p.x += p.stack[i+1]
				p.y += p.stack[i+2]
				x2, y2 := p.x, p.y
				if vertical {
					p.y += p.stack[i+3]
				} else {
					p.x += p.stack[i+3]
				}
				p.curveTo(x1, y1, x2, y2, p.x, p.y)
			}
			p.clearStack()
		case 30, 31:
			// vhcurveto, hvcurveto: the axis alternates per curve group, the
			// final group may carry a trailing delta for the other axis
			vertical := b0 == 30
			for i := 0; i+3 < len(p.stack); i += 4 {
				if vertical {
					p.y += p.stack[i]
				} else {
					p.x += p.stack[i]
				}
				x1, y1 := p.x, p.y
				p.x += p.stack[i+1]
				p.y += p.stack[i+2]
				x2, y2 := p.x, p.y
				if vertical {
					p.x += p.stack[i+3]
				} else {
					p.y += p.stack[i+3]
				}
				if i+5 == len(p.stack) {
					if vertical {
						p.y += p.stack[i+4]
					} else {
						p.x += p.stack[i+4]
					}
					i++
				}
				p.curveTo(x1, y1, x2, y2, p.x, p.y)
				vertical = !vertical
			}
			p.clearStack()
		case 10, 29:
			// callsubr, callgsubr
			if len(p.stack) == 0 {
				p.clearStack()
				break
			}
			var subrs *cffINDEX
			if b0 == 10 {
				subrs = p.cff.localSubrs
			} else {
				subrs = p.cff.globalSubrs
			}
			i := int(p.stack[len(p.stack)-1]) + subrs.Bias()
			p.stack = p.stack[:len(p.stack)-1]
			subr := subrs.Get(i)
			if subr == nil {
				return fmt.Errorf("CFF: CharString: bad subroutine %d: %w", i, ErrBadFontData)
			}
			p.depth++
			if err := p.run(subr); err != nil {
				return err
			}
			p.depth--
		case 11:
			// return
			return nil
		case 14:
			// endchar; accent composition (seac) is not supported
			p.consumeWidth(-1)
			p.closePath()
			p.clearStack()
			p.done = true
		case 256 + 35:
			// flex
			if len(p.stack) == 13 {
				for i := 0; i < 12; i += 6 {
					p.rrcurve(p.stack[i], p.stack[i+1], p.stack[i+2], p.stack[i+3], p.stack[i+4], p.stack[i+5])
				}
			}
			p.clearStack()
		case 256 + 34:
			// hflex
			if len(p.stack) == 7 {
				y0 := p.y
				p.x += p.stack[0]
				x1, y1 := p.x, p.y
				p.x += p.stack[1]
				p.y += p.stack[2]
				x2, y2 := p.x, p.y
				p.x += p.stack[3]
				p.curveTo(x1, y1, x2, y2, p.x, p.y)

				p.x += p.stack[4]
				x1, y1 = p.x, p.y
				p.x += p.stack[5]
				p.y = y0
				x2, y2 = p.x, p.y
				p.x += p.stack[6]
				p.curveTo(x1, y1, x2, y2, p.x, p.y)
			}
			p.clearStack()
		case 256 + 36:
			// hflex1
			if len(p.stack) == 9 {
				y0 := p.y
				p.rrcurve(p.stack[0], p.stack[1], p.stack[2], p.stack[3], p.stack[4], 0.0)

				p.x += p.stack[5]
				x1, y1 := p.x, p.y
				p.x += p.stack[6]
				p.y += p.stack[7]
				x2, y2 := p.x, p.y
				p.x += p.stack[8]
				p.y = y0
				p.curveTo(x1, y1, x2, y2, p.x, p.y)
			}
			p.clearStack()
		case 256 + 37:
			// flex1
			if len(p.stack) == 11 {
				x0, y0 := p.x, p.y
				p.rrcurve(p.stack[0], p.stack[1], p.stack[2], p.stack[3], p.stack[4], p.stack[5])

				p.x += p.stack[6]
				p.y += p.stack[7]
				x1, y1 := p.x, p.y
				p.x += p.stack[8]
				p.y += p.stack[9]
				x2, y2 := p.x, p.y
				dx, dy := math.Abs(p.x-x0), math.Abs(p.y-y0)
				if dy < dx {
					p.x += p.stack[10]
					p.y = y0
				} else {
					p.x = x0
					p.y += p.stack[10]
				}
				p.curveTo(x1, y1, x2, y2, p.x, p.y)
			}
			p.clearStack()
		default:
			// unrecognized operator: drop its operands and continue
			p.clearStack()
		}
		if err := r.Err(); err != nil {
			return fmt.Errorf("CFF: CharString: %w", err)
		}
	}
	return nil
}

func (p *charStringInterp) rrcurve(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	p.x += dx1
	p.y += dy1
	x1, y1 := p.x, p.y
	p.x += dx2
	p.y += dy2
	x2, y2 := p.x, p.y
	p.x += dx3
	p.y += dy3
	p.curveTo(x1, y1, x2, y2, p.x, p.y)
}

// cffOutline interprets the CharString of a glyph and converts the command
// list into the shared outline model. A missing CharString (e.g. a degraded
// CFF font) yields an empty glyph, not an error.
func (f *Font) cffOutline(glyphID uint16) (*Glyph, error) {
	if f.CFF == nil {
		return &Glyph{}, nil
	}
	charString := f.CFF.charStrings.Get(int(glyphID))
	if charString == nil {
		return &Glyph{}, nil
	}

	interp := newCharStringInterp(f.CFF)
	if err := interp.run(charString); err != nil {
		return nil, err
	}
	interp.closePath()
	return commandsToGlyph(interp.cmds), nil
}

// commandsToGlyph folds an absolute command list into contours. Every moveto
// starts a new contour; curve end points carry their cubic control points.
func commandsToGlyph(cmds []pathCommand) *Glyph {
	g := &Glyph{}
	var contour Contour
	flush := func() {
		if 0 < len(contour) {
			g.Contours = append(g.Contours, contour)
			contour = nil
		}
	}
	for _, cmd := range cmds {
		switch cmd.Op {
		case opMoveTo:
			flush()
			contour = Contour{{X: cmd.X, Y: cmd.Y, OnCurve: true}}
		case opLineTo:
			contour = append(contour, Point{X: cmd.X, Y: cmd.Y, OnCurve: true})
		case opCurveTo:
			contour = append(contour, Point{
				X: cmd.X, Y: cmd.Y, OnCurve: true,
				Cubic: true,
				CX1:   cmd.X1, CY1: cmd.Y1,
				CX2: cmd.X2, CY2: cmd.Y2,
			})
		case opClosePath:
			flush()
		}
	}
	flush()
	g.UpdateBounds()
	return g
}
