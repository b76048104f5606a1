package fontsvg

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/minify/v2"
)

// Precision is the number of significant digits used when formatting path
// coordinates.
var Precision = 6

type num float64

func (f num) String() string {
	s := fmt.Sprintf("%.*g", Precision, float64(f))
	if num(math.MaxInt32) < f || f < num(math.MinInt32) {
		if i := strings.IndexAny(s, ".eE"); i == -1 {
			s += ".0"
		}
	}
	return string(minify.Number([]byte(s), Precision))
}

// PathCmd is one command of a path.
type PathCmd int

const (
	MoveToCmd PathCmd = iota
	LineToCmd
	QuadToCmd
	CubeToCmd
	CloseCmd
)

// coordinates per command
var cmdLens = [...]int{MoveToCmd: 2, LineToCmd: 2, QuadToCmd: 4, CubeToCmd: 6, CloseCmd: 0}

// Path is a sequence of path commands with their coordinates packed into a
// flat array. The zero value is an empty path ready for use.
type Path struct {
	cmds []PathCmd
	d    []float64
}

// MoveTo starts a new subpath at (x,y).
func (p *Path) MoveTo(x, y float64) {
	p.cmds = append(p.cmds, MoveToCmd)
	p.d = append(p.d, x, y)
}

// LineTo adds a line towards (x,y).
func (p *Path) LineTo(x, y float64) {
	p.cmds = append(p.cmds, LineToCmd)
	p.d = append(p.d, x, y)
}

// QuadTo adds a quadratic Bézier towards (x,y) with control point (cx,cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.cmds = append(p.cmds, QuadToCmd)
	p.d = append(p.d, cx, cy, x, y)
}

// CubeTo adds a cubic Bézier towards (x,y) with control points (cx1,cy1) and
// (cx2,cy2).
func (p *Path) CubeTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.cmds = append(p.cmds, CubeToCmd)
	p.d = append(p.d, cx1, cy1, cx2, cy2, x, y)
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.cmds = append(p.cmds, CloseCmd)
}

// Empty returns true when the path contains no commands.
func (p *Path) Empty() bool {
	return p == nil || len(p.cmds) == 0
}

// Append appends q's commands to p.
func (p *Path) Append(q *Path) {
	if q == nil {
		return
	}
	p.cmds = append(p.cmds, q.cmds...)
	p.d = append(p.d, q.d...)
}

// Translate moves all coordinates by (dx,dy).
func (p *Path) Translate(dx, dy float64) {
	for i := 0; i < len(p.d); i += 2 {
		p.d[i] += dx
		p.d[i+1] += dy
	}
}

// Scale multiplies all coordinates by (sx,sy).
func (p *Path) Scale(sx, sy float64) {
	for i := 0; i < len(p.d); i += 2 {
		p.d[i] *= sx
		p.d[i+1] *= sy
	}
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// W returns the width of the bounds.
func (b Bounds) W() float64 {
	return b.MaxX - b.MinX
}

// H returns the height of the bounds.
func (b Bounds) H() float64 {
	return b.MaxY - b.MinY
}

// Bounds returns the bounding rectangle over all coordinates, control points
// included. An empty path has zero bounds.
func (p *Path) Bounds() Bounds {
	if p.Empty() || len(p.d) == 0 {
		return Bounds{}
	}
	b := Bounds{p.d[0], p.d[1], p.d[0], p.d[1]}
	for i := 2; i < len(p.d); i += 2 {
		b.MinX = math.Min(b.MinX, p.d[i])
		b.MinY = math.Min(b.MinY, p.d[i+1])
		b.MaxX = math.Max(b.MaxX, p.d[i])
		b.MaxY = math.Max(b.MaxY, p.d[i+1])
	}
	return b
}

// Iterate calls fn for every command with its coordinates: 2 for MoveTo and
// LineTo, 4 for QuadTo, 6 for CubeTo, none for Close.
func (p *Path) Iterate(fn func(cmd PathCmd, d []float64)) {
	i := 0
	for _, cmd := range p.cmds {
		n := cmdLens[cmd]
		fn(cmd, p.d[i:i+n])
		i += n
	}
}

// String returns the path as SVG path data.
func (p *Path) String() string {
	if p.Empty() {
		return ""
	}
	sb := strings.Builder{}
	i := 0
	for _, cmd := range p.cmds {
		if 0 < sb.Len() {
			sb.WriteByte(' ')
		}
		switch cmd {
		case MoveToCmd:
			fmt.Fprintf(&sb, "M %v %v", num(p.d[i]), num(p.d[i+1]))
		case LineToCmd:
			fmt.Fprintf(&sb, "L %v %v", num(p.d[i]), num(p.d[i+1]))
		case QuadToCmd:
			fmt.Fprintf(&sb, "Q %v %v %v %v", num(p.d[i]), num(p.d[i+1]), num(p.d[i+2]), num(p.d[i+3]))
		case CubeToCmd:
			fmt.Fprintf(&sb, "C %v %v %v %v %v %v", num(p.d[i]), num(p.d[i+1]), num(p.d[i+2]), num(p.d[i+3]), num(p.d[i+4]), num(p.d[i+5]))
		case CloseCmd:
			sb.WriteByte('Z')
		}
		i += cmdLens[cmd]
	}
	return sb.String()
}
