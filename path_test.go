package fontsvg

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestPathString(t *testing.T) {
	p := &Path{}
	p.MoveTo(0, 0)
	p.LineTo(100, 0)
	p.QuadTo(100, 50, 100, 100)
	p.CubeTo(80, 120, 20, 120, 0, 100)
	p.Close()
	test.String(t, p.String(), "M 0 0 L 100 0 Q 100 50 100 100 C 80 120 20 120 0 100 Z")
}

func TestPathStringPrecision(t *testing.T) {
	p := &Path{}
	p.MoveTo(0.123456789, 1.0/3.0)
	test.String(t, p.String(), "M .123457 .333333")
}

func TestPathEmpty(t *testing.T) {
	p := &Path{}
	test.That(t, p.Empty())
	test.String(t, p.String(), "")
	test.T(t, p.Bounds(), Bounds{})

	p.MoveTo(1, 1)
	test.That(t, !p.Empty())

	var nilPath *Path
	test.That(t, nilPath.Empty())
}

func TestPathBounds(t *testing.T) {
	p := &Path{}
	p.MoveTo(10, 20)
	p.QuadTo(-5, 120, 50, 40)
	p.Close()

	// control points count towards the bounds
	b := p.Bounds()
	test.Float(t, b.MinX, -5.0)
	test.Float(t, b.MinY, 20.0)
	test.Float(t, b.MaxX, 50.0)
	test.Float(t, b.MaxY, 120.0)
	test.Float(t, b.W(), 55.0)
	test.Float(t, b.H(), 100.0)
}

func TestPathTranslateScale(t *testing.T) {
	p := &Path{}
	p.MoveTo(10, 10)
	p.LineTo(20, 30)

	p.Translate(5, -5)
	test.String(t, p.String(), "M 15 5 L 25 25")

	p.Scale(2, 0.5)
	test.String(t, p.String(), "M 30 2.5 L 50 12.5")
}

func TestPathAppend(t *testing.T) {
	p := &Path{}
	p.MoveTo(0, 0)
	p.LineTo(10, 0)

	q := &Path{}
	q.MoveTo(20, 0)
	q.Close()

	p.Append(q)
	test.String(t, p.String(), "M 0 0 L 10 0 M 20 0 Z")

	p.Append(nil)
	test.String(t, p.String(), "M 0 0 L 10 0 M 20 0 Z")
}

func TestPathIterate(t *testing.T) {
	p := &Path{}
	p.MoveTo(0, 0)
	p.QuadTo(1, 2, 3, 4)
	p.Close()

	var cmds []PathCmd
	var coords int
	p.Iterate(func(cmd PathCmd, d []float64) {
		cmds = append(cmds, cmd)
		coords += len(d)
	})
	test.T(t, len(cmds), 3)
	test.T(t, cmds[1], QuadToCmd)
	test.T(t, coords, 6)
}
