package contentstream

import "math"

// LineCap represents the line cap style (J operator).
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin represents the line join style (j operator).
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Path describes a graphics path made of subpaths.
type Path struct {
	Subpaths []Subpath
}

// Subpath describes a portion of a path.
type Subpath struct {
	Points []PathPoint
	Closed bool
}

// PathPoint identifies a path segment and its coordinates.
type PathPoint struct {
	X, Y                 float64
	Type                 PathPointType
	Control1X, Control1Y float64
	Control2X, Control2Y float64
}

// PathPointType enumerates path segment types.
type PathPointType int

const (
	PathMoveTo PathPointType = iota
	PathLineTo
	PathCurveTo
)

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	p.Subpaths = append(p.Subpaths, Subpath{Points: []PathPoint{{Type: PathMoveTo, X: x, Y: y}}})
	return p
}

// LineTo appends a straight segment to the current subpath.
func (p *Path) LineTo(x, y float64) *Path {
	p.appendPoint(PathPoint{Type: PathLineTo, X: x, Y: y})
	return p
}

// CurveTo appends a cubic Bezier segment to the current subpath.
func (p *Path) CurveTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	p.appendPoint(PathPoint{
		Type: PathCurveTo, X: x, Y: y,
		Control1X: c1x, Control1Y: c1y,
		Control2X: c2x, Control2Y: c2y,
	})
	return p
}

// Close marks the current subpath as closed.
func (p *Path) Close() *Path {
	if n := len(p.Subpaths); n > 0 {
		p.Subpaths[n-1].Closed = true
	}
	return p
}

func (p *Path) appendPoint(pt PathPoint) {
	if len(p.Subpaths) == 0 {
		p.MoveTo(pt.X, pt.Y)
		return
	}
	sp := &p.Subpaths[len(p.Subpaths)-1]
	sp.Points = append(sp.Points, pt)
}

// kappa is the control-point distance for a quarter circle drawn with one cubic curve.
var kappa = 4 * (math.Sqrt2 - 1) / 3

// Circle returns a closed path approximating a circle of radius r centered at (cx, cy).
func Circle(cx, cy, r float64) *Path {
	k := r * kappa
	p := &Path{}
	p.MoveTo(cx+r, cy).
		CurveTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r).
		CurveTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy).
		CurveTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r).
		CurveTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy).
		Close()
	return p
}
