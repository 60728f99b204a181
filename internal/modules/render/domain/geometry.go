package domain

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Angles are in degrees, 0 at 3 o'clock, growing clockwise on a y-down
// canvas. -90 is 12 o'clock.

func polar(c Point, radius, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: c.X + radius*math.Cos(rad), Y: c.Y + radius*math.Sin(rad)}
}

const maxArcSteps = 720

// arcSteps picks one segment per 2 degrees, at least one and at most two
// full turns' worth.
func arcSteps(sweep float64) int {
	a := math.Abs(sweep)
	if math.IsNaN(a) || a >= 2*maxArcSteps {
		return maxArcSteps
	}
	return max(1, int(math.Ceil(a/2)))
}

// DrawnSweep folds a sweep past one full turn into the range (360, 720)
// with the same end angle, so the ring looks the same while the outline
// stays bounded. Infinite sweeps draw a full ring; NaN draws nothing.
func DrawnSweep(sweep float64) float64 {
	switch {
	case math.IsNaN(sweep):
		return 0
	case math.IsInf(sweep, 0):
		return math.Copysign(360, sweep)
	case math.Abs(sweep) <= 360:
		return sweep
	}
	return math.Copysign(360+math.Mod(math.Abs(sweep), 360), sweep)
}

// ArcPolyline samples the centre line of an arc, endpoints included.
func ArcPolyline(c Point, radius, startDeg, sweepDeg float64) []Point {
	n := arcSteps(sweepDeg)
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, polar(c, radius, startDeg+sweepDeg*float64(i)/float64(n)))
	}
	return pts
}

// CirclePolygon approximates a full circle.
func CirclePolygon(c Point, radius float64) []Point {
	pts := ArcPolyline(c, radius, 0, 360)
	return pts[:len(pts)-1]
}

// ArcOutline returns the closed outline of an arc stroked with the given
// width and round caps. Sweeps beyond a full turn overlap themselves and
// are folded by DrawnSweep; a zero sweep degenerates to a dot of diameter
// width.
func ArcOutline(c Point, radius, width, startDeg, sweepDeg float64) []Point {
	sweepDeg = DrawnSweep(sweepDeg)
	half := width / 2
	sign := 1.0
	if sweepDeg < 0 {
		sign = -1
	}
	end := startDeg + sweepDeg

	var pts []Point
	pts = append(pts, ArcPolyline(c, radius+half, startDeg, sweepDeg)...)
	pts = append(pts, ArcPolyline(polar(c, radius, end), half, end, 180*sign)[1:]...)
	pts = append(pts, ArcPolyline(c, radius-half, end, -sweepDeg)[1:]...)
	startCap := ArcPolyline(polar(c, radius, startDeg), half, startDeg+180*sign, 180*sign)
	pts = append(pts, startCap[1:len(startCap)-1]...)
	return pts
}
