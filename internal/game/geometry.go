package game

import "math"

// Direction is a 4-way facing. Values are wire-stable.
type Direction int

const (
	DirUp    Direction = 0
	DirRight Direction = 1
	DirDown  Direction = 2
	DirLeft  Direction = 3
)

var allDirections = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirLeft
}

// Delta returns the unit step for the direction
func (d Direction) Delta() (float64, float64) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	}
	return 0, 0
}

// Horizontal reports whether d moves along the x axis
func (d Direction) Horizontal() bool {
	return d == DirLeft || d == DirRight
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	}
	return "invalid"
}

// Rect is an axis-aligned box in pixel space
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports strict overlap; touching edges do not count
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Center returns the midpoint of the box
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// snapHalfTile rounds v to the nearest half-tile boundary
func snapHalfTile(v float64) float64 {
	const half = TileSize / 2
	return math.Round(v/half) * half
}

// round1 rounds to one decimal place to keep snapshots small
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
