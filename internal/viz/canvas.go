// Package viz renders rigs and simulations in the terminal: braille-canvas
// profile drawings, asciigraph summary plots, and an interactive playback of
// simulated motion.
package viz

import "strings"

// Braille patterns: 2x4 dots per cell
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel canvas with a world-coordinate window, so line
// profiles can be drawn in meters rather than cells. The pixel resolution is
// (width*2) x (height*4).
type Canvas struct {
	width, height  int
	grid           [][]rune
	x0, x1, y0, y1 float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		width:  w,
		height: h,
		grid:   make([][]rune, h),
		x0:     0, x1: 1, y0: 0, y1: 1,
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// SetWindow maps the world rectangle onto the full canvas. y grows upward.
func (c *Canvas) SetWindow(x0, x1, y0, y1 float64) {
	if x1 == x0 {
		x1 = x0 + 1
	}
	if y1 == y0 {
		y1 = y0 + 1
	}
	c.x0, c.x1, c.y0, c.y1 = x0, x1, y0, y1
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) pixel(wx, wy float64) (int, int) {
	px := int((wx - c.x0) / (c.x1 - c.x0) * float64(c.width*2-1))
	py := int((c.y1 - wy) / (c.y1 - c.y0) * float64(c.height*4-1))
	return px, py
}

// Set turns on the pixel at the given pixel coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.width || row >= c.height {
		return
	}
	c.grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Plot marks a single world point.
func (c *Canvas) Plot(wx, wy float64) {
	x, y := c.pixel(wx, wy)
	c.Set(x, y)
}

// Polyline draws world-coordinate series (xs, ys) as connected segments.
func (c *Canvas) Polyline(xs, ys []float64) {
	for i := 1; i < len(xs); i++ {
		x0, y0 := c.pixel(xs[i-1], ys[i-1])
		x1, y1 := c.pixel(xs[i], ys[i])
		c.line(x0, y0, x1, y1)
	}
}

// line draws in pixel space using Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
