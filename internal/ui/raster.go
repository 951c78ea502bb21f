// ABOUTME: Character grid rasterizer for the terminal dance floor
// ABOUTME: Bresenham lines, ellipses and coloured run-length output
package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	r     rune
	color string
}

// Grid is a fixed-size character canvas. Later writes overwrite earlier ones.
type Grid struct {
	cols, rows int
	cells      []cell
}

// NewGrid creates a blank grid
func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	g.Clear()
	return g
}

// Clear blanks every cell
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{r: ' '}
	}
}

// Set writes one cell, ignoring coordinates off the grid
func (g *Grid) Set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y*g.cols+x] = cell{r: r, color: color}
}

// At returns the rune at x, y or a space off the grid
func (g *Grid) At(x, y int) rune {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return ' '
	}
	return g.cells[y*g.cols+x].r
}

// Line draws from (x0,y0) to (x1,y1) inclusive with a slope-matched rune
func (g *Grid) Line(x0, y0, x1, y1 int, color string) {
	r := lineRune(x1-x0, y1-y0)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		g.Set(x0, y0, r, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Ellipse outlines an ellipse; radii under one cell collapse to a single rune
func (g *Grid) Ellipse(cx, cy int, rx, ry float64, color string) {
	if rx < 1 && ry < 1 {
		g.Set(cx, cy, 'O', color)
		return
	}
	steps := int(math.Ceil(2 * math.Pi * math.Max(rx, ry)))
	if steps < 8 {
		steps = 8
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(rx*math.Cos(a)))
		y := cy + int(math.Round(ry*math.Sin(a)))
		g.Set(x, y, 'o', color)
	}
}

// String renders the grid. Styled output colours runs with lipgloss.
func (g *Grid) String(styled bool) string {
	var b strings.Builder
	styles := map[string]lipgloss.Style{}
	var run strings.Builder

	for y := 0; y < g.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := g.cells[y*g.cols : (y+1)*g.cols]
		for x := 0; x < len(row); {
			color := row[x].color
			run.Reset()
			for x < len(row) && (row[x].color == color || !styled) {
				run.WriteRune(row[x].r)
				x++
			}
			if !styled || color == "" {
				b.WriteString(run.String())
				continue
			}
			st, ok := styles[color]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
				styles[color] = st
			}
			b.WriteString(st.Render(run.String()))
		}
	}
	return b.String()
}

// lineRune picks a character that follows the segment's slope. Y grows downwards.
func lineRune(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case adx == 0 && ady == 0:
		return '|'
	case 2*ady < adx:
		return '-'
	case 2*adx < ady:
		return '|'
	case (dx > 0) == (dy < 0):
		return '/'
	default:
		return '\\'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
