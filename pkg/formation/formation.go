// ABOUTME: Count-driven formation layout for the dancer ensemble
// ABOUTME: Line, triangle, inverted triangle, diamond, circle and grid slot assignment
package formation

import (
	"math"
)

// Kind identifies a formation shape.
type Kind int

const (
	Line Kind = iota
	Triangle
	InvertedTriangle
	Diamond
	Circle
	Grid
)

const (
	RowSpacing = 60.0
	RowWidth   = 0.6 // fraction of canvas width shared by one row

	CircleRadius  = 0.25 // fraction of min(width, height)
	CircleFlatten = 0.6

	gridMargin     = 0.1
	boundaryMargin = 30.0
	minRoam        = 20.0
	maxRoamFrac    = 0.15
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Triangle:
		return "triangle"
	case InvertedTriangle:
		return "inverted-triangle"
	case Diamond:
		return "diamond"
	case Circle:
		return "circle"
	case Grid:
		return "grid"
	default:
		return "unknown"
	}
}

// KindFor selects the formation for an ensemble of total dancers.
func KindFor(total int) Kind {
	switch {
	case total <= 3:
		return Line
	case total <= 6:
		return Triangle
	case total <= 10:
		return InvertedTriangle
	case total <= 15:
		return Diamond
	case total <= 25:
		return Circle
	default:
		return Grid
	}
}

// Slot is the position assigned to one dancer. Row and Col identify the
// dancer within row-based and grid formations; for circles Row is 0 and Col
// is the index. Left and Right bound the dancer's wandering.
type Slot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Assign returns the slot for dancer index out of total on the canvas.
// total below 1 is treated as 1 and index is clamped into range; callers
// reject invalid counts before reaching here.
func Assign(index, total int, c Canvas) Slot {
	if total < 1 {
		total = 1
	}
	if index < 0 {
		index = 0
	}
	if index >= total {
		index = total - 1
	}
	if !c.valid() {
		c = Landscape.Canvas()
	}

	switch KindFor(total) {
	case Line:
		return rowSlot(index, []int{total}, 0.7*c.Height, c)
	case Triangle, InvertedTriangle, Diamond:
		return rowSlot(index, RowSizes(total), 0.6*c.Height, c)
	case Circle:
		return circleSlot(index, total, c)
	default:
		return gridSlot(index, total, c)
	}
}

// Layout returns the slots for every dancer in index order.
func Layout(total int, c Canvas) []Slot {
	if total < 1 {
		return nil
	}
	slots := make([]Slot, total)
	for i := range slots {
		slots[i] = Assign(i, total, c)
	}
	return slots
}

// RowSizes returns the row widths, front to back, used by row-based
// formations. Circle and grid counts return nil.
func RowSizes(total int) []int {
	switch KindFor(total) {
	case Line:
		return []int{total}
	case Triangle:
		return triangleRows(total)
	case InvertedTriangle:
		return reversed(triangleRows(total))
	case Diamond:
		top := (total + 1) / 2
		rows := triangleRows(top)
		return append(rows, reversed(triangleRows(total-top))...)
	default:
		return nil
	}
}

// GridSize returns the column and row count of the grid formation.
func GridSize(total int, c Canvas) (cols, rows int) {
	if total < 1 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(total) * c.Width / c.Height)))
	if cols < 1 {
		cols = 1
	}
	rows = int(math.Ceil(float64(total) / float64(cols)))
	return cols, rows
}

// ScaleFor suggests a figure scale so dancers in the formation do not overlap.
func ScaleFor(total int, c Canvas) float64 {
	if !c.valid() {
		c = Landscape.Canvas()
	}
	base := c.minSide() / 720

	var scale float64
	switch KindFor(total) {
	case Line:
		scale = 1.0
	case Triangle:
		scale = 0.9
	case InvertedTriangle:
		scale = 0.8
	case Diamond:
		scale = 0.7
	case Circle:
		scale = 0.6
	default:
		_, rows := GridSize(total, c)
		// A figure is about 200px tall at scale 1.
		scale = math.Min(0.5, (1-2*gridMargin)*0.75*c.Height/float64(rows)/200)
	}
	return math.Max(0.1, scale*base)
}

// triangleRows builds rows 1, 2, 3, ... A remainder narrower than the last
// row is spread over the back rows so widths never shrink.
func triangleRows(total int) []int {
	var rows []int
	remaining := total
	for k := 1; remaining > 0; k++ {
		if remaining >= k {
			rows = append(rows, k)
			remaining -= k
			continue
		}
		if len(rows) > 0 && remaining < rows[len(rows)-1] {
			for i := len(rows) - 1; remaining > 0; i-- {
				rows[i]++
				remaining--
			}
			break
		}
		rows = append(rows, remaining)
		remaining = 0
	}
	return rows
}

func reversed(rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

func rowSlot(index int, rows []int, centerY float64, c Canvas) Slot {
	row, col := 0, index
	for row < len(rows)-1 && col >= rows[row] {
		col -= rows[row]
		row++
	}

	spacing := RowSpacing
	if n := len(rows); n > 1 && float64(n-1)*spacing > 0.5*c.Height {
		spacing = 0.5 * c.Height / float64(n-1)
	}

	k := rows[row]
	slotWidth := RowWidth * c.Width / float64(k)
	x := c.Width/2 + (float64(col)-float64(k-1)/2)*slotWidth
	y := centerY + (float64(row)-float64(len(rows)-1)/2)*spacing

	return bounded(Slot{X: x, Y: y, Row: row, Col: col}, slotWidth, c)
}

func circleSlot(index, total int, c Canvas) Slot {
	r := CircleRadius * c.minSide()
	angle := 2*math.Pi*float64(index)/float64(total) - math.Pi/2
	x := c.Width/2 + r*math.Cos(angle)
	y := 0.6*c.Height + r*math.Sin(angle)*CircleFlatten
	arc := 2 * math.Pi * r / float64(total)

	return bounded(Slot{X: x, Y: y, Row: 0, Col: index}, arc, c)
}

func gridSlot(index, total int, c Canvas) Slot {
	cols, rows := GridSize(total, c)
	row, col := index/cols, index%cols

	cellW := (1 - 2*gridMargin) * c.Width / float64(cols)
	top := 0.25 * c.Height
	cellH := 0.65 * c.Height / float64(rows)
	x := gridMargin*c.Width + (float64(col)+0.5)*cellW
	y := top + (float64(row)+0.5)*cellH

	return bounded(Slot{X: x, Y: y, Row: row, Col: col}, cellW, c)
}

func bounded(s Slot, slotWidth float64, c Canvas) Slot {
	roam := math.Max(minRoam, math.Min(0.5*slotWidth, maxRoamFrac*c.Width))
	s.Left = math.Max(boundaryMargin, s.X-roam)
	s.Right = math.Min(c.Width-boundaryMargin, s.X+roam)
	if s.Left > s.X {
		s.Left = s.X
	}
	if s.Right < s.X {
		s.Right = s.X
	}
	return s
}
