// ABOUTME: Draws dance frames onto a character grid
// ABOUTME: Skeleton lines, heads, gesture glyphs, trails and particles coloured by hue
package ui

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/harperreed/dancefloor/pkg/dance"
)

// projection maps canvas pixels to grid cells
type projection struct {
	sx, sy float64
}

func newProjection(f dance.Frame, cols, rows int) projection {
	w, h := f.Canvas.Width, f.Canvas.Height
	if w <= 0 || h <= 0 {
		return projection{}
	}
	return projection{sx: float64(cols) / w, sy: float64(rows) / h}
}

func (p projection) point(pt dance.Point) (int, int) {
	return int(math.Round(pt.X * p.sx)), int(math.Round(pt.Y * p.sy))
}

func (p projection) xy(x, y float64) (int, int) {
	return p.point(dance.Point{X: x, Y: y})
}

// hueColor turns a hue in degrees into a hex colour
func hueColor(hue, lightness float64) string {
	return colorful.Hsl(math.Mod(hue+360, 360), 0.8, lightness).Clamped().Hex()
}

// gestureGlyph returns the hand marker for a gesture, 0 for plain hands
func gestureGlyph(g dance.Gesture, left bool) rune {
	switch g {
	case dance.GestureClap:
		return 'x'
	case dance.GesturePoint:
		if left {
			return '<'
		}
		return '>'
	case dance.GestureWave:
		return '~'
	case dance.GestureFistPump, dance.GestureFist:
		return '@'
	case dance.GestureThumbsUp, dance.GesturePointUp:
		return '^'
	case dance.GesturePeace:
		return 'v'
	case dance.GestureRock:
		return 'Y'
	case dance.GestureSnap:
		return '%'
	case dance.GestureJazz:
		return 'w'
	}
	return 0
}

// Render draws a frame onto g, sized to the grid
func Render(g *Grid, f dance.Frame, effects bool) {
	g.Clear()
	proj := newProjection(f, g.cols, g.rows)
	if proj.sx == 0 {
		return
	}

	if effects {
		for _, p := range f.Dancers {
			drawEffects(g, proj, p)
		}
	}
	for _, p := range f.Dancers {
		drawDancer(g, proj, p)
	}
}

func drawEffects(g *Grid, proj projection, p dance.Pose) {
	for _, t := range p.Trail {
		x, y := proj.xy(t.X, t.Y)
		g.Set(x, y, '.', hueColor(p.Hue, 0.15+0.45*t.Alpha))
	}
	for _, pt := range p.Particles {
		x, y := proj.xy(pt.X, pt.Y)
		r := '+'
		if pt.Life > 0.5 {
			r = '*'
		}
		g.Set(x, y, r, hueColor(pt.Hue, 0.3+0.4*pt.Life))
	}
}

func drawDancer(g *Grid, proj projection, p dance.Pose) {
	lightness := 0.6
	// Synced dancers glow brighter
	if p.Synced {
		lightness = 0.72
	}
	color := hueColor(p.Hue, lightness)
	sk := p.Skeleton()

	limb := func(points ...dance.Point) {
		for i := 1; i < len(points); i++ {
			x0, y0 := proj.point(points[i-1])
			x1, y1 := proj.point(points[i])
			g.Line(x0, y0, x1, y1, color)
		}
	}

	limb(sk.Neck, sk.Hip)
	limb(sk.Shoulder, sk.LeftElbow, sk.LeftHand)
	limb(sk.Shoulder, sk.RightElbow, sk.RightHand)
	limb(sk.Hip, sk.LeftKnee, sk.LeftFoot)
	limb(sk.Hip, sk.RightKnee, sk.RightFoot)

	hx, hy := proj.point(sk.Head)
	g.Ellipse(hx, hy, sk.HeadRadius*proj.sx, sk.HeadRadius*proj.sy, color)

	if r := gestureGlyph(p.LeftHand, true); r != 0 {
		x, y := proj.point(sk.LeftHand)
		g.Set(x, y, r, color)
	}
	if r := gestureGlyph(p.RightHand, false); r != 0 {
		x, y := proj.point(sk.RightHand)
		g.Set(x, y, r, color)
	}
}
