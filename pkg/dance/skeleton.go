// ABOUTME: Converts pose parameters into stick-figure joint coordinates
// ABOUTME: Head, torso, arms and legs with tilt, spin foreshortening and step lift
package dance

import "math"

// Stick-figure proportions at scale 1.
const (
	headRadius = 25.0
	bodyLength = 70.0
	armLength  = 50.0
	legLength  = 60.0
	armDrop    = 15.0
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Skeleton holds the joints a renderer connects with lines. The head is a
// circle of HeadRadius around Head.
type Skeleton struct {
	Head       Point
	HeadRadius float64
	Neck       Point
	Shoulder   Point
	Hip        Point
	LeftElbow  Point
	LeftHand   Point
	RightElbow Point
	RightHand  Point
	LeftKnee   Point
	LeftFoot   Point
	RightKnee  Point
	RightFoot  Point
}

// Skeleton lays out the figure's joints for this pose.
func (p Pose) Skeleton() Skeleton {
	s := math.Max(0.1, p.Scale)

	// Spinning squeezes horizontal offsets; keep a sliver so the figure
	// never collapses to a vertical line.
	face := math.Cos(p.Rotation)
	if math.Abs(face) < 0.15 {
		face = math.Copysign(0.15, face)
	}
	hx := func(dx float64) float64 { return dx * s * face }

	hipX := p.X + p.HipSwing*s
	hipY := p.Y - p.Bounce*s
	hip := Point{X: hipX, Y: hipY}

	tiltX, tiltY := math.Sin(p.BodyTilt), math.Cos(p.BodyTilt)
	neck := Point{
		X: hipX + hx(tiltX*bodyLength),
		Y: hipY - tiltY*bodyLength*s,
	}
	head := Point{
		X: neck.X + hx(tiltX*headRadius),
		Y: neck.Y - tiltY*headRadius*s + (p.HeadBob+p.HeadNod)*s,
	}
	shoulder := Point{
		X: neck.X - hx(tiltX*armDrop),
		Y: neck.Y + tiltY*armDrop*s - p.ShoulderShrug*s,
	}

	a := p.ArmAngle
	elbowDX, elbowDY := math.Sin(a)*armLength*0.6, math.Cos(a)*armLength*0.6
	handDX, handDY := math.Sin(a)*armLength, math.Cos(a)*armLength+math.Sin(a*2)*10

	l := p.LegAngle
	kneeDX, kneeDY := math.Sin(l)*legLength*0.5, math.Cos(l)*legLength*0.5
	footDX := math.Sin(l) * legLength * 0.7

	leftLift, rightLift := 0.0, 0.0
	if p.StepHeight > 0 {
		if math.Sin(p.StepPhase) >= 0 {
			leftLift = p.StepHeight
		} else {
			rightLift = p.StepHeight
		}
	}

	return Skeleton{
		Head:       head,
		HeadRadius: math.Max(MinParticleR, headRadius*s),
		Neck:       neck,
		Shoulder:   shoulder,
		Hip:        hip,
		LeftElbow:  Point{X: shoulder.X - hx(elbowDX), Y: shoulder.Y + elbowDY*s},
		LeftHand:   Point{X: shoulder.X - hx(handDX), Y: shoulder.Y + handDY*s},
		RightElbow: Point{X: shoulder.X + hx(elbowDX), Y: shoulder.Y + elbowDY*s},
		RightHand:  Point{X: shoulder.X + hx(handDX), Y: shoulder.Y + handDY*s},
		LeftKnee:   Point{X: hipX - hx(kneeDX), Y: hipY + kneeDY*s},
		LeftFoot:   Point{X: hipX - hx(footDX), Y: hipY + (legLength-leftLift)*s},
		RightKnee:  Point{X: hipX + hx(kneeDX), Y: hipY + kneeDY*s},
		RightFoot:  Point{X: hipX + hx(footDX), Y: hipY + (legLength-rightLift)*s},
	}
}
