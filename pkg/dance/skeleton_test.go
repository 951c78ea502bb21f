// ABOUTME: Tests for joint layout from pose parameters
// ABOUTME: Rest pose proportions, mirroring, scale and spin foreshortening
package dance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestPoseProportions(t *testing.T) {
	sk := Pose{X: 100, Y: 300, Scale: 1}.Skeleton()

	assert.Equal(t, Point{X: 100, Y: 300}, sk.Hip)
	assert.InDelta(t, 300-bodyLength, sk.Neck.Y, 1e-9)
	assert.InDelta(t, 300-bodyLength-headRadius, sk.Head.Y, 1e-9)
	assert.Equal(t, headRadius, sk.HeadRadius)

	// Arms hang straight down, legs stand straight.
	assert.InDelta(t, 100, sk.LeftHand.X, 1e-9)
	assert.InDelta(t, sk.Shoulder.Y+armLength, sk.LeftHand.Y, 1e-9)
	assert.InDelta(t, 300+legLength, sk.LeftFoot.Y, 1e-9)
	assert.InDelta(t, 300+legLength, sk.RightFoot.Y, 1e-9)
}

func TestArmsMirror(t *testing.T) {
	sk := Pose{X: 0, Y: 0, Scale: 1, ArmAngle: math.Pi / 2}.Skeleton()
	assert.InDelta(t, -sk.RightHand.X, sk.LeftHand.X, 1e-9)
	assert.InDelta(t, sk.RightHand.Y, sk.LeftHand.Y, 1e-9)
	assert.Less(t, sk.LeftHand.X, 0.0)
}

func TestBounceRaisesFigure(t *testing.T) {
	rest := Pose{X: 0, Y: 300, Scale: 0.5}.Skeleton()
	up := Pose{X: 0, Y: 300, Scale: 0.5, Bounce: 20}.Skeleton()
	assert.InDelta(t, rest.Hip.Y-10, up.Hip.Y, 1e-9)
	assert.InDelta(t, rest.Head.Y-10, up.Head.Y, 1e-9)
	assert.InDelta(t, headRadius*0.5, up.HeadRadius, 1e-9)
}

func TestSpinForeshortens(t *testing.T) {
	open := Pose{Scale: 1, ArmAngle: math.Pi / 2}.Skeleton()
	edge := Pose{Scale: 1, ArmAngle: math.Pi / 2, Rotation: math.Pi / 2}.Skeleton()
	assert.Less(t, math.Abs(edge.LeftHand.X), math.Abs(open.LeftHand.X))
	assert.Greater(t, math.Abs(edge.LeftHand.X), 0.0)
}

func TestStepLiftsOneFoot(t *testing.T) {
	sk := Pose{Scale: 1, StepHeight: 8, StepPhase: math.Pi / 2}.Skeleton()
	assert.InDelta(t, legLength-8, sk.LeftFoot.Y, 1e-9)
	assert.InDelta(t, legLength, sk.RightFoot.Y, 1e-9)
}

func TestTinyScaleIsClamped(t *testing.T) {
	sk := Pose{Scale: 0}.Skeleton()
	assert.GreaterOrEqual(t, sk.HeadRadius, MinParticleR)
}
