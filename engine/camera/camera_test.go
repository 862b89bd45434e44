package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, 0.1, c.Near(), 1e-6)
	assert.InDelta(t, 100, c.Far(), 1e-6)

	// The origin sits five units in front of the eye.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)
}

func TestCamerasHaveDistinctIDs(t *testing.T) {
	assert.NotEqual(t, NewCamera().ID(), NewCamera().ID())
}

func TestViewProjectionTracksSetters(t *testing.T) {
	c := NewCamera(WithPosition(0, 2, 10), WithAspect(16.0/9.0))
	before := c.ViewProjectionMatrix()

	c.SetTarget(1, 0, 0)
	assert.NotEqual(t, before, c.ViewProjectionMatrix())
	assert.True(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()).ApproxEqual(c.ViewProjectionMatrix()))
}

func TestInverseProjection(t *testing.T) {
	c := NewCamera(WithFov(mgl32.DegToRad(60)), WithNear(0.5), WithFar(50))
	id := c.ProjectionMatrix().Mul4(c.InverseProjectionMatrix())
	assert.True(t, id.ApproxEqualThreshold(mgl32.Ident4(), 1e-4))
}
