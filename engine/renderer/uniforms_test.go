package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCarriesUniforms(t *testing.T) {
	f := newFrameFixture(t)
	batches, err := Plan(f.set)
	require.NoError(t, err)
	require.NotEmpty(t, batches)

	cam := f.set.Camera()
	frame := batches[0].Frame
	require.NotNil(t, frame)
	assert.Equal(t, cam.ViewProjectionMatrix(), frame.ViewProjection)
	assert.Equal(t, cam.InverseProjectionMatrix(), frame.InverseProjection)
	assert.Equal(t, cam.Position(), frame.CameraPosition)

	for _, b := range batches {
		assert.Same(t, frame, b.Frame, "batch %s", b.Key)
		require.Len(t, b.LightData, len(b.Lights), "batch %s", b.Key)
		for i, l := range b.Lights {
			assert.Equal(t, mgl32.Vec3(l.Color()), b.LightData[i].Color)
			assert.Equal(t, l.Intensity(), b.LightData[i].Intensity)
			assert.Equal(t, l.Range(), b.LightData[i].Range)
		}
		if b.Pass == pipeline.PassShadow {
			assert.Equal(t, ShadowViewProjection(b.Light, *frame), b.LightSpace)
			assert.NotEqual(t, mgl32.Ident4(), b.LightSpace)
		}
	}
}

func TestShadowViewProjection(t *testing.T) {
	cam := camera.NewCamera()
	cam.SetPosition(3, 2, 1)
	frame := NewFrameUniforms(cam)

	t.Run("directional centers on the camera", func(t *testing.T) {
		sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))
		clip := ShadowViewProjection(sun, frame).Mul4x1(frame.CameraPosition.Vec4(1))
		assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
		assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
	})

	t.Run("projective looks along its axis", func(t *testing.T) {
		torch := light.NewLight(light.LightTypeProjective,
			light.WithPosition(0, 5, 0),
			light.WithDirection(0, -1, 0),
			light.WithRange(20),
			light.WithProjectionCone(20, 30),
		)
		m := ShadowViewProjection(torch, frame)
		below := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.Greater(t, below.W(), float32(0))
		assert.InDelta(t, 0, below.X()/below.W(), 1e-4)
		assert.InDelta(t, 0, below.Y()/below.W(), 1e-4)
		above := m.Mul4x1(mgl32.Vec4{0, 10, 0, 1})
		assert.Less(t, above.W(), float32(0))
	})

	t.Run("other lights are identity", func(t *testing.T) {
		for _, typ := range []light.LightType{light.LightTypeAmbient, light.LightTypeSpherical} {
			assert.Equal(t, mgl32.Ident4(), ShadowViewProjection(light.NewLight(typ), frame), typ.String())
		}
	})
}

func TestNewFrameUniformsNilCamera(t *testing.T) {
	frame := NewFrameUniforms(nil)
	assert.Equal(t, mgl32.Ident4(), frame.ViewProjection)
	assert.Equal(t, mgl32.Ident4(), frame.InverseProjection)
	assert.Zero(t, frame.Far)
}
