package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameUniforms holds the per-frame camera data shared by every batch of a frame.
type FrameUniforms struct {
	View              mgl32.Mat4
	Projection        mgl32.Mat4
	ViewProjection    mgl32.Mat4
	InverseProjection mgl32.Mat4
	CameraPosition    mgl32.Vec3
	Near, Far         float32
}

// LightUniform is the shading data of one light as a pass handler uploads it.
type LightUniform struct {
	Type      light.LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
	InnerCone float32
	OuterCone float32
}

// NewFrameUniforms snapshots the matrices of cam. A nil camera yields identity matrices.
//
// Parameters:
//   - cam: the frame camera
//
// Returns:
//   - FrameUniforms: the camera data for the frame
func NewFrameUniforms(cam camera.Camera) FrameUniforms {
	if cam == nil {
		id := mgl32.Ident4()
		return FrameUniforms{View: id, Projection: id, ViewProjection: id, InverseProjection: id}
	}
	return FrameUniforms{
		View:              cam.ViewMatrix(),
		Projection:        cam.ProjectionMatrix(),
		ViewProjection:    cam.ViewProjectionMatrix(),
		InverseProjection: cam.InverseProjectionMatrix(),
		CameraPosition:    cam.Position(),
		Near:              cam.Near(),
		Far:               cam.Far(),
	}
}

// NewLightUniform copies the shading parameters of l.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - LightUniform: the light data
func NewLightUniform(l light.Light) LightUniform {
	return LightUniform{
		Type:      l.Type(),
		Position:  mgl32.Vec3(l.Position()),
		Direction: mgl32.Vec3(l.Direction()),
		Color:     mgl32.Vec3(l.Color()),
		Intensity: l.Intensity(),
		Range:     l.Range(),
		InnerCone: l.InnerCone(),
		OuterCone: l.OuterCone(),
	}
}

func lightUniforms(lights []light.Light) []LightUniform {
	if len(lights) == 0 {
		return nil
	}
	out := make([]LightUniform, len(lights))
	for i, l := range lights {
		out[i] = NewLightUniform(l)
	}
	return out
}

// ShadowViewProjection returns the light-space matrix a shadow batch renders with.
//
// Directional lights get an orthographic box of half-size frame.Far/2 centered on the
// camera position and looking along the light direction. Projective lights get a
// perspective frustum spanning their outer cone out to their range, or frame.Far when
// the range is unset. Other light types never cast shadows and yield identity.
//
// Parameters:
//   - l: the shadow light
//   - frame: the frame camera data
//
// Returns:
//   - mgl32.Mat4: the light view-projection matrix
func ShadowViewProjection(l light.Light, frame FrameUniforms) mgl32.Mat4 {
	dir := mgl32.Vec3(l.Direction())
	if dir.Len() == 0 {
		return mgl32.Ident4()
	}
	dir = dir.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	far := frame.Far
	if far <= 0 {
		far = 100
	}

	switch l.Type() {
	case light.LightTypeDirectional:
		half := far / 2
		center := frame.CameraPosition
		eye := center.Sub(dir.Mul(half))
		view := mgl32.LookAtV(eye, center, up)
		return mgl32.Ortho(-half, half, -half, half, 0, far).Mul4(view)
	case light.LightTypeProjective:
		reach := l.Range()
		if reach <= 0 {
			reach = far
		}
		pos := mgl32.Vec3(l.Position())
		view := mgl32.LookAtV(pos, pos.Add(dir), up)
		cone := float32(math.Acos(float64(l.OuterCone())))
		fovy := 2 * cone
		if fovy <= 0 || fovy >= math.Pi {
			fovy = math.Pi / 2
		}
		return mgl32.Perspective(fovy, 1, 0.1, reach).Mul4(view)
	default:
		return mgl32.Ident4()
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
