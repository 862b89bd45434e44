package light

import "fmt"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient represents a constant, directionless contribution applied
	// uniformly to every lit fragment. Ambient lights never cast shadows.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional

	// LightTypeProjective represents a light projected from a position along a
	// direction through a frustum, like a flashlight or a projector. Attenuates with
	// distance and angle from the axis, controlled by inner and outer cone angles.
	LightTypeProjective

	// LightTypeSpherical represents a light that emits in all directions from a position.
	// Used for bare bulbs, lanterns and candle flames. Attenuates with distance up to
	// a configurable range. Spherical lights never cast shadows.
	LightTypeSpherical
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypeProjective:
		return "projective"
	case LightTypeSpherical:
		return "spherical"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// SupportsShadows reports whether lights of this type can be given a shadow map.
func (t LightType) SupportsShadows() bool {
	return t == LightTypeDirectional || t == LightTypeProjective
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	name                string
	lightType           LightType
	position            [3]float32
	direction           [3]float32
	color               [3]float32
	intensity           float32
	lightRange          float32
	innerCone           float32 // stored as cos(angle in radians)
	outerCone           float32 // stored as cos(angle in radians)
	enabled             bool
	castsShadows        bool
	affectsTranslucency bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are compared by identity: two lights with identical parameters are still
// distinct lights, and each one is batched, grouped and shadowed on its own. All
// light types share this interface; type-specific properties (e.g. cone angles for
// projective lights) return zero values when not applicable.
type Light interface {
	// Name returns the light's identifier. Names are informational only and need not be unique.
	//
	// Returns:
	//   - string: the light name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (ambient, directional, projective or spherical)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for ambient and directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light.
	// For directional lights this is the light direction. For projective lights this
	// is the projection axis. Meaningless for ambient and spherical lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for projective and spherical lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for projective lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for projective lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light needs a shadow map. Always false for
	// light types that do not support shadows, regardless of configuration.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// AffectsTranslucency returns whether this light contributes to lit translucent
	// instances. Lights that do not are dropped from a translucent's light set.
	//
	// Returns:
	//   - bool: true if translucent surfaces receive this light
	AffectsTranslucency() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:           lightType,
		position:            [3]float32{0, 0, 0},
		direction:           [3]float32{0, -1, 0},
		color:               [3]float32{1, 1, 1},
		intensity:           1.0,
		lightRange:          10.0,
		innerCone:           0.9063, // cos(25°)
		outerCone:           0.8192, // cos(35°)
		enabled:             true,
		castsShadows:        false,
		affectsTranslucency: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows && l.lightType.SupportsShadows()
}

func (l *lightImpl) AffectsTranslucency() bool {
	return l.affectsTranslucency
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
