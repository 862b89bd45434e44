package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
)

type gameObject struct {
	id            uint64
	enabled       atomic.Bool
	ephemeral     bool
	inst          instance.Instance
	lightGroup    string
	castsShadows  bool
	shadowOnly    bool
	attachedLight light.Light
}

// GameObject defines the interface for a scene entity that contributes one instance
// to every frame it is enabled in. The object decides how the instance is fed into
// the visible set: which light group shades it, whether it casts shadows and whether
// it is drawn at all or only rendered into shadow maps.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is submitted to frames.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are submitted to the next frame only and are not persisted
	// in the scene's registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Instance returns the drawable instance of the object.
	//
	// Returns:
	//   - instance.Instance: the instance, never nil
	Instance() instance.Instance

	// LightGroup returns the name of the light group that shades the object.
	// The empty name means the object is drawn unlit.
	//
	// Returns:
	//   - string: the light group name
	LightGroup() string

	// CastsShadows returns whether the object is rendered into the shadow maps of
	// the shadow-casting lights that reach it.
	//
	// Returns:
	//   - bool: true if the object casts shadows
	CastsShadows() bool

	// ShadowOnly returns whether the object only casts shadows and is never drawn.
	// A shadow-only object always casts shadows.
	//
	// Returns:
	//   - bool: true if the object is shadow-only
	ShadowOnly() bool

	// Light returns the Light attached to this object, or nil if none is set.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	Light() light.Light

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is submitted to frames.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetInstance replaces the object's instance.
	//
	// Panics if inst is nil.
	//
	// Parameters:
	//   - inst: the new instance
	SetInstance(inst instance.Instance)

	// SetLightGroup moves the object to another light group; "" makes it unlit.
	//
	// Parameters:
	//   - name: the light group name
	SetLightGroup(name string)

	// SetCastsShadows sets whether the object casts shadows.
	//
	// Parameters:
	//   - casts: true to cast shadows
	SetCastsShadows(casts bool)

	// SetShadowOnly sets whether the object only casts shadows.
	//
	// Parameters:
	//   - shadowOnly: true to skip drawing the object
	SetShadowOnly(shadowOnly bool)

	// SetLight attaches a Light to this object. When the object is added to a
	// scene, the light joins the object's light group, or the scene's lights
	// when the object is unlit. Pass nil to detach.
	//
	// Parameters:
	//   - l: the Light to attach, or nil to detach
	SetLight(l light.Light)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject wrapping inst.
//
// Panics if inst is nil.
//
// Parameters:
//   - inst: the instance the object contributes to frames
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(inst instance.Instance, options ...GameObjectBuilderOption) GameObject {
	if inst == nil {
		panic("game_object: NewGameObject requires a non-nil Instance")
	}
	obj := &gameObject{inst: inst}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Instance() instance.Instance {
	return g.inst
}

func (g *gameObject) LightGroup() string {
	return g.lightGroup
}

func (g *gameObject) CastsShadows() bool {
	return g.castsShadows || g.shadowOnly
}

func (g *gameObject) ShadowOnly() bool {
	return g.shadowOnly
}

func (g *gameObject) Light() light.Light {
	return g.attachedLight
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetInstance(inst instance.Instance) {
	if inst == nil {
		panic("game_object: SetInstance requires a non-nil Instance")
	}
	g.inst = inst
}

func (g *gameObject) SetLightGroup(name string) {
	g.lightGroup = name
}

func (g *gameObject) SetCastsShadows(casts bool) {
	g.castsShadows = casts
}

func (g *gameObject) SetShadowOnly(shadowOnly bool) {
	g.shadowOnly = shadowOnly
}

func (g *gameObject) SetLight(l light.Light) {
	g.attachedLight = l
}
