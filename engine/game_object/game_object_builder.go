package game_object

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is submitted to frames. Objects are enabled by default.
//
// Parameters:
//   - enabled: true to submit the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are submitted
// to the next frame only and are not persisted in the scene's registry.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithLightGroup places the GameObject in the named light group.
//
// Parameters:
//   - name: the light group name; "" keeps the object unlit
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the light group
func WithLightGroup(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.lightGroup = name
	}
}

// WithCastsShadows sets whether the GameObject casts shadows.
//
// Parameters:
//   - casts: true to cast shadows
//
// Returns:
//   - GameObjectBuilderOption: functional option to set shadow casting
func WithCastsShadows(casts bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.castsShadows = casts
	}
}

// WithShadowOnly makes the GameObject an invisible shadow caster.
//
// Parameters:
//   - shadowOnly: true to only render the object into shadow maps
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the shadow-only flag
func WithShadowOnly(shadowOnly bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.shadowOnly = shadowOnly
	}
}

// WithLight attaches a Light to the GameObject. When added to a scene, the light
// joins the object's light group, or the scene's lights when the object is unlit.
//
// Parameters:
//   - l: the Light to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the attached light
func WithLight(l light.Light) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.attachedLight = l
	}
}
