package scene

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj != nil {
				s.add(obj)
			}
		}
	}
}

// WithLights adds scene-wide lights.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithLightGroup defines a light group. A name that is already defined is ignored.
//
// Parameters:
//   - name: the unique group name
//   - lights: the lights shading the group
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightGroup(name string, lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		_ = s.addLightGroup(name, lights)
	}
}

// WithLogger sets the logger for traversal records. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
