package instance

import "github.com/go-gl/mathgl/mgl32"

// InstanceBuilderOption is a functional option for configuring an Instance during construction.
type InstanceBuilderOption func(*instanceImpl)

// WithName sets the informational name of the Instance.
//
// Parameters:
//   - name: the instance name
//
// Returns:
//   - InstanceBuilderOption: functional option to set the name
func WithName(name string) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.name = name
	}
}

// WithTransform sets the model-to-world matrix of the Instance.
//
// Parameters:
//   - m: the world transform (column-major)
//
// Returns:
//   - InstanceBuilderOption: functional option to set the transform
func WithTransform(m mgl32.Mat4) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.transform = m
	}
}

// WithTranslation sets the world transform to a pure translation.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - InstanceBuilderOption: functional option to set the transform
func WithTranslation(x, y, z float32) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.transform = mgl32.Translate3D(x, y, z)
	}
}
