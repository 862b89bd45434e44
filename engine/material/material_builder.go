package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo/diffuse RGBA color of the material.
// An alpha below 1 does not by itself make the material blended; use WithAlphaMode.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithMetallic is an option builder that sets the metallic factor of the material.
// A non-zero factor enables constant specular unless a specular map is already set.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
		if metallic > 0 && m.features.Specular == SpecularNone {
			m.features.Specular = SpecularConstant
		}
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithDiffuseTexture is an option builder that marks the material as sampling a
// diffuse/albedo texture.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture option to a material
func WithDiffuseTexture() MaterialBuilderOption {
	return func(m *material) {
		m.features.Albedo = AlbedoTextured
	}
}

// WithNormalTexture is an option builder that marks the material as normal mapped.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the normal texture option to a material
func WithNormalTexture() MaterialBuilderOption {
	return func(m *material) {
		m.features.Normal = true
	}
}

// WithMetallicRoughnessTexture is an option builder that marks the material as
// sampling a metallic-roughness texture for its specular term.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic-roughness texture option to a material
func WithMetallicRoughnessTexture() MaterialBuilderOption {
	return func(m *material) {
		m.features.Specular = SpecularMapped
	}
}

// WithEmissive is an option builder that enables the emission term.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive option to a material
func WithEmissive() MaterialBuilderOption {
	return func(m *material) {
		m.features.Emissive = true
	}
}

// WithEnvironment is an option builder that enables environment-mapped reflections.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the environment option to a material
func WithEnvironment() MaterialBuilderOption {
	return func(m *material) {
		m.features.Environment = true
	}
}

// WithAlphaMode is an option builder that sets how the material treats alpha.
//
// Parameters:
//   - mode: the alpha mode (opaque, mask or blend)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the alpha mode option to a material
func WithAlphaMode(mode AlphaMode) MaterialBuilderOption {
	return func(m *material) {
		m.features.Alpha = mode
	}
}

// WithFeatures is an option builder that replaces the whole feature set at once.
//
// Parameters:
//   - features: the feature set
//
// Returns:
//   - MaterialBuilderOption: a function that applies the feature set to a material
func WithFeatures(features Features) MaterialBuilderOption {
	return func(m *material) {
		m.features = features
	}
}
