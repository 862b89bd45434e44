package material

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor [4]float32
	metallic  float32
	roughness float32
	features  Features

	// Signatures are computed once in NewMaterial; a material is immutable
	// afterwards so they never go stale.
	signature      Signature
	depthSignature Signature
}

// Material defines the interface for a render material, encapsulating surface
// properties and the batching signatures derived from them.
//
// Surface properties are fixed at construction. The forward and depth signatures
// are computed once from the material's Features and interned, so instances sharing
// a material (or an equivalent one) land in the same draw batch.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Features retrieves the shader feature set the material requires.
	//
	// Returns:
	//   - Features: the feature set
	Features() Features

	// Signature retrieves the forward-shading batching key of the material.
	//
	// Returns:
	//   - Signature: the interned forward signature
	Signature() Signature

	// DepthSignature retrieves the depth-only batching key of the material, used
	// when the material is rendered into a shadow map.
	//
	// Returns:
	//   - Signature: the interned depth signature
	DepthSignature() Signature
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	m.signature = NewSignature(m.features.Code())
	m.depthSignature = NewSignature(m.features.DepthCode())
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Features() Features {
	return m.features
}

func (m *material) Signature() Signature {
	return m.signature
}

func (m *material) DepthSignature() Signature {
	return m.depthSignature
}
