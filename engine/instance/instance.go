package instance

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/go-gl/mathgl/mgl32"
)

// instanceCount is an atomic counter used to hand out unique instance IDs.
var instanceCount atomic.Uint64

// Kind classifies an instance for batching and wrapper selection. The set is
// closed: every switch over Kind in this module is exhaustive.
type Kind int

const (
	// KindOpaque is a drawable that fully covers its pixels and may be freely reordered.
	KindOpaque Kind = iota

	// KindTranslucentRegular is a blended drawable receiving full diffuse and specular lighting.
	KindTranslucentRegular

	// KindTranslucentSpecularOnly is a blended drawable that only receives specular
	// highlights, such as glass.
	KindTranslucentSpecularOnly

	// KindTranslucentRefractive is a blended drawable that distorts what is behind it.
	// Refractive instances are never lit.
	KindTranslucentRefractive
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindTranslucentRegular:
		return "translucent-regular"
	case KindTranslucentSpecularOnly:
		return "translucent-specular-only"
	case KindTranslucentRefractive:
		return "translucent-refractive"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Opaque reports whether k is the opaque kind.
func (k Kind) Opaque() bool {
	return k == KindOpaque
}

// Translucent reports whether k is one of the translucent kinds.
func (k Kind) Translucent() bool {
	switch k {
	case KindTranslucentRegular, KindTranslucentSpecularOnly, KindTranslucentRefractive:
		return true
	default:
		return false
	}
}

// instanceImpl is the implementation of the Instance interface.
type instanceImpl struct {
	id        uint64
	name      string
	kind      Kind
	mat       material.Material
	transform mgl32.Mat4
}

// Instance defines a single drawable unit submitted to a frame.
//
// Instances are compared by identity: two instances with identical content are still
// distinct, and the visible set tracks each one separately. An instance is immutable
// once created, which lets a finalized frame snapshot reference it without copying.
type Instance interface {
	// ID returns the process-unique identifier of the instance. IDs are informational
	// (logging, debugging); identity is the interface value itself.
	//
	// Returns:
	//   - uint64: the instance ID
	ID() uint64

	// Name returns the instance's informational name.
	//
	// Returns:
	//   - string: the name, possibly empty
	Name() string

	// Kind returns the instance's classification.
	//
	// Returns:
	//   - Kind: the instance kind
	Kind() Kind

	// Material returns the material the instance is shaded with.
	//
	// Returns:
	//   - material.Material: the material, never nil
	Material() material.Material

	// Transform returns the instance's model-to-world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform (column-major)
	Transform() mgl32.Mat4
}

var _ Instance = &instanceImpl{}

// NewInstance creates a new Instance of the given kind shaded with mat.
//
// Panics if mat is nil.
//
// Parameters:
//   - kind: the classification of the instance
//   - mat: the material to shade the instance with (must not be nil)
//   - options: functional options to configure the instance
//
// Returns:
//   - Instance: the newly created instance
func NewInstance(kind Kind, mat material.Material, options ...InstanceBuilderOption) Instance {
	if mat == nil {
		panic("instance: NewInstance requires a non-nil Material")
	}
	inst := &instanceImpl{
		id:        instanceCount.Add(1),
		kind:      kind,
		mat:       mat,
		transform: mgl32.Ident4(),
	}
	for _, option := range options {
		option(inst)
	}
	return inst
}

// NewOpaque is shorthand for NewInstance(KindOpaque, mat, options...).
//
// Parameters:
//   - mat: the material to shade the instance with (must not be nil)
//   - options: functional options to configure the instance
//
// Returns:
//   - Instance: the newly created opaque instance
func NewOpaque(mat material.Material, options ...InstanceBuilderOption) Instance {
	return NewInstance(KindOpaque, mat, options...)
}

func (i *instanceImpl) ID() uint64 {
	return i.id
}

func (i *instanceImpl) Name() string {
	return i.name
}

func (i *instanceImpl) Kind() Kind {
	return i.kind
}

func (i *instanceImpl) Material() material.Material {
	return i.mat
}

func (i *instanceImpl) Transform() mgl32.Mat4 {
	return i.transform
}
