package material

import (
	"strings"
	"unique"
)

// Signature is an interned batching key summarizing which shading features a
// material needs. Two materials with the same feature set share a Signature, and
// comparing Signatures is a pointer comparison. The zero Signature is valid and
// renders as the empty code.
type Signature struct {
	h unique.Handle[string]
}

// NewSignature interns the given code and returns its Signature.
//
// Parameters:
//   - code: the signature code, e.g. "BT_N_SM"
//
// Returns:
//   - Signature: the interned signature
func NewSignature(code string) Signature {
	return Signature{h: unique.Make(code)}
}

// String returns the code the Signature was interned from.
func (s Signature) String() string {
	if s == (Signature{}) {
		return ""
	}
	return s.h.Value()
}

// IsZero reports whether s is the zero Signature.
func (s Signature) IsZero() bool {
	return s == (Signature{})
}

// CompareSignatures orders signatures by code. It is meant for slices.SortFunc.
func CompareSignatures(a, b Signature) int {
	return strings.Compare(a.String(), b.String())
}

// AlbedoMode describes where a material takes its base color from.
type AlbedoMode int

const (
	// AlbedoColor uses the constant base color only.
	AlbedoColor AlbedoMode = iota

	// AlbedoTextured samples a diffuse texture modulated by the base color.
	AlbedoTextured
)

// SpecularMode describes how a material computes specular reflection.
type SpecularMode int

const (
	// SpecularNone disables specular highlights.
	SpecularNone SpecularMode = iota

	// SpecularConstant uses the metallic/roughness factors.
	SpecularConstant

	// SpecularMapped samples a metallic-roughness texture.
	SpecularMapped
)

// AlphaMode describes how a material treats its alpha channel.
type AlphaMode int

const (
	// AlphaOpaque ignores alpha entirely.
	AlphaOpaque AlphaMode = iota

	// AlphaMask discards fragments below the alpha cutoff.
	AlphaMask

	// AlphaBlend blends the fragment with the framebuffer.
	AlphaBlend
)

// Features is the comparable set of shader features a material requires. It is the
// input to signature computation; two equal Features always produce the same
// Signature.
type Features struct {
	Albedo      AlbedoMode
	Normal      bool
	Specular    SpecularMode
	Emissive    bool
	Environment bool
	Alpha       AlphaMode
}

// Code renders the forward-shading code for f. Segments are joined with '_':
// albedo (BC|BT), then optional N (normal map), SC|SM (specular), E (emission),
// EV (environment) and AM|AB (alpha).
func (f Features) Code() string {
	parts := make([]string, 0, 6)
	switch f.Albedo {
	case AlbedoTextured:
		parts = append(parts, "BT")
	default:
		parts = append(parts, "BC")
	}
	if f.Normal {
		parts = append(parts, "N")
	}
	switch f.Specular {
	case SpecularConstant:
		parts = append(parts, "SC")
	case SpecularMapped:
		parts = append(parts, "SM")
	}
	if f.Emissive {
		parts = append(parts, "E")
	}
	if f.Environment {
		parts = append(parts, "EV")
	}
	switch f.Alpha {
	case AlphaMask:
		parts = append(parts, "AM")
	case AlphaBlend:
		parts = append(parts, "AB")
	}
	return strings.Join(parts, "_")
}

// DepthCode renders the depth-only code for f. Only alpha masking changes how depth
// is written, and a textured mask additionally needs the albedo texture bound.
func (f Features) DepthCode() string {
	if f.Alpha != AlphaMask {
		return "DC"
	}
	if f.Albedo == AlbedoTextured {
		return "DMT"
	}
	return "DM"
}
