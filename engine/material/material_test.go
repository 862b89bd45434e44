package material

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignatureInterns(t *testing.T) {
	a := NewSignature("M1")
	b := NewSignature("M" + "1")
	c := NewSignature("M2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "M1", a.String())
	assert.False(t, a.IsZero())
}

func TestZeroSignature(t *testing.T) {
	var s Signature
	assert.True(t, s.IsZero())
	assert.Equal(t, "", s.String())
}

func TestCompareSignatures(t *testing.T) {
	sigs := []Signature{NewSignature("c"), NewSignature("a"), NewSignature("b")}
	slices.SortFunc(sigs, CompareSignatures)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sigs[0].String(), sigs[1].String(), sigs[2].String()})
}

func TestFeaturesCode(t *testing.T) {
	tests := []struct {
		name  string
		f     Features
		code  string
		depth string
	}{
		{"plain", Features{}, "BC", "DC"},
		{"textured normal", Features{Albedo: AlbedoTextured, Normal: true}, "BT_N", "DC"},
		{"all", Features{
			Albedo:      AlbedoTextured,
			Normal:      true,
			Specular:    SpecularMapped,
			Emissive:    true,
			Environment: true,
			Alpha:       AlphaBlend,
		}, "BT_N_SM_E_EV_AB", "DC"},
		{"mask", Features{Alpha: AlphaMask}, "BC_AM", "DM"},
		{"textured mask", Features{Albedo: AlbedoTextured, Alpha: AlphaMask}, "BT_AM", "DMT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.f.Code())
			assert.Equal(t, tt.depth, tt.f.DepthCode())
		})
	}
}

func TestNewMaterial(t *testing.T) {
	m := NewMaterial(
		WithName("brick"),
		WithDiffuseTexture(),
		WithNormalTexture(),
		WithMetallic(0.5),
		WithRoughness(0.25),
	)
	require.NotNil(t, m)

	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(0.5), m.Metallic())
	assert.Equal(t, float32(0.25), m.Roughness())
	assert.Equal(t, "BT_N_SC", m.Signature().String())
	assert.Equal(t, "DC", m.DepthSignature().String())
}

func TestEquivalentMaterialsShareSignature(t *testing.T) {
	a := NewMaterial(WithName("a"), WithDiffuseTexture(), WithAlphaMode(AlphaMask))
	b := NewMaterial(WithName("b"), WithFeatures(Features{Albedo: AlbedoTextured, Alpha: AlphaMask}))

	assert.Equal(t, a.Signature(), b.Signature())
	assert.Equal(t, a.DepthSignature(), b.DepthSignature())
	assert.Equal(t, "DMT", a.DepthSignature().String())
}

func TestMetallicKeepsSpecularMap(t *testing.T) {
	m := NewMaterial(WithMetallicRoughnessTexture(), WithMetallic(1))
	assert.Equal(t, SpecularMapped, m.Features().Specular)
}
