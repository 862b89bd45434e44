package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "light-group/BT_N", Key(PassLightGroup, "BT_N"))
	assert.Equal(t, "shadow/DC", Key(PassShadow, "DC"))
	assert.Equal(t, "Pass(9)", Pass(9).String())
}

func TestShadowPipelineIsDepthOnly(t *testing.T) {
	p := NewPipeline(Key(PassShadow, "DC"), PassShadow)

	assert.Equal(t, PassShadow, p.Pass())
	assert.False(t, p.HasColorTarget())
	assert.Equal(t, wgpu.CullModeFront, p.CullMode())
	assert.Equal(t, light.DefaultShadowDepthBias, p.DepthBias())
	assert.Equal(t, light.DefaultShadowSlopeScale, p.DepthBiasSlopeScale())

	_, ok := p.ColorTargetState(wgpu.TextureFormatRGBA8UnormSrgb)
	assert.False(t, ok)

	ds := p.DepthStencilState(wgpu.TextureFormatDepth32Float)
	assert.True(t, ds.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, ds.DepthCompare)
	assert.Equal(t, light.DefaultShadowDepthBias, ds.DepthBias)
}

func TestLightGroupPipelineIsAdditive(t *testing.T) {
	p := NewPipeline(Key(PassLightGroup, "BC"), PassLightGroup)

	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())

	target, ok := p.ColorTargetState(wgpu.TextureFormatRGBA8UnormSrgb)
	require.True(t, ok)
	require.NotNil(t, target.Blend)
	assert.Equal(t, wgpu.BlendFactorOne, target.Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, target.Blend.Color.DstFactor)
}

func TestTranslucentPipelines(t *testing.T) {
	for _, pass := range []Pass{PassTranslucentUnlit, PassTranslucentLit} {
		p := NewPipeline(Key(pass, "BC_AB"), pass)
		assert.True(t, pass.Translucent(), pass.String())
		assert.True(t, p.BlendEnabled(), pass.String())
		assert.False(t, p.DepthWriteEnabled(), pass.String())
		assert.Equal(t, wgpu.CullModeNone, p.PrimitiveState().CullMode, pass.String())
		assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor, pass.String())
	}
}

func TestOpaqueUnlitHasNoBlend(t *testing.T) {
	p := NewPipeline(Key(PassOpaqueUnlit, "BC"), PassOpaqueUnlit)

	target, ok := p.ColorTargetState(wgpu.TextureFormatRGBA8UnormSrgb)
	require.True(t, ok)
	assert.Nil(t, target.Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, target.WriteMask)
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
}

func TestOptionsOverridePassDefaults(t *testing.T) {
	p := NewPipeline("custom", PassShadow,
		WithDepthBias(4, 2.5),
		WithCullMode(wgpu.CullModeNone),
		WithDepthTestEnabled(false),
	)

	assert.Equal(t, int32(4), p.DepthBias())
	assert.Equal(t, float32(2.5), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.CompareFunctionAlways, p.DepthStencilState(wgpu.TextureFormatDepth32Float).DepthCompare)
}
