package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Pass identifies which render pass of the deferred frame a pipeline belongs to.
type Pass int

const (
	// PassShadow renders shadow casters into a light's depth map. Depth only.
	PassShadow Pass = iota

	// PassOpaqueUnlit draws opaque instances that receive no lighting.
	PassOpaqueUnlit

	// PassLightGroup draws the opaque instances of one light group. Each group is
	// accumulated additively on top of the previous ones.
	PassLightGroup

	// PassTranslucentUnlit blends translucent instances without lighting.
	PassTranslucentUnlit

	// PassTranslucentLit blends lit translucent instances.
	PassTranslucentLit
)

// Passes lists every pass in frame order.
var Passes = []Pass{PassShadow, PassOpaqueUnlit, PassLightGroup, PassTranslucentUnlit, PassTranslucentLit}

// String returns the name used as the prefix of pipeline keys.
func (p Pass) String() string {
	switch p {
	case PassShadow:
		return "shadow"
	case PassOpaqueUnlit:
		return "opaque-unlit"
	case PassLightGroup:
		return "light-group"
	case PassTranslucentUnlit:
		return "translucent-unlit"
	case PassTranslucentLit:
		return "translucent-lit"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// Translucent reports whether the pass blends over the opaque result.
func (p Pass) Translucent() bool {
	return p == PassTranslucentUnlit || p == PassTranslucentLit
}

// Key builds the pipeline key for a pass and a material signature code.
//
// Parameters:
//   - pass: the render pass
//   - code: the material signature code
//
// Returns:
//   - string: the key "<pass>/<code>"
func Key(pass Pass, code string) string {
	return pass.String() + "/" + code
}

// pipeline is the implementation of the Pipeline interface.
// It holds the fixed-function state used to create the GPU pipeline for one pass and
// one material signature.
type pipeline struct {
	// pass is the render pass this pipeline draws in
	pass Pass
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// The following properties configure the pipeline and can be toggled/set with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline defines the interface for the fixed-function state of a render pipeline:
// depth, blend, cull and topology settings. The state can be turned into the wgpu
// descriptor pieces a backend needs to create the GPU object.
type Pipeline interface {
	// Pass returns the render pass the pipeline belongs to.
	//
	// Returns:
	//   - Pass: the render pass
	Pass() Pass

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison used when depth testing is enabled.
	//
	// Returns:
	//   - wgpu.CompareFunction: the comparison function
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline (e.g., wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline (e.g., wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline
	BlendState() *wgpu.BlendState

	// HasColorTarget reports whether the pipeline writes color. Shadow pipelines are depth only.
	//
	// Returns:
	//   - bool: false for depth-only pipelines
	HasColorTarget() bool

	// PrimitiveState returns the primitive assembly state for pipeline creation.
	//
	// Returns:
	//   - wgpu.PrimitiveState: topology, winding and culling
	PrimitiveState() wgpu.PrimitiveState

	// DepthStencilState returns the depth state for pipeline creation.
	//
	// Parameters:
	//   - format: the depth attachment format
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth state
	DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState

	// ColorTargetState returns the color target for pipeline creation. The blend state is
	// attached only when blending is enabled.
	//
	// Parameters:
	//   - format: the color attachment format
	//
	// Returns:
	//   - wgpu.ColorTargetState: the color target
	//   - bool: false for depth-only pipelines
	ColorTargetState(format wgpu.TextureFormat) (wgpu.ColorTargetState, bool)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. The pass defaults are
// applied first and opts may override any of them.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pass: the render pass the pipeline draws in
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified pass and configuration
func NewPipeline(pipelineKey string, pass Pass, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pass:              pass,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        AlphaBlend(),
	}
	for _, opt := range PassDefaults(pass) {
		opt(p)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AlphaBlend returns straight alpha blending: src*a + dst*(1-a).
func AlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// AdditiveBlend returns src + dst blending used to accumulate light groups.
func AdditiveBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (p *pipeline) Pass() Pass {
	return p.pass
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) HasColorTarget() bool {
	return p.pass != PassShadow
}

func (p *pipeline) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  p.topology,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	depthCompare := p.depthCompare
	if !p.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (p *pipeline) ColorTargetState(format wgpu.TextureFormat) (wgpu.ColorTargetState, bool) {
	if !p.HasColorTarget() {
		return wgpu.ColorTargetState{}, false
	}
	state := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.writeMask,
	}
	if p.blendEnabled {
		state.Blend = p.blendState
	}
	return state, true
}
