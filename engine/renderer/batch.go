package renderer

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"github.com/go-gl/mathgl/mgl32"
)

// Batch is one draw configuration of a frame: a set of instances that share a pass,
// a material signature and a lighting context, drawn with a single pipeline.
type Batch struct {
	// Pass is the render pass the batch is drawn in.
	Pass pipeline.Pass
	// Key is the pipeline key "<pass>/<signature>".
	Key string
	// Signature is the material signature shared by every instance.
	Signature material.Signature
	// Group names the light group for PassLightGroup batches.
	Group string
	// Light is the shadow light for PassShadow batches.
	Light light.Light
	// Lights holds the lights shading the batch in PassLightGroup and PassTranslucentLit.
	Lights []light.Light
	// LightData mirrors Lights as uploadable shading parameters.
	LightData []LightUniform
	// LightSpace is the light view-projection of a PassShadow batch.
	LightSpace mgl32.Mat4
	// Frame holds the camera matrices, shared by every batch of the frame.
	Frame *FrameUniforms
	// Translucent is the entry kind for translucent passes.
	Translucent visible.TranslucentKind
	// Instances are drawn in order.
	Instances []instance.Instance
	// Pipeline is the fixed-function state; set by Renderer.Plan, nil from Plan.
	Pipeline pipeline.Pipeline
}

// Plan flattens a visible set into draw batches in frame order:
//   - shadow batches per shadow light in registration order, then per depth signature
//   - unlit opaque batches per signature
//   - light group batches per group in creation order, then per signature
//   - translucent batches in exact submission order
//
// Every batch shares one FrameUniforms snapshot of the set's camera. Shadow batches
// carry their light-space matrix and lit batches the uniforms of their lights.
//
// Opaque batches follow the first-use order of their signatures, so planning the
// same set twice yields the same result. Translucent entries are only merged when
// they are adjacent and share kind, signature and lights, which keeps paint order.
//
// Parameters:
//   - set: the finalized visible set
//
// Returns:
//   - []Batch: the planned batches without pipelines attached
//   - error: a lookup error if the set is inconsistent
func Plan(set visible.VisibleSet) ([]Batch, error) {
	var out []Batch
	frame := NewFrameUniforms(set.Camera())

	shadows := set.Shadows()
	for _, l := range shadows.Lights() {
		lightSpace := ShadowViewProjection(l, frame)
		sigs, err := shadows.MaterialSignaturesFor(l)
		if err != nil {
			return nil, fmt.Errorf("renderer: plan shadows: %w", err)
		}
		for _, sig := range sigs {
			insts, err := shadows.InstancesFor(l, sig)
			if err != nil {
				return nil, fmt.Errorf("renderer: plan shadows: %w", err)
			}
			out = append(out, Batch{
				Pass:       pipeline.PassShadow,
				Key:        pipeline.Key(pipeline.PassShadow, sig.String()),
				Signature:  sig,
				Light:      l,
				LightSpace: lightSpace,
				Instances:  insts,
				Frame:      &frame,
			})
		}
	}

	opaques := set.Opaques()
	for _, sig := range opaques.UnlitSignatures() {
		insts, err := opaques.InstancesForUnlit(sig)
		if err != nil {
			return nil, fmt.Errorf("renderer: plan unlit: %w", err)
		}
		out = append(out, Batch{
			Pass:      pipeline.PassOpaqueUnlit,
			Key:       pipeline.Key(pipeline.PassOpaqueUnlit, sig.String()),
			Signature: sig,
			Instances: insts,
			Frame:     &frame,
		})
	}

	for _, name := range opaques.GroupNames() {
		group, err := opaques.Group(name)
		if err != nil {
			return nil, fmt.Errorf("renderer: plan light group: %w", err)
		}
		lights := group.Lights()
		data := lightUniforms(lights)
		for _, sig := range group.MaterialSignatures() {
			insts, err := group.InstancesFor(sig)
			if err != nil {
				return nil, fmt.Errorf("renderer: plan light group %q: %w", name, err)
			}
			out = append(out, Batch{
				Pass:      pipeline.PassLightGroup,
				Key:       pipeline.Key(pipeline.PassLightGroup, sig.String()),
				Signature: sig,
				Group:     name,
				Lights:    lights,
				LightData: data,
				Instances: insts,
				Frame:     &frame,
			})
		}
	}

	last := -1
	for _, entry := range set.Translucents().Instances() {
		pass := pipeline.PassTranslucentUnlit
		if entry.Lit() {
			pass = pipeline.PassTranslucentLit
		}
		lights := entry.Lights()
		if last >= 0 {
			prev := &out[last]
			if prev.Translucent == entry.Kind() && prev.Signature == entry.Signature() && slices.Equal(prev.Lights, lights) {
				prev.Instances = append(prev.Instances, entry.Instance())
				continue
			}
		}
		out = append(out, Batch{
			Pass:        pass,
			Key:         pipeline.Key(pass, entry.Signature().String()),
			Signature:   entry.Signature(),
			Lights:      lights,
			LightData:   lightUniforms(lights),
			Translucent: entry.Kind(),
			Instances:   []instance.Instance{entry.Instance()},
			Frame:       &frame,
		})
		last = len(out) - 1
	}

	return out, nil
}

// ByPass splits batches by pass, keeping their relative order.
//
// Parameters:
//   - batches: planned batches
//
// Returns:
//   - map[pipeline.Pass][]Batch: batches keyed by pass
func ByPass(batches []Batch) map[pipeline.Pass][]Batch {
	out := make(map[pipeline.Pass][]Batch, len(pipeline.Passes))
	for _, b := range batches {
		out[b.Pass] = append(out[b.Pass], b)
	}
	return out
}
