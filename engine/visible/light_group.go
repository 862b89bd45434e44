package visible

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"go.uber.org/zap"
)

// LightGroupAssembler accumulates one named group of lights together with the
// opaque instances they illuminate. It is created by OpaquesAssembler.NewLightGroup
// and shares that assembler's visibility context and shadow registry.
type LightGroupAssembler struct {
	builderState
	opts       *assemblerOptions
	name       string
	lights     []light.Light
	lightSet   map[light.Light]struct{}
	batches    *batches
	visibility *visibilityContext
	shadows    *ShadowsAssembler

	// result and err hold the outcome of Finalize so the owning opaque set can
	// collect groups the caller already finalized.
	result LightGroup
	err    error
}

func newLightGroupAssembler(opts *assemblerOptions, name string, visibility *visibilityContext, shadows *ShadowsAssembler) *LightGroupAssembler {
	return &LightGroupAssembler{
		opts:       opts,
		name:       name,
		lightSet:   make(map[light.Light]struct{}),
		batches:    newBatches(),
		visibility: visibility,
		shadows:    shadows,
	}
}

// Name returns the group name.
func (g *LightGroupAssembler) Name() string {
	return g.name
}

// AddLight adds l to the group. Adding the same light twice is a no-op. Lights that
// cast shadows are also registered with the shared shadow registry so they receive
// a shadow map even without casters.
//
// Parameters:
//   - l: the light to add
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize
func (g *LightGroupAssembler) AddLight(l light.Light) error {
	const op = "LightGroup.AddLight"
	if err := g.check(op); err != nil {
		return g.opts.reject(err)
	}
	if l == nil {
		panic("visible: LightGroup.AddLight requires a non-nil Light")
	}
	if _, ok := g.lightSet[l]; ok {
		return nil
	}
	if l.CastsShadows() {
		if err := g.shadows.AddLight(l); err != nil {
			return err
		}
	}
	g.lightSet[l] = struct{}{}
	g.lights = append(g.lights, l)
	return nil
}

// AddInstance adds an opaque instance lit by this group's lights.
//
// Parameters:
//   - inst: the opaque instance
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for a
//     translucent instance, ErrInstanceAlreadyVisible if inst was already added to
//     the unlit batch or any group of the same opaque set
func (g *LightGroupAssembler) AddInstance(inst instance.Instance) error {
	const op = "LightGroup.AddInstance"
	if err := g.check(op); err != nil {
		return g.opts.reject(err)
	}
	if inst == nil {
		panic("visible: LightGroup.AddInstance requires a non-nil Instance")
	}
	if !inst.Kind().Opaque() {
		return g.opts.reject(newError(KindInstanceKindMismatch, op, "instance %d is %s", inst.ID(), inst.Kind()))
	}
	if err := g.visibility.claim(op, inst); err != nil {
		return g.opts.reject(err)
	}
	g.batches.add(g.opts.signature(inst), inst)
	return nil
}

// Finalize validates the group and freezes it into a LightGroup. The assembler is
// finalized even when validation fails.
//
// Returns:
//   - LightGroup: the immutable group
//   - error: ErrBuilderInvalid when called twice, ErrLightGroupLacksLights or
//     ErrLightGroupLacksInstances when validation fails
func (g *LightGroupAssembler) Finalize() (LightGroup, error) {
	const op = "LightGroup.Finalize"
	if err := g.finish(op); err != nil {
		return nil, g.opts.reject(err)
	}
	g.result, g.err = g.build(op)
	return g.result, g.err
}

// outcome returns the group's finalized result, finalizing it first if still open.
func (g *LightGroupAssembler) outcome() (LightGroup, error) {
	if !g.finalized {
		return g.Finalize()
	}
	return g.result, g.err
}

func (g *LightGroupAssembler) build(op string) (LightGroup, error) {
	if len(g.lights) == 0 {
		return nil, g.opts.reject(newError(KindLightGroupLacksLights, op, "%q", g.name))
	}
	count := g.batches.count()
	if count == 0 && g.opts.policy == LightGroupPolicyStrict {
		return nil, g.opts.reject(newError(KindLightGroupLacksInstances, op, "%q", g.name))
	}
	out := &lightGroupImpl{
		name:    g.name,
		lights:  slices.Clone(g.lights),
		batches: g.batches.freeze(),
	}
	g.opts.logger.Debug("light group finalized",
		zap.Stringer("frame", g.opts.frameID),
		zap.String("group", g.name),
		zap.Int("lights", len(out.lights)),
		zap.Int("signatures", len(out.batches.order)),
		zap.Int("instances", count),
	)
	return out, nil
}

// LightGroup is a finalized, named bundle of lights and the opaque instances they
// illuminate, bucketed by material signature.
type LightGroup interface {
	// Name returns the group name.
	//
	// Returns:
	//   - string: the name given to NewLightGroup
	Name() string

	// Lights returns the group's lights in the order they were added.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// MaterialSignatures returns every signature with at least one instance, in
	// first-use order.
	//
	// Returns:
	//   - []material.Signature: the signatures
	MaterialSignatures() []material.Signature

	// InstancesFor returns the instances bucketed under sig in insertion order.
	//
	// Parameters:
	//   - sig: a signature returned by MaterialSignatures
	//
	// Returns:
	//   - []instance.Instance: the instances
	//   - error: ErrMaterialNonexistent for an unknown signature
	InstancesFor(sig material.Signature) ([]instance.Instance, error)
}

type lightGroupImpl struct {
	name    string
	lights  []light.Light
	batches batchSet
}

var _ LightGroup = &lightGroupImpl{}

func (l *lightGroupImpl) Name() string {
	return l.name
}

func (l *lightGroupImpl) Lights() []light.Light {
	return slices.Clone(l.lights)
}

func (l *lightGroupImpl) MaterialSignatures() []material.Signature {
	return l.batches.signatures()
}

func (l *lightGroupImpl) InstancesFor(sig material.Signature) ([]instance.Instance, error) {
	insts, ok := l.batches.instances(sig)
	if !ok {
		return nil, newError(KindMaterialNonexistent, "LightGroup.InstancesFor", "%q in group %q", sig.String(), l.name)
	}
	return insts, nil
}
