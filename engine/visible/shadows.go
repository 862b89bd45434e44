package visible

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/instance"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/material"
	"go.uber.org/zap"
)

// ShadowsAssembler tracks, per shadow-casting light, the opaque instances that
// contribute to that light's shadow map. Casters are bucketed by depth signature.
//
// Registration here is independent of visibility: an instance may be a caster for
// any number of lights and still be added once to the unlit batch or a light group.
// Nothing is deduplicated.
type ShadowsAssembler struct {
	builderState
	opts    *assemblerOptions
	order   []light.Light
	byLight map[light.Light]*batches
}

func newShadowsAssembler(opts *assemblerOptions) *ShadowsAssembler {
	return &ShadowsAssembler{
		opts:    opts,
		byLight: make(map[light.Light]*batches),
	}
}

// NewShadowsAssembler creates a standalone shadow caster registry.
//
// Parameters:
//   - options: functional options shared with the other assemblers
//
// Returns:
//   - *ShadowsAssembler: an open registry
func NewShadowsAssembler(options ...AssemblerBuilderOption) *ShadowsAssembler {
	return newShadowsAssembler(newAssemblerOptions(options))
}

// AddLight registers l with an empty set of casters. Registering a light twice is
// a no-op. A registered light keeps its shadow map even if no caster is ever added.
//
// Parameters:
//   - l: the shadow light
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize
func (s *ShadowsAssembler) AddLight(l light.Light) error {
	const op = "Shadows.AddLight"
	if err := s.check(op); err != nil {
		return s.opts.reject(err)
	}
	if l == nil {
		panic("visible: Shadows.AddLight requires a non-nil Light")
	}
	s.lookup(l)
	return nil
}

// AddCaster registers inst as a shadow caster for l, registering l first if needed.
// The instance is appended under its depth signature bucket.
//
// Parameters:
//   - l: the shadow light
//   - inst: the opaque caster
//
// Returns:
//   - error: ErrBuilderInvalid after Finalize, ErrInstanceKindMismatch for a translucent instance
func (s *ShadowsAssembler) AddCaster(l light.Light, inst instance.Instance) error {
	const op = "Shadows.AddCaster"
	if err := s.check(op); err != nil {
		return s.opts.reject(err)
	}
	if l == nil {
		panic("visible: Shadows.AddCaster requires a non-nil Light")
	}
	if inst == nil {
		panic("visible: Shadows.AddCaster requires a non-nil Instance")
	}
	if !inst.Kind().Opaque() {
		return s.opts.reject(newError(KindInstanceKindMismatch, op, "instance %d is %s", inst.ID(), inst.Kind()))
	}
	s.lookup(l).add(s.opts.depthSignature(inst), inst)
	return nil
}

// Finalize freezes the registry into a VisibleShadows snapshot.
//
// Returns:
//   - VisibleShadows: the immutable snapshot
//   - error: ErrBuilderInvalid when called twice
func (s *ShadowsAssembler) Finalize() (VisibleShadows, error) {
	const op = "Shadows.Finalize"
	if err := s.finish(op); err != nil {
		return nil, s.opts.reject(err)
	}
	out := &visibleShadowsImpl{
		lights:  slices.Clone(s.order),
		byLight: make(map[light.Light]batchSet, len(s.byLight)),
	}
	casters := 0
	for l, b := range s.byLight {
		out.byLight[l] = b.freeze()
		casters += b.count()
	}
	s.opts.logger.Debug("shadows finalized",
		zap.Stringer("frame", s.opts.frameID),
		zap.Int("lights", len(out.lights)),
		zap.Int("casters", casters),
	)
	return out, nil
}

func (s *ShadowsAssembler) lookup(l light.Light) *batches {
	b, ok := s.byLight[l]
	if !ok {
		b = newBatches()
		s.byLight[l] = b
		s.order = append(s.order, l)
	}
	return b
}

// VisibleShadows is the finalized shadow caster registry.
type VisibleShadows interface {
	// Lights returns every registered shadow light in registration order.
	//
	// Returns:
	//   - []light.Light: the shadow lights
	Lights() []light.Light

	// MaterialSignaturesFor returns the depth signatures of l's casters in first-use order.
	// A light registered without casters yields an empty slice.
	//
	// Parameters:
	//   - l: a registered shadow light
	//
	// Returns:
	//   - []material.Signature: the caster signatures
	//   - error: ErrLightNonexistent if l was never registered
	MaterialSignaturesFor(l light.Light) ([]material.Signature, error)

	// InstancesFor returns the casters of l bucketed under sig, in insertion order.
	//
	// Parameters:
	//   - l: a registered shadow light
	//   - sig: a depth signature returned by MaterialSignaturesFor
	//
	// Returns:
	//   - []instance.Instance: the casters
	//   - error: ErrLightNonexistent or ErrMaterialNonexistent
	InstancesFor(l light.Light, sig material.Signature) ([]instance.Instance, error)
}

type visibleShadowsImpl struct {
	lights  []light.Light
	byLight map[light.Light]batchSet
}

var _ VisibleShadows = &visibleShadowsImpl{}

func (v *visibleShadowsImpl) Lights() []light.Light {
	return slices.Clone(v.lights)
}

func (v *visibleShadowsImpl) MaterialSignaturesFor(l light.Light) ([]material.Signature, error) {
	b, ok := v.byLight[l]
	if !ok {
		return nil, newError(KindLightNonexistent, "Shadows.MaterialSignaturesFor", "%s", lightLabel(l))
	}
	sigs := b.signatures()
	if sigs == nil {
		sigs = []material.Signature{}
	}
	return sigs, nil
}

func (v *visibleShadowsImpl) InstancesFor(l light.Light, sig material.Signature) ([]instance.Instance, error) {
	const op = "Shadows.InstancesFor"
	b, ok := v.byLight[l]
	if !ok {
		return nil, newError(KindLightNonexistent, op, "%s", lightLabel(l))
	}
	insts, ok := b.instances(sig)
	if !ok {
		return nil, newError(KindMaterialNonexistent, op, "%q", sig.String())
	}
	return insts, nil
}

func lightLabel(l light.Light) string {
	if l == nil {
		return "<nil>"
	}
	if l.Name() != "" {
		return l.Name()
	}
	return l.Type().String()
}
